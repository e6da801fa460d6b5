// Package export writes the task list as a Markdown checklist, an HTML page
// or the JSON snapshot envelope.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/taskboard/internal/foundation"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/markdown"
	"git.home.luguber.info/inful/taskboard/internal/persist"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
	"git.home.luguber.info/inful/taskboard/internal/view"
)

// EmptyMessage is shown when no task matches the filter.
const EmptyMessage = "No tasks yet! Keep going!"

// DeadlineLayout formats deadlines in exported documents.
const DeadlineLayout = "2006-01-02 15:04"

// Format selects the export encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

var formatNormalizer = foundation.NewNormalizer(map[string]Format{
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"html":     FormatHTML,
	"json":     FormatJSON,
}, FormatMarkdown)

// ParseFormat parses a format name case-insensitively.
func ParseFormat(raw string) (Format, error) {
	f, err := formatNormalizer.NormalizeWithError(raw)
	if err != nil {
		return "", errors.ValidationError("unknown export format").
			WithCause(err).
			WithContext("format", raw).
			Build()
	}
	return f, nil
}

// Document is the input of an export.
type Document struct {
	Title    string
	Tasks    []task.Task
	Filter   task.Filter
	Now      time.Time
	Location *time.Location
}

func (d Document) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

func (d Document) title() string {
	if d.Title == "" {
		return "Tasks"
	}
	return d.Title
}

// Write renders doc in format to w.
func Write(w io.Writer, format Format, doc Document) error {
	var (
		out []byte
		err error
	)
	switch format {
	case FormatMarkdown:
		out, err = Markdown(doc)
	case FormatHTML:
		out, err = HTML(doc)
	case FormatJSON:
		out, err = persist.Encode(state.Snapshot{Tasks: doc.Tasks, Filter: doc.Filter})
	default:
		return errors.ValidationError("unknown export format").WithContext("format", string(format)).Build()
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return errors.FileSystemError("failed to write export").WithCause(err).Build()
	}
	return nil
}

func frontmatterFields(doc Document) map[string]any {
	s := view.Counts(doc.Tasks, doc.Now)
	return map[string]any{
		"title":  doc.title(),
		"filter": string(doc.Filter),
		"counts": map[string]any{
			"all":       s.All,
			"pending":   s.Pending,
			"completed": s.Completed,
			"overdue":   s.Overdue,
		},
		keyGenerated: doc.Now.UTC().Format(time.RFC3339),
	}
}

// Markdown renders the filtered view as a checklist with a fingerprinted
// YAML frontmatter.
func Markdown(doc Document) ([]byte, error) {
	loc := doc.location()
	var body bytes.Buffer
	fmt.Fprintf(&body, "# %s\n\n", doc.title())

	tasks := view.View(doc.Tasks, doc.Filter)
	if len(tasks) == 0 {
		fmt.Fprintf(&body, "%s\n", EmptyMessage)
	}
	for _, t := range tasks {
		box := " "
		if t.IsCompleted {
			box = "x"
		}
		fmt.Fprintf(&body, "- [%s] %s (due %s", box, t.Title, t.Deadline.In(loc).Format(DeadlineLayout))
		if t.IsOverdue(doc.Now) {
			body.WriteString(", overdue")
		}
		body.WriteString(")\n")
		if d := strings.TrimSpace(t.Description); d != "" {
			for _, line := range strings.Split(d, "\n") {
				fmt.Fprintf(&body, "  %s\n", line)
			}
		}
	}

	fields := frontmatterFields(doc)
	fp, err := Fingerprint(fields, body.Bytes())
	if err != nil {
		return nil, errors.InternalError("failed to fingerprint export").WithCause(err).Build()
	}
	fields[mdfp.FingerprintField] = fp

	fm, err := serializeYAML(fields)
	if err != nil {
		return nil, errors.InternalError("failed to serialize frontmatter").WithCause(err).Build()
	}
	return join(fm, body.Bytes()), nil
}

func descriptionHTML(description string) ([]byte, error) {
	return markdown.RenderHTML([]byte(description), markdown.Options{GFM: true})
}
