package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/persist"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func sampleTasks() []task.Task {
	a := task.New("Buy milk", "From the **corner** shop", base.Add(48*time.Hour), base)
	b := task.New("File taxes", "", base.Add(-time.Hour), base.Add(time.Minute))
	c := task.New("Call mom", "", base.Add(24*time.Hour), base.Add(2*time.Minute))
	c.Complete(base.Add(3 * time.Minute))
	return []task.Task{c, a, b}
}

func doc(tasks []task.Task, f task.Filter) Document {
	return Document{Tasks: tasks, Filter: f, Now: base.Add(time.Hour), Location: time.UTC}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MD")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, f)

	f, err = ParseFormat(" html ")
	require.NoError(t, err)
	require.Equal(t, FormatHTML, f)

	_, err = ParseFormat("pdf")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestMarkdown_ChecklistOrder(t *testing.T) {
	out, err := Markdown(doc(sampleTasks(), task.FilterAll))
	require.NoError(t, err)

	fields, body, err := split(out)
	require.NoError(t, err)
	require.Equal(t, "Tasks", fields["title"])
	require.Equal(t, "all", fields["filter"])
	require.NotEmpty(t, fields[mdfp.FingerprintField])

	counts, ok := fields["counts"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 3, counts["all"])
	require.Equal(t, 1, counts["completed"])
	require.Equal(t, 1, counts["overdue"])

	text := string(body)
	milk := strings.Index(text, "- [ ] Buy milk")
	taxes := strings.Index(text, "- [ ] File taxes")
	mom := strings.Index(text, "- [x] Call mom")
	require.True(t, milk >= 0 && taxes > milk && mom > taxes, text)
	require.Contains(t, text, "(due 2026-03-10 08:00, overdue)")
	require.Contains(t, text, "  From the **corner** shop\n")
}

func TestMarkdown_EmptyList(t *testing.T) {
	out, err := Markdown(doc(nil, task.FilterPending))
	require.NoError(t, err)
	require.Contains(t, string(out), EmptyMessage)
}

func TestVerify(t *testing.T) {
	out, err := Markdown(doc(sampleTasks(), task.FilterPending))
	require.NoError(t, err)

	ok, err := Verify(out)
	require.NoError(t, err)
	require.True(t, ok)

	tampered := bytes.Replace(out, []byte("Buy milk"), []byte("Buy oat milk"), 1)
	ok, err = Verify(tampered)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Verify([]byte("# no frontmatter\n"))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = Verify([]byte("---\ntitle: x\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestFingerprint_IgnoresGeneratedTime(t *testing.T) {
	tasks := sampleTasks()
	first := doc(tasks, task.FilterAll)
	second := first
	second.Now = first.Now.Add(30 * time.Second)

	a, err := Markdown(first)
	require.NoError(t, err)
	b, err := Markdown(second)
	require.NoError(t, err)

	fa, _, err := split(a)
	require.NoError(t, err)
	fb, _, err := split(b)
	require.NoError(t, err)
	require.NotEqual(t, fa[keyGenerated], fb[keyGenerated])
	require.Equal(t, fa[mdfp.FingerprintField], fb[mdfp.FingerprintField])
}

func TestHTML(t *testing.T) {
	out, err := HTML(doc(sampleTasks(), task.FilterAll))
	require.NoError(t, err)

	page := string(out)
	require.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	require.Contains(t, page, "<title>Tasks</title>")
	require.Contains(t, page, `class="task completed"`)
	require.Contains(t, page, `class="task overdue"`)
	require.Contains(t, page, "<strong>corner</strong>")
	require.Contains(t, page, `checked=""`)
}

func TestHTML_EscapesTitles(t *testing.T) {
	tk := task.New("<script>alert(1)</script>", "", base.Add(time.Hour), base)
	out, err := HTML(doc([]task.Task{tk}, task.FilterAll))
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>")
	require.Contains(t, string(out), "&lt;script&gt;")
}

func TestWrite_JSONRoundTrip(t *testing.T) {
	tasks := sampleTasks()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, doc(tasks, task.FilterCompleted)))

	snap, warnings, err := persist.Decode(buf.Bytes())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, task.FilterCompleted, snap.Filter)
	require.Len(t, snap.Tasks, len(tasks))
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("pdf"), doc(nil, task.FilterAll))
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}
