package export

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/view"
)

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// HTML renders the filtered view as a standalone HTML page. Descriptions are
// rendered from Markdown.
func HTML(doc Document) ([]byte, error) {
	loc := doc.location()

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	htmlEl := element(atom.Html, attr("lang", "en"))
	root.AppendChild(htmlEl)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	titleEl := element(atom.Title)
	titleEl.AppendChild(textNode(doc.title()))
	head.AppendChild(titleEl)
	htmlEl.AppendChild(head)

	body := element(atom.Body)
	htmlEl.AppendChild(body)
	h1 := element(atom.H1)
	h1.AppendChild(textNode(doc.title()))
	body.AppendChild(h1)

	tasks := view.View(doc.Tasks, doc.Filter)
	if len(tasks) == 0 {
		p := element(atom.P, attr("class", "empty"))
		p.AppendChild(textNode(EmptyMessage))
		body.AppendChild(p)
	}

	list := element(atom.Ul, attr("class", "tasks"))
	for _, t := range tasks {
		classes := []string{"task"}
		if t.IsCompleted {
			classes = append(classes, "completed")
		} else if t.IsOverdue(doc.Now) {
			classes = append(classes, "overdue")
		}
		li := element(atom.Li, attr("id", "task-"+t.ID), attr("class", strings.Join(classes, " ")))

		checkbox := element(atom.Input, attr("type", "checkbox"), attr("disabled", ""))
		if t.IsCompleted {
			checkbox.Attr = append(checkbox.Attr, attr("checked", ""))
		}
		li.AppendChild(checkbox)

		title := element(atom.Span, attr("class", "title"))
		title.AppendChild(textNode(t.Title))
		li.AppendChild(title)

		deadline := t.Deadline.In(loc)
		timeEl := element(atom.Time, attr("datetime", deadline.Format("2006-01-02T15:04:05Z07:00")))
		timeEl.AppendChild(textNode(deadline.Format(DeadlineLayout)))
		li.AppendChild(timeEl)

		if strings.TrimSpace(t.Description) != "" {
			if err := appendDescription(li, t.Description); err != nil {
				return nil, err
			}
		}
		list.AppendChild(li)
	}
	if len(tasks) > 0 {
		body.AppendChild(list)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, errors.InternalError("failed to render html export").WithCause(err).Build()
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func appendDescription(li *html.Node, description string) error {
	rendered, err := descriptionHTML(description)
	if err != nil {
		return errors.InternalError("failed to render task description").WithCause(err).Build()
	}
	container := element(atom.Div, attr("class", "description"))
	nodes, err := html.ParseFragment(bytes.NewReader(rendered), container)
	if err != nil {
		return fmt.Errorf("parse description html: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	li.AppendChild(container)
	return nil
}
