package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"git.home.luguber.info/inful/taskboard/internal/export"
	"git.home.luguber.info/inful/taskboard/internal/markdown"
	"git.home.luguber.info/inful/taskboard/internal/task"
	"git.home.luguber.info/inful/taskboard/internal/view"
)

const summaryRunes = 72

// LsCmd implements the 'ls' command.
type LsCmd struct {
	Filter string `short:"f" help:"Filter for this listing only (all, pending, completed)"`
}

func (l *LsCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(_ context.Context, app *App) error {
		f := app.Store.Filter()
		if l.Filter != "" {
			parsed, err := task.ParseFilter(l.Filter)
			if err != nil {
				return err
			}
			f = parsed
		}

		now := g.Now()
		all := app.Store.Tasks()
		sum := view.Counts(all, now)
		_, _ = fmt.Fprintf(g.Out, "%d tasks, %d pending, %d completed, %d overdue (filter: %s)\n",
			sum.All, sum.Pending, sum.Completed, sum.Overdue, f)

		tasks := view.View(all, f)
		if len(tasks) == 0 {
			_, _ = fmt.Fprintln(g.Out, export.EmptyMessage)
			return nil
		}
		for _, t := range tasks {
			printRow(g.Out, t, now, g.Location)
		}
		return nil
	})
}

func printRow(w io.Writer, t task.Task, now time.Time, loc *time.Location) {
	box := "[ ]"
	if t.IsCompleted {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %s  %s  due %s", box, shortID(t.ID), t.Title, t.Deadline.In(loc).Format(export.DeadlineLayout))
	if t.IsOverdue(now) {
		line += "  (overdue)"
	}
	_, _ = fmt.Fprintln(w, line)

	if strings.TrimSpace(t.Description) == "" {
		return
	}
	text, err := markdown.PlainText([]byte(t.Description), markdown.Options{GFM: true})
	if err != nil {
		text = t.Description
	}
	if s := markdown.Summary(text, summaryRunes); s != "" {
		_, _ = fmt.Fprintf(w, "    %s\n", s)
	}
}

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	ID string `arg:"" help:"Task id or unique id prefix"`
}

func (s *ShowCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(ctx context.Context, app *App) error {
		t, err := lookup(app.Store, s.ID)
		if err != nil {
			return err
		}
		now := g.Now()
		status := "pending"
		switch {
		case t.IsCompleted:
			status = "completed"
		case t.IsOverdue(now):
			status = "overdue"
		}

		out := g.Out
		_, _ = fmt.Fprintf(out, "%s\n", t.Title)
		_, _ = fmt.Fprintf(out, "  id:        %s\n", t.ID)
		_, _ = fmt.Fprintf(out, "  status:    %s\n", status)
		_, _ = fmt.Fprintf(out, "  deadline:  %s\n", t.Deadline.In(g.Location).Format(export.DeadlineLayout))
		_, _ = fmt.Fprintf(out, "  created:   %s\n", t.CreatedAt.In(g.Location).Format(time.RFC3339))
		_, _ = fmt.Fprintf(out, "  updated:   %s\n", t.UpdatedAt.In(g.Location).Format(time.RFC3339))
		if t.CompletedAt != nil {
			_, _ = fmt.Fprintf(out, "  completed: %s\n", t.CompletedAt.In(g.Location).Format(time.RFC3339))
		}

		if strings.TrimSpace(t.Description) != "" {
			text, err := markdown.PlainText([]byte(t.Description), markdown.Options{GFM: true})
			if err != nil {
				text = t.Description
			}
			_, _ = fmt.Fprintf(out, "\n%s\n", text)

			links := markdown.ExtractLinks([]byte(t.Description), markdown.Options{GFM: true})
			if len(links) > 0 {
				_, _ = fmt.Fprintln(out, "\nLinks:")
				for _, l := range links {
					_, _ = fmt.Fprintf(out, "  - %s (%s)\n", l.Destination, l.Kind)
				}
			}
		}

		if app.Activity != nil {
			if err := app.Activity.Rebuild(ctx); err != nil {
				return err
			}
			if a, ok := app.Activity.Get(t.ID); ok {
				_, _ = fmt.Fprintf(out, "\nActivity: %d edits, %d completions, %d reopens\n", a.Edits, a.Completions, a.Reopens)
			}
		}
		return nil
	})
}

// FilterCmd implements the 'filter' command.
type FilterCmd struct {
	Value string `arg:"" optional:"" help:"New filter (all, pending, completed)"`
}

func (f *FilterCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(_ context.Context, app *App) error {
		if f.Value == "" {
			_, _ = fmt.Fprintln(g.Out, app.Store.Filter())
			return nil
		}
		parsed, err := task.ParseFilter(f.Value)
		if err != nil {
			return err
		}
		app.Store.SetFilter(parsed)
		_, _ = fmt.Fprintf(g.Out, "Filter set to %s\n", parsed)
		return nil
	})
}
