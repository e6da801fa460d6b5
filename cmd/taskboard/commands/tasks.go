package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/taskboard/internal/form"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

// AddCmd implements the 'add' command. Date and time default to the current
// minute.
type AddCmd struct {
	Title       string `arg:"" help:"Task title"`
	Description string `short:"d" help:"Task description (Markdown)"`
	Date        string `help:"Deadline date (YYYY-MM-DD)"`
	Time        string `help:"Deadline time (HH:MM)"`
}

func (a *AddCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(_ context.Context, app *App) error {
		now := g.Now()
		values := form.NewTaskDefaults(now.In(g.Location))
		values.Title = a.Title
		values.Description = a.Description
		if a.Date != "" {
			values.Date = a.Date
		}
		if a.Time != "" {
			values.Time = a.Time
		}

		edit, result := form.Submit(values, now, g.Location)
		if err := result.ToError(); err != nil {
			return err
		}
		t := task.New(edit.Title, edit.Description, edit.Deadline, now)
		if err := app.Store.Create(t); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.Out, "Added %s %s\n", shortID(t.ID), t.Title)
		return nil
	})
}

// EditCmd implements the 'edit' command. Omitted flags keep the current
// value.
type EditCmd struct {
	ID               string `arg:"" help:"Task id or unique id prefix"`
	Title            string `help:"New title"`
	Description      string `short:"d" help:"New description (Markdown)"`
	ClearDescription bool   `help:"Remove the description"`
	Date             string `help:"New deadline date (YYYY-MM-DD)"`
	Time             string `help:"New deadline time (HH:MM)"`
}

func (e *EditCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(_ context.Context, app *App) error {
		t, err := lookup(app.Store, e.ID)
		if err != nil {
			return err
		}

		values := form.EditDefaults(t, g.Location)
		if e.Title != "" {
			values.Title = e.Title
		}
		switch {
		case e.ClearDescription:
			values.Description = ""
		case e.Description != "":
			values.Description = e.Description
		}
		if e.Date != "" {
			values.Date = e.Date
		}
		if e.Time != "" {
			values.Time = e.Time
		}

		edit, result := form.Submit(values, g.Now(), g.Location)
		if err := result.ToError(); err != nil {
			return err
		}
		if err := app.Store.Update(t.ID, edit); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.Out, "Updated %s %s\n", shortID(t.ID), edit.Title)
		return nil
	})
}

// DoneCmd implements the 'done' command.
type DoneCmd struct {
	IDs []string `arg:"" name:"id" help:"Task ids or unique id prefixes"`
}

func (d *DoneCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(_ context.Context, app *App) error {
		for _, ref := range d.IDs {
			setCompleted(g, app, ref, true)
		}
		return nil
	})
}

// UndoCmd implements the 'undo' command.
type UndoCmd struct {
	IDs []string `arg:"" name:"id" help:"Task ids or unique id prefixes"`
}

func (u *UndoCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(_ context.Context, app *App) error {
		for _, ref := range u.IDs {
			setCompleted(g, app, ref, false)
		}
		return nil
	})
}

// RmCmd implements the 'rm' command. Pending tasks are only deleted with
// --yes.
type RmCmd struct {
	ID  string `arg:"" help:"Task id or unique id prefix"`
	Yes bool   `short:"y" help:"Confirm deletion of a pending task"`
}

func (r *RmCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(_ context.Context, app *App) error {
		id := resolveOrRaw(app, r.ID)
		t, ok := app.Store.Get(id).Get()
		if !ok {
			app.Store.Delete(id)
			_, _ = fmt.Fprintf(g.Out, "No task %s; nothing changed\n", r.ID)
			return nil
		}
		if !t.IsCompleted && !r.Yes {
			return errors.ValidationError("task is still pending; pass --yes to delete it").
				WithContext("id", t.ID).
				WithContext("title", t.Title).
				Build()
		}
		app.Store.Delete(id)
		_, _ = fmt.Fprintf(g.Out, "Deleted %s %s\n", shortID(t.ID), t.Title)
		return nil
	})
}

// resolveOrRaw resolves ref, falling back to ref itself so that unknown ids
// reach the store, where mutations of absent tasks are no-ops.
func resolveOrRaw(app *App, ref string) string {
	if id, err := resolveID(app.Store, ref); err == nil {
		return id
	}
	return ref
}

// setCompleted moves the task referenced by ref to the wanted completion
// state and reports whether the store changed.
func setCompleted(g *Global, app *App, ref string, completed bool) {
	id := resolveOrRaw(app, ref)
	before, found := app.Store.Get(id).Get()
	if completed {
		app.Store.Complete(id)
	} else {
		app.Store.UndoComplete(id)
	}
	switch {
	case !found:
		_, _ = fmt.Fprintf(g.Out, "No task %s; nothing changed\n", ref)
	case before.IsCompleted == completed:
		status := "pending"
		if completed {
			status = "completed"
		}
		_, _ = fmt.Fprintf(g.Out, "%s %s is already %s; nothing changed\n", shortID(before.ID), before.Title, status)
	case completed:
		_, _ = fmt.Fprintf(g.Out, "Completed %s %s\n", shortID(before.ID), before.Title)
	default:
		_, _ = fmt.Fprintf(g.Out, "Reopened %s %s\n", shortID(before.ID), before.Title)
	}
}
