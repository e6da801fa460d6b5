package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	ID    string `arg:"" optional:"" help:"Show the events of one task"`
	Limit int    `short:"n" help:"Number of tasks to list" default:"20"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	return withApp(g, root, func(ctx context.Context, app *App) error {
		if app.Events == nil {
			return errors.ConfigError("task history is disabled").
				WithContext("setting", "history.enabled").
				Build()
		}
		if h.ID != "" {
			return h.events(ctx, g, app)
		}

		if err := app.Activity.Rebuild(ctx); err != nil {
			return errors.EventStoreError("failed to read task history").WithCause(err).Build()
		}
		activities := app.Activity.Activities()
		if len(activities) == 0 {
			_, _ = fmt.Fprintln(g.Out, "No history recorded yet")
			return nil
		}
		for i, a := range activities {
			if h.Limit > 0 && i >= h.Limit {
				break
			}
			state := ""
			if a.DeletedAt != nil {
				state = " (deleted)"
			}
			_, _ = fmt.Fprintf(g.Out, "%s  %s%s  edits=%d completions=%d reopens=%d  last=%s\n",
				shortID(a.TaskID), a.Title, state, a.Edits, a.Completions, a.Reopens,
				a.LastEventAt.In(g.Location).Format(time.RFC3339))
		}
		totals := app.Activity.Totals()
		_, _ = fmt.Fprintf(g.Out, "\ncreated=%d updated=%d completed=%d reopened=%d deleted=%d filter_changes=%d\n",
			totals[history.TypeTaskCreated], totals[history.TypeTaskUpdated], totals[history.TypeTaskCompleted],
			totals[history.TypeTaskReopened], totals[history.TypeTaskDeleted], totals[history.TypeFilterChanged])
		return nil
	})
}

func (h *HistoryCmd) events(ctx context.Context, g *Global, app *App) error {
	id := h.ID
	if resolved, err := resolveID(app.Store, id); err == nil {
		id = resolved
	}
	events, err := app.Events.GetByTaskID(ctx, id)
	if err != nil {
		return errors.EventStoreError("failed to read task history").WithCause(err).WithContext("id", id).Build()
	}
	if len(events) == 0 {
		return errors.NotFoundError("task history").WithContext("id", h.ID).Build()
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  %s", e.Timestamp().In(g.Location).Format(time.RFC3339), e.Type())
		if p, err := history.DecodeTaskPayload(e); err == nil && p.Title != "" {
			line += "  " + p.Title
		}
		_, _ = fmt.Fprintln(g.Out, line)
	}
	return nil
}
