package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/taskboard/internal/export"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/logfields"
	"git.home.luguber.info/inful/taskboard/internal/persist"
	"git.home.luguber.info/inful/taskboard/internal/reminder"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
	"git.home.luguber.info/inful/taskboard/internal/watch"
)

// WatchCmd implements the 'watch' command. It runs until interrupted.
type WatchCmd struct {
	Once bool `help:"Run a single overdue sweep and exit"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.logger.Warn("Failed to close task storage", logfields.Error(err))
		}
	}()
	return w.run(ctx, g, app)
}

func (w *WatchCmd) run(ctx context.Context, g *Global, app *App) error {
	notify := func(t task.Task) {
		_, _ = fmt.Fprintf(g.Out, "Overdue: %s %s (due %s)\n",
			shortID(t.ID), t.Title, t.Deadline.In(g.Location).Format(export.DeadlineLayout))
	}
	sched, err := reminder.New(app.Store, notify,
		reminder.WithRecorder(app.Recorder),
		reminder.WithLogger(app.logger),
		reminder.WithClock(g.Now))
	if err != nil {
		return errors.RuntimeError("failed to create reminder scheduler").WithCause(err).Build()
	}
	defer func() { _ = sched.Stop() }()

	sched.Sweep()
	if w.Once {
		return nil
	}

	if _, err := sched.Schedule(app.Config.Reminder.Interval); err != nil {
		return errors.ConfigError("invalid reminder interval").
			WithCause(err).
			WithContext("interval", app.Config.Reminder.Interval.String()).
			Build()
	}
	sched.Start(ctx)

	if fs, ok := app.Slot.(*persist.FileSlot); ok {
		watcher, err := watch.New(fs.Path(app.Adapter.Key()), app.Adapter, app.Store,
			watch.WithLogger(app.logger),
			watch.OnReload(func(persist.LoadReport) { app.writeMetrics() }))
		if err != nil {
			return errors.FileSystemError("failed to create snapshot watcher").WithCause(err).Build()
		}
		if err := watcher.Start(ctx); err != nil {
			return errors.FileSystemError("failed to watch task snapshot").WithCause(err).Build()
		}
		defer func() { _ = watcher.Stop() }()
	} else {
		app.logger.Info("Live reload is only available for the file backend",
			logfields.Backend(string(app.Config.Storage.Backend)))
	}

	// Keep the textfile current for the node exporter while watching.
	unsubscribe := app.Store.Subscribe(func(state.Change) { app.writeMetrics() })
	defer unsubscribe()

	app.logger.Info("Watching tasks, press Ctrl+C to stop",
		slog.Duration("interval", app.Config.Reminder.Interval))
	<-ctx.Done()
	return nil
}
