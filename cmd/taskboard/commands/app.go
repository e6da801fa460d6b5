package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/taskboard/internal/config"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/history"
	"git.home.luguber.info/inful/taskboard/internal/logfields"
	"git.home.luguber.info/inful/taskboard/internal/metrics"
	"git.home.luguber.info/inful/taskboard/internal/persist"
	"git.home.luguber.info/inful/taskboard/internal/retry"
	"git.home.luguber.info/inful/taskboard/internal/state"
)

// App is the store wired to its slot, history and metrics for one command.
type App struct {
	Config   *config.Config
	Store    *state.Store
	Adapter  *persist.Adapter
	Slot     persist.Slot
	Report   persist.LoadReport
	Events   history.Store
	Activity *history.ActivityProjection
	Recorder metrics.Recorder
	Registry *prom.Registry

	now    func() time.Time
	logger *slog.Logger
	detach []func()
}

// openApp loads the configuration, restores the stored snapshot and attaches
// persistence, history and metrics listeners to the store.
func openApp(ctx context.Context, g *Global, root *CLI) (*App, error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	app := &App{Config: cfg, now: g.Now, logger: logger, Recorder: metrics.NoopRecorder{}}

	if cfg.Metrics.Enabled {
		app.Registry = prom.NewRegistry()
		app.Recorder = metrics.NewPrometheusRecorder(app.Registry)
	}

	slot, err := persist.OpenSlot(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	app.Slot = slot

	app.Adapter = persist.NewAdapter(slot,
		persist.WithKey(cfg.Storage.Key),
		persist.WithSeed(cfg.Storage.Seed),
		persist.WithClock(g.Now),
		persist.WithLogger(logger),
		persist.WithRecorder(app.Recorder),
		persist.WithRetry(retry.FromConfig(cfg.Storage.Retry)))

	snap, report := app.Adapter.Load(ctx)
	app.Report = report
	app.Store = state.NewStore(state.WithSnapshot(snap), state.WithClock(g.Now))

	app.detach = append(app.detach,
		app.Adapter.Attach(ctx, app.Store),
		app.Store.Subscribe(metrics.Listener(app.Recorder, g.Now)))

	if cfg.History.Enabled {
		if err := app.openHistory(ctx, cfg.HistoryPath()); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	logger.Debug("Task store ready",
		logfields.Backend(string(cfg.Storage.Backend)),
		logfields.SlotKey(cfg.Storage.Key),
		logfields.Count(len(snap.Tasks)),
		slog.String("source", string(report.Source)))
	return app, nil
}

func (a *App) openHistory(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FileSystemError("failed to create history directory").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	events, err := history.NewSQLiteStore(path)
	if err != nil {
		return errors.EventStoreError("failed to open task history").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	a.Events = events
	a.Activity = history.NewActivityProjection(events)
	rec := history.NewRecorder(events,
		history.WithProjection(a.Activity),
		history.WithClock(a.now),
		history.WithLogger(a.logger))
	a.detach = append(a.detach, rec.Attach(ctx, a.Store))
	return nil
}

// Close detaches listeners, writes the metrics textfile and closes storage.
func (a *App) Close() error {
	for _, d := range a.detach {
		d()
	}
	a.detach = nil

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	a.writeMetrics()
	if a.Events != nil {
		keep(a.Events.Close())
	}
	if a.Slot != nil {
		keep(a.Slot.Close())
	}
	if first != nil {
		return errors.StorageError("failed to close task storage").WithCause(first).Build()
	}
	return nil
}

func (a *App) writeMetrics() {
	if a.Registry == nil {
		return
	}
	if err := metrics.WriteTextfile(a.Config.Metrics.Textfile, a.Registry); err != nil {
		a.logger.Warn("Failed to write metrics textfile", logfields.Path(a.Config.Metrics.Textfile), logfields.Error(err))
	}
}

// withApp opens the app, runs fn and closes the app.
func withApp(g *Global, root *CLI, fn func(ctx context.Context, app *App) error) error {
	ctx := context.Background()
	app, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	runErr := fn(ctx, app)
	closeErr := app.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}
