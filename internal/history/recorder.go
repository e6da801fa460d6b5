package history

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/taskboard/internal/logfields"
	"git.home.luguber.info/inful/taskboard/internal/state"
)

// Recorder appends store changes to a Store and optionally feeds a projection.
type Recorder struct {
	store      Store
	projection *ActivityProjection
	now        func() time.Time
	logger     *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithProjection applies every recorded event to p as well.
func WithProjection(p *ActivityProjection) RecorderOption {
	return func(r *Recorder) { r.projection = p }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// WithLogger sets the logger used for append failures.
func WithLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends the event for c, if it is one that is recorded.
func (r *Recorder) Record(ctx context.Context, c state.Change) error {
	e, ok, err := FromChange(c, r.now())
	if err != nil || !ok {
		return err
	}
	if err := r.store.Append(ctx, e); err != nil {
		return err
	}
	if r.projection != nil {
		r.projection.Apply(e)
	}
	return nil
}

// Attach subscribes the recorder to n. Append failures are logged only.
func (r *Recorder) Attach(ctx context.Context, n state.Notifier) (detach func()) {
	return n.Subscribe(func(c state.Change) {
		if err := r.Record(context.WithoutCancel(ctx), c); err != nil {
			r.logger.Warn("Failed to record task history",
				logfields.Op(string(c.Op)), logfields.TaskID(c.TaskID), logfields.Error(err))
		}
	})
}
