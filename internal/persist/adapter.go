package persist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/taskboard/internal/config"
	ferrors "git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/logfields"
	"git.home.luguber.info/inful/taskboard/internal/metrics"
	"git.home.luguber.info/inful/taskboard/internal/retry"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

// Source tells where a loaded snapshot came from.
type Source string

const (
	SourceSlot  Source = "slot"
	SourceSeed  Source = "seed"
	SourceEmpty Source = "empty"
)

// CorruptSuffix is appended to the key under which an undecodable snapshot is kept.
const CorruptSuffix = ".corrupt"

// LoadReport describes the outcome of Load.
type LoadReport struct {
	Source   Source
	Warnings []Warning
	// Err is the read or decode failure that caused a fallback, if any.
	Err error
}

// Adapter connects a state.Store to a Slot.
type Adapter struct {
	slot     Slot
	key      string
	seed     bool
	now      func() time.Time
	logger   *slog.Logger
	recorder metrics.Recorder
	timeout  time.Duration
	retry    retry.Policy
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

func WithKey(key string) AdapterOption             { return func(a *Adapter) { a.key = key } }
func WithSeed(enabled bool) AdapterOption          { return func(a *Adapter) { a.seed = enabled } }
func WithClock(now func() time.Time) AdapterOption { return func(a *Adapter) { a.now = now } }
func WithLogger(l *slog.Logger) AdapterOption      { return func(a *Adapter) { a.logger = l } }

// WithRecorder reports persistence metrics to rec.
func WithRecorder(rec metrics.Recorder) AdapterOption {
	return func(a *Adapter) { a.recorder = rec }
}

// WithWriteTimeout bounds each write made by an attached adapter.
func WithWriteTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.timeout = d }
}

// WithRetry retries failed slot writes according to p.
func WithRetry(p retry.Policy) AdapterOption {
	return func(a *Adapter) { a.retry = p }
}

// NewAdapter creates an adapter writing under config.DefaultSlotKey unless WithKey is given.
func NewAdapter(slot Slot, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		slot:     slot,
		key:      config.DefaultSlotKey,
		now:      time.Now,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		timeout:  10 * time.Second,
		retry:    retry.None(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the slot key.
func (a *Adapter) Key() string { return a.key }

// Slot returns the underlying slot.
func (a *Adapter) Slot() Slot { return a.slot }

// Load reads and revives the stored snapshot. It never fails: an absent,
// unreadable or undecodable slot yields seed or empty state, and the cause is
// logged and returned in the report.
func (a *Adapter) Load(ctx context.Context) (state.Snapshot, LoadReport) {
	data, err := a.slot.Read(ctx, a.key)
	if err != nil {
		reason := metrics.FallbackRead
		if errors.Is(err, ErrSlotEmpty) {
			reason = metrics.FallbackEmpty
			err = nil
		} else {
			a.logger.Warn("Failed to read task snapshot, starting from fallback state",
				logfields.SlotKey(a.key), logfields.Backend(backendName(a.slot)), logfields.Error(err))
		}
		return a.fallback(reason, err)
	}

	snap, warnings, err := Decode(data)
	if err != nil {
		a.logger.Warn("Failed to decode task snapshot, starting from fallback state",
			logfields.SlotKey(a.key), logfields.Error(err))
		a.preserve(ctx, data)
		return a.fallback(metrics.FallbackDecode, err)
	}

	for _, w := range warnings {
		a.recorder.IncLoadRepair(w.Kind)
		a.logger.Warn("Repaired task snapshot",
			logfields.SlotKey(a.key), logfields.TaskID(w.TaskID), logfields.Kind(w.Kind), slog.String("detail", w.Message))
	}
	a.logger.Debug("Loaded task snapshot", logfields.SlotKey(a.key), logfields.Count(len(snap.Tasks)))
	return snap, LoadReport{Source: SourceSlot, Warnings: warnings}
}

// preserve copies an undecodable snapshot aside so the next save does not destroy it.
func (a *Adapter) preserve(ctx context.Context, data []byte) {
	key := a.key + CorruptSuffix
	if err := a.slot.Write(ctx, key, data); err != nil {
		a.logger.Error("Failed to preserve undecodable task snapshot",
			logfields.SlotKey(key), logfields.Error(err))
		return
	}
	a.logger.Warn("Preserved undecodable task snapshot", logfields.SlotKey(key))
}

func (a *Adapter) fallback(reason metrics.FallbackReason, cause error) (state.Snapshot, LoadReport) {
	a.recorder.IncLoadFallback(reason)
	snap := state.Snapshot{Tasks: []task.Task{}, Filter: task.FilterAll}
	report := LoadReport{Source: SourceEmpty, Err: cause}
	if a.seed {
		snap.Tasks = SeedTasks(a.now())
		report.Source = SourceSeed
	}
	return snap, report
}

// Save writes snap under the adapter key.
func (a *Adapter) Save(ctx context.Context, snap state.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return ferrors.InternalError("failed to encode task snapshot").WithCause(err).Build()
	}

	start := time.Now()
	attempts, err := a.retry.Do(ctx, func(ctx context.Context) error {
		return a.slot.Write(ctx, a.key, data)
	})
	a.recorder.ObservePersistDuration(backendName(a.slot), time.Since(start), err == nil)
	if attempts > 1 {
		a.logger.Debug("Retried task snapshot write",
			logfields.SlotKey(a.key), logfields.Count(attempts), logfields.Error(err))
	}
	if err != nil {
		return ferrors.StorageError("failed to write task snapshot").
			WithCause(err).
			WithContext("key", a.key).
			WithContext("backend", backendName(a.slot)).
			WithContext("attempts", attempts).
			Build()
	}
	return nil
}

// Attach subscribes the adapter to store so that every effective mutation is
// saved. State installed through Replace is not written back. Write failures
// are logged and do not reach the mutating caller.
func (a *Adapter) Attach(ctx context.Context, store state.Notifier) (detach func()) {
	return store.Subscribe(func(c state.Change) {
		if c.Reloaded {
			return
		}
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.Save(wctx, c.Snapshot); err != nil {
			a.logger.Error("Failed to persist task store",
				logfields.Op(string(c.Op)), logfields.TaskID(c.TaskID), logfields.SlotKey(a.key), logfields.Error(err))
		}
	})
}
