// Package watch reloads the store when the file slot is changed on disk by
// another process.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/taskboard/internal/logfields"
	"git.home.luguber.info/inful/taskboard/internal/persist"
	"git.home.luguber.info/inful/taskboard/internal/state"
)

// DefaultDebounce collapses bursts of writes into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Loader reads the persisted snapshot.
type Loader interface {
	Load(ctx context.Context) (state.Snapshot, persist.LoadReport)
}

// Target receives reloaded snapshots.
type Target interface {
	Snapshot() state.Snapshot
	Replace(snap state.Snapshot)
}

// Watcher monitors the slot file and replaces the store contents when it
// changes.
type Watcher struct {
	path     string
	loader   Loader
	target   Target
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	stopChan  chan struct{}
	stopped   bool
	reloadCh  chan struct{}
	onReload  func(persist.LoadReport)
	reloadsWG sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

func WithLogger(l *slog.Logger) Option { return func(w *Watcher) { w.logger = l } }

// OnReload is called after every reload attempt, applied or not.
func OnReload(fn func(persist.LoadReport)) Option { return func(w *Watcher) { w.onReload = fn } }

// New creates a watcher for the slot file at path.
func New(path string, loader Loader, target Target, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve slot path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		path:     absPath,
		loader:   loader,
		target:   target,
		watcher:  fw,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		stopChan: make(chan struct{}),
		reloadCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The directory is watched rather than the file
// because slot writes replace the file by rename.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch slot directory %s: %w", dir, err)
	}
	w.logger.Info("Watching task snapshot", logfields.Path(w.path))

	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop ends watching and waits for an in-flight reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopChan)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.reloadsWG.Wait()
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Rename):
				w.logger.Debug("Task snapshot change detected", logfields.Path(event.Name), slog.String("event", event.Op.String()))
				w.trigger()
			case event.Op.Has(fsnotify.Remove):
				w.logger.Warn("Task snapshot removed, keeping current state", logfields.Path(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Task snapshot watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	var timer *time.Timer
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return
		case <-w.stopChan:
			stopTimer()
			return
		case <-w.reloadCh:
			stopTimer()
			timer = time.AfterFunc(w.debounce, func() {
				w.mu.Lock()
				if w.stopped {
					w.mu.Unlock()
					return
				}
				w.reloadsWG.Add(1)
				w.mu.Unlock()
				defer w.reloadsWG.Done()
				w.Reload(ctx)
			})
		}
	}
}

// Reload loads the slot and replaces the target state when the stored
// snapshot differs from it. It reports whether the target was replaced.
// A fallback load never replaces the target, so a removed or corrupt file
// does not wipe the in-memory list.
func (w *Watcher) Reload(ctx context.Context) bool {
	snap, report := w.loader.Load(ctx)
	if w.onReload != nil {
		defer w.onReload(report)
	}
	if report.Source != persist.SourceSlot {
		w.logger.Warn("Ignoring unreadable task snapshot", logfields.Path(w.path), logfields.Error(report.Err))
		return false
	}
	if sameSnapshot(snap, w.target.Snapshot()) {
		return false
	}
	w.target.Replace(snap)
	w.logger.Info("Reloaded task snapshot", logfields.Path(w.path), logfields.Count(len(snap.Tasks)))
	return true
}

func sameSnapshot(a, b state.Snapshot) bool {
	ea, errA := persist.Encode(a)
	eb, errB := persist.Encode(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ea, eb)
}
