package state

import (
	"slices"
	"sync"
	"time"

	"git.home.luguber.info/inful/taskboard/internal/foundation"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/task"
	"git.home.luguber.info/inful/taskboard/internal/view"
)

// Store holds the ordered task collection and the list filter.
type Store struct {
	mu     sync.RWMutex
	tasks  []task.Task
	filter task.Filter
	now    func() time.Time

	listenersMu sync.Mutex
	listeners   []*listenerEntry

	// writeMu serializes a mutation together with its delivery so listeners
	// see changes in mutation order. It is always taken before mu.
	writeMu sync.Mutex
}

type listenerEntry struct {
	fn Listener
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSnapshot seeds the store without notifying listeners.
func WithSnapshot(snap Snapshot) Option {
	return func(s *Store) {
		snap = snap.Clone()
		s.tasks = snap.Tasks
		if snap.Filter.Valid() {
			s.filter = snap.Filter
		}
	}
}

// NewStore creates an empty store with filter "all".
func NewStore(opts ...Option) *Store {
	s := &Store{
		filter: task.FilterAll,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	entry := &listenerEntry{fn: fn}
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, entry)
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(e *listenerEntry) bool { return e == entry })
		})
	}
}

func (s *Store) notify(c Change) {
	s.listenersMu.Lock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l.fn(c)
	}
}

// snapshotLocked must be called with mu held.
func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Tasks: s.tasks, Filter: s.filter}.Clone()
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

// mutate runs fn under the write lock and, if fn reports a change, notifies
// listeners after mu is released. Listeners may read the store but must not
// mutate it.
func (s *Store) mutate(fn func() (Change, bool)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	change, changed := fn()
	if changed {
		change.Snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify(change)
	}
}

func changed(op Op, t task.Task) (Change, bool) {
	c := t.Clone()
	return Change{Op: op, TaskID: t.ID, Task: &c}, true
}

// Create appends t. The record must be valid, pending and its id unused.
func (s *Store) Create(t task.Task) error {
	if err := t.Validate().ToError(); err != nil {
		return err
	}
	if t.IsCompleted {
		return errors.ValidationError("new task must be pending").
			WithContext("task_id", t.ID).
			Build()
	}
	var err error
	s.mutate(func() (Change, bool) {
		if s.indexLocked(t.ID) >= 0 {
			err = errors.AlreadyExistsError("task id already in use").
				WithContext("task_id", t.ID).
				Build()
			return Change{}, false
		}
		s.tasks = append(s.tasks, t.Clone())
		return changed(OpCreate, t)
	})
	return err
}

// Delete removes the task with id. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mutate(func() (Change, bool) {
		i := s.indexLocked(id)
		if i < 0 {
			return Change{}, false
		}
		removed := s.tasks[i]
		s.tasks = slices.Delete(s.tasks, i, i+1)
		return changed(OpDelete, removed)
	})
}

// Update replaces title, description and deadline. Completion state is kept.
// Unknown ids are ignored; an invalid edit is rejected.
func (s *Store) Update(id string, e task.Edit) error {
	if err := e.Validate().ToError(); err != nil {
		return err
	}
	s.mutate(func() (Change, bool) {
		i := s.indexLocked(id)
		if i < 0 {
			return Change{}, false
		}
		s.tasks[i].Apply(e, s.now())
		return changed(OpUpdate, s.tasks[i])
	})
	return nil
}

// Complete marks the task completed. No-op if unknown or already completed.
func (s *Store) Complete(id string) {
	s.mutate(func() (Change, bool) {
		i := s.indexLocked(id)
		if i < 0 || !s.tasks[i].Complete(s.now()) {
			return Change{}, false
		}
		return changed(OpComplete, s.tasks[i])
	})
}

// UndoComplete reopens a completed task. No-op if unknown or pending.
func (s *Store) UndoComplete(id string) {
	s.mutate(func() (Change, bool) {
		i := s.indexLocked(id)
		if i < 0 || !s.tasks[i].Reopen(s.now()) {
			return Change{}, false
		}
		return changed(OpUndoComplete, s.tasks[i])
	})
}

// SetFilter changes the list filter. Unknown selectors fall back to "all".
func (s *Store) SetFilter(f task.Filter) {
	if !f.Valid() {
		f = task.FilterAll
	}
	s.mutate(func() (Change, bool) {
		if s.filter == f {
			return Change{}, false
		}
		s.filter = f
		return Change{Op: OpSetFilter}, true
	})
}

// Replace installs state loaded from outside the store. Listeners see a
// change with Reloaded set.
func (s *Store) Replace(snap Snapshot) {
	s.mutate(func() (Change, bool) {
		snap = snap.Clone()
		s.tasks = snap.Tasks
		s.filter = task.NormalizeFilter(string(snap.Filter))
		return Change{Op: OpReplace, Reloaded: true}, true
	})
}

// Get returns a copy of the task with id.
func (s *Store) Get(id string) foundation.Option[task.Task] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return foundation.None[task.Task]()
	}
	return foundation.Some(s.tasks[i].Clone())
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []task.Task {
	return s.Snapshot().Tasks
}

// Filter returns the active filter.
func (s *Store) Filter() task.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Snapshot returns a consistent copy of the state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// View returns the filtered and ordered task list.
func (s *Store) View() []task.Task {
	snap := s.Snapshot()
	return view.View(snap.Tasks, snap.Filter)
}
