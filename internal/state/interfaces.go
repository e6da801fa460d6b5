package state

import (
	"git.home.luguber.info/inful/taskboard/internal/foundation"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

// Reader exposes read-only access to the store.
type Reader interface {
	Tasks() []task.Task
	Filter() task.Filter
	Get(id string) foundation.Option[task.Task]
	Snapshot() Snapshot
	View() []task.Task
}

// Mutator exposes the task operations.
type Mutator interface {
	Create(t task.Task) error
	Delete(id string)
	Update(id string, e task.Edit) error
	Complete(id string)
	UndoComplete(id string)
	SetFilter(f task.Filter)
}

// Notifier registers change listeners.
type Notifier interface {
	Subscribe(fn Listener) (unsubscribe func())
}

var (
	_ Reader   = (*Store)(nil)
	_ Mutator  = (*Store)(nil)
	_ Notifier = (*Store)(nil)
)
