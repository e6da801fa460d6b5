package state

import "git.home.luguber.info/inful/taskboard/internal/task"

// Op names a store operation.
type Op string

const (
	OpCreate       Op = "create"
	OpDelete       Op = "delete"
	OpUpdate       Op = "update"
	OpComplete     Op = "complete"
	OpUndoComplete Op = "undo_complete"
	OpSetFilter    Op = "set_filter"
	OpReplace      Op = "replace"
)

// Snapshot is a copy of the store state.
type Snapshot struct {
	Tasks  []task.Task `json:"tasks"`
	Filter task.Filter `json:"taskFilter"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Filter: s.Filter, Tasks: make([]task.Task, len(s.Tasks))}
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// Change describes one effective mutation.
type Change struct {
	Op     Op
	TaskID string
	// Task is the record after the change. For OpDelete it is the removed record.
	Task *task.Task
	// Reloaded marks state installed from outside by Replace.
	Reloaded bool
	Snapshot Snapshot
}

// Listener is called synchronously after each effective mutation, in
// mutation order. It must not mutate the store.
type Listener func(Change)
