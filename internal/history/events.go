package history

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

// Event type names.
const (
	TypeTaskCreated   = "TaskCreated"
	TypeTaskUpdated   = "TaskUpdated"
	TypeTaskCompleted = "TaskCompleted"
	TypeTaskReopened  = "TaskReopened"
	TypeTaskDeleted   = "TaskDeleted"
	TypeFilterChanged = "FilterChanged"
)

var opTypes = map[state.Op]string{
	state.OpCreate:       TypeTaskCreated,
	state.OpUpdate:       TypeTaskUpdated,
	state.OpComplete:     TypeTaskCompleted,
	state.OpUndoComplete: TypeTaskReopened,
	state.OpDelete:       TypeTaskDeleted,
	state.OpSetFilter:    TypeFilterChanged,
}

// TaskPayload is the payload of every task event.
type TaskPayload struct {
	Title       string     `json:"title"`
	Deadline    time.Time  `json:"deadline"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// FilterPayload is the payload of FilterChanged.
type FilterPayload struct {
	Filter string `json:"filter"`
}

// NewTaskEvent creates a task event of eventType describing t.
func NewTaskEvent(eventType string, t task.Task, at time.Time) (*BaseEvent, error) {
	payload, err := json.Marshal(TaskPayload{Title: t.Title, Deadline: t.Deadline, CompletedAt: t.CompletedAt})
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal task event payload").
			WithCause(err).
			WithContext("task_id", t.ID).
			Build()
	}
	return &BaseEvent{
		EventTaskID:    t.ID,
		EventType:      eventType,
		EventTimestamp: at,
		EventPayload:   payload,
	}, nil
}

// NewFilterChanged creates a FilterChanged event.
func NewFilterChanged(f task.Filter, at time.Time) (*BaseEvent, error) {
	payload, err := json.Marshal(FilterPayload{Filter: string(f)})
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal FilterChanged payload").WithCause(err).Build()
	}
	return &BaseEvent{
		EventType:      TypeFilterChanged,
		EventTimestamp: at,
		EventPayload:   payload,
	}, nil
}

// FromChange converts a store change into an event. It reports false for
// changes that are not recorded (reloads).
func FromChange(c state.Change, at time.Time) (Event, bool, error) {
	if c.Reloaded {
		return nil, false, nil
	}
	eventType, ok := opTypes[c.Op]
	if !ok {
		return nil, false, nil
	}
	if c.Op == state.OpSetFilter {
		e, err := NewFilterChanged(c.Snapshot.Filter, at)
		return e, err == nil, err
	}
	if c.Task == nil {
		return nil, false, errors.InternalError("task change without task record").
			WithContext("op", string(c.Op)).
			Build()
	}
	e, err := NewTaskEvent(eventType, *c.Task, at)
	return e, err == nil, err
}

// DecodeTaskPayload parses the payload of a task event.
func DecodeTaskPayload(e Event) (TaskPayload, error) {
	var p TaskPayload
	if err := json.Unmarshal(e.Payload(), &p); err != nil {
		return TaskPayload{}, errors.EventStoreError("failed to unmarshal task event payload").
			WithCause(err).
			WithContext("event_id", e.ID()).
			Build()
	}
	return p, nil
}
