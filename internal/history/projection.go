package history

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// TaskActivity is a read model summarizing everything that happened to one task.
type TaskActivity struct {
	TaskID      string     `json:"task_id"`
	Title       string     `json:"title"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	Edits       int        `json:"edits"`
	Completions int        `json:"completions"`
	Reopens     int        `json:"reopens"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	LastEventAt time.Time  `json:"last_event_at"`
}

// endOfTime bounds full-range event queries.
var endOfTime = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// ActivityProjection maintains an in-memory view of task activity,
// reconstructed from events stored in the event store.
type ActivityProjection struct {
	mu       sync.RWMutex
	store    Store
	tasks    map[string]*TaskActivity
	totals   map[string]int
	lastSync time.Time
}

// NewActivityProjection creates a new projection backed by the given store.
func NewActivityProjection(store Store) *ActivityProjection {
	return &ActivityProjection{
		store:  store,
		tasks:  make(map[string]*TaskActivity),
		totals: make(map[string]int),
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *ActivityProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.UnixMilli(0), endOfTime)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.tasks = make(map[string]*TaskActivity)
	p.totals = make(map[string]int)
	for _, event := range events {
		p.applyEventLocked(event)
	}
	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *ActivityProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *ActivityProjection) applyEventLocked(event Event) {
	p.totals[event.Type()]++

	taskID := event.TaskID()
	if taskID == "" {
		return
	}
	activity, exists := p.tasks[taskID]
	if !exists {
		activity = &TaskActivity{TaskID: taskID}
		p.tasks[taskID] = activity
	}
	if payload, err := DecodeTaskPayload(event); err == nil && payload.Title != "" {
		activity.Title = payload.Title
	}

	at := event.Timestamp()
	if at.After(activity.LastEventAt) {
		activity.LastEventAt = at
	}

	switch event.Type() {
	case TypeTaskCreated:
		activity.CreatedAt = &at
	case TypeTaskUpdated:
		activity.Edits++
	case TypeTaskCompleted:
		activity.Completions++
	case TypeTaskReopened:
		activity.Reopens++
	case TypeTaskDeleted:
		activity.DeletedAt = &at
	}
}

// Get returns the activity of one task.
func (p *ActivityProjection) Get(taskID string) (TaskActivity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	activity, exists := p.tasks[taskID]
	if !exists {
		return TaskActivity{}, false
	}
	return *activity, true
}

// Activities returns every task activity, most recent first.
func (p *ActivityProjection) Activities() []TaskActivity {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]TaskActivity, 0, len(p.tasks))
	for _, a := range p.tasks {
		out = append(out, *a)
	}
	slices.SortFunc(out, func(a, b TaskActivity) int {
		if c := b.LastEventAt.Compare(a.LastEventAt); c != 0 {
			return c
		}
		return strings.Compare(a.TaskID, b.TaskID)
	})
	return out
}

// Totals returns the number of events per type.
func (p *ActivityProjection) Totals() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.totals)
}

// LastSyncTime returns when the projection was last rebuilt.
func (p *ActivityProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
