package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

// CurrentVersion is the envelope version written by Encode.
const CurrentVersion = 1

// Repair kinds reported by Decode.
const (
	RepairCompletedAtMissing   = "completed_at_missing"
	RepairCompletedAtCleared   = "completed_at_cleared"
	RepairUpdatedBeforeCreated = "updated_before_created"
	RepairDuplicateID          = "duplicate_id"
	RepairInvalidRecord        = "invalid_record"
	RepairUnknownFilter        = "unknown_filter"
	RepairNewerVersion         = "newer_version"
)

// Warning describes something Decode had to fix or drop.
type Warning struct {
	Kind    string
	TaskID  string
	Message string
}

func (w Warning) String() string {
	if w.TaskID != "" {
		return fmt.Sprintf("%s (task %s): %s", w.Kind, w.TaskID, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

type envelopeOut struct {
	State   state.Snapshot `json:"state"`
	Version int            `json:"version"`
}

// Encode serializes snap into the versioned envelope.
func Encode(snap state.Snapshot) ([]byte, error) {
	if snap.Tasks == nil {
		snap.Tasks = []task.Task{}
	}
	if snap.Filter == "" {
		snap.Filter = task.FilterAll
	}
	data, err := json.Marshal(envelopeOut{State: snap, Version: CurrentVersion})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

type envelopeIn struct {
	State   json.RawMessage `json:"state"`
	Version *int            `json:"version"`
	Tasks   json.RawMessage `json:"tasks"`
}

type stateRecord struct {
	Tasks      []json.RawMessage `json:"tasks"`
	TaskFilter string            `json:"taskFilter"`
}

// taskRecord mirrors task.Task with lenient date fields. Only these four
// fields are revived as dates.
type taskRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    timestamp  `json:"deadline"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   timestamp  `json:"createdAt"`
	UpdatedAt   timestamp  `json:"updatedAt"`
	CompletedAt *timestamp `json:"completedAt"`
}

// Decode parses an envelope (or a bare state object) and revives it into a
// snapshot. Records that break the invariants are repaired or dropped and
// reported as warnings.
func Decode(data []byte) (state.Snapshot, []Warning, error) {
	var env envelopeIn
	if err := json.Unmarshal(data, &env); err != nil {
		return state.Snapshot{}, nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	var warnings []Warning
	raw := env.State
	version := 0
	switch {
	case len(raw) > 0 && !isNull(raw):
		if env.Version != nil {
			version = *env.Version
		}
	case len(env.Tasks) > 0:
		raw = data
	default:
		return state.Snapshot{}, nil, fmt.Errorf("snapshot has neither state nor tasks")
	}
	if version > CurrentVersion {
		warnings = append(warnings, Warning{
			Kind:    RepairNewerVersion,
			Message: fmt.Sprintf("snapshot version %d is newer than %d", version, CurrentVersion),
		})
	}

	var rec stateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return state.Snapshot{}, nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	snap := state.Snapshot{Filter: task.FilterAll, Tasks: make([]task.Task, 0, len(rec.Tasks))}
	if rec.TaskFilter != "" {
		f, err := task.ParseFilter(rec.TaskFilter)
		if err != nil {
			warnings = append(warnings, Warning{Kind: RepairUnknownFilter, Message: fmt.Sprintf("filter %q replaced by all", rec.TaskFilter)})
		}
		snap.Filter = f
	}

	seen := make(map[string]bool, len(rec.Tasks))
	for _, item := range rec.Tasks {
		var r taskRecord
		if err := json.Unmarshal(item, &r); err != nil {
			warnings = append(warnings, Warning{Kind: RepairInvalidRecord, TaskID: recordID(item), Message: err.Error()})
			continue
		}
		t, repairs := revive(r)
		warnings = append(warnings, repairs...)

		if res := t.Validate(); !res.Valid {
			warnings = append(warnings, Warning{Kind: RepairInvalidRecord, TaskID: t.ID, Message: res.ToError().Error()})
			continue
		}
		if seen[t.ID] {
			warnings = append(warnings, Warning{Kind: RepairDuplicateID, TaskID: t.ID, Message: "later record with the same id dropped"})
			continue
		}
		seen[t.ID] = true
		snap.Tasks = append(snap.Tasks, t)
	}
	return snap, warnings, nil
}

func revive(r taskRecord) (task.Task, []Warning) {
	t := task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Deadline:    r.Deadline.Time,
		IsCompleted: r.IsCompleted,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
	if r.CompletedAt != nil && !r.CompletedAt.IsZero() {
		completed := r.CompletedAt.Time
		t.CompletedAt = &completed
	}

	var warnings []Warning
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
		warnings = append(warnings, Warning{Kind: RepairUpdatedBeforeCreated, TaskID: t.ID, Message: "update time raised to creation time"})
	}
	switch {
	case t.IsCompleted && t.CompletedAt == nil:
		completed := t.UpdatedAt
		t.CompletedAt = &completed
		warnings = append(warnings, Warning{Kind: RepairCompletedAtMissing, TaskID: t.ID, Message: "completion time set to update time"})
	case !t.IsCompleted && t.CompletedAt != nil:
		t.CompletedAt = nil
		warnings = append(warnings, Warning{Kind: RepairCompletedAtCleared, TaskID: t.ID, Message: "completion time cleared on pending task"})
	}
	return t, warnings
}

// recordID extracts the id of a record that failed to decode, if it has one.
func recordID(item json.RawMessage) string {
	var idOnly struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(item, &idOnly); err != nil {
		return ""
	}
	return idOnly.ID
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// timestamp accepts RFC 3339 strings (with or without fractional seconds),
// zone-less and date-only strings, and epoch milliseconds.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateOnly,
}

func (ts *timestamp) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		ts.Time = time.Time{}
		return nil
	}
	if len(b) > 0 && b[0] != '"' {
		ms, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s", b)
		}
		ts.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}
