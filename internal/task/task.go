// Package task defines the task record, its edit payload and the list filter selector.
package task

import (
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/taskboard/internal/foundation"
)

// Task is one unit of work with a deadline and a completion state.
//
// Invariants: ID is never empty, CreatedAt <= UpdatedAt, and CompletedAt is
// non-nil exactly when IsCompleted is true.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Edit carries the user-editable fields of a task.
type Edit struct {
	Title       string
	Description string
	Deadline    time.Time
}

// New builds a pending task with a fresh id and CreatedAt == UpdatedAt == now.
func New(title, description string, deadline, now time.Time) Task {
	return Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Deadline:    deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		t.CompletedAt = &completed
	}
	return t
}

// Apply replaces the editable fields and refreshes UpdatedAt.
func (t *Task) Apply(e Edit, now time.Time) {
	t.Title = e.Title
	t.Description = e.Description
	t.Deadline = e.Deadline
	t.touch(now)
}

// Complete marks the task completed. It reports false if it already was.
func (t *Task) Complete(now time.Time) bool {
	if t.IsCompleted {
		return false
	}
	t.touch(now)
	completed := t.UpdatedAt
	t.IsCompleted = true
	t.CompletedAt = &completed
	return true
}

// Reopen moves a completed task back to pending. It reports false if it was pending.
func (t *Task) Reopen(now time.Time) bool {
	if !t.IsCompleted {
		return false
	}
	t.IsCompleted = false
	t.CompletedAt = nil
	t.touch(now)
	return true
}

// IsOverdue reports whether a pending task has passed its deadline.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.Deadline.Before(now)
}

// touch advances UpdatedAt, never moving it backwards.
func (t *Task) touch(now time.Time) {
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = now
}

var editValidator = foundation.NewValidatorChain[Edit](
	func(e Edit) foundation.ValidationResult {
		return foundation.NotBlank("title", "title is required")(e.Title)
	},
	func(e Edit) foundation.ValidationResult {
		return foundation.NotZeroTime("deadline", "deadline is required")(e.Deadline)
	},
)

// Validate checks the edit payload.
func (e Edit) Validate() foundation.ValidationResult {
	return editValidator.Validate(e)
}

// Validate checks the record invariants.
func (t Task) Validate() foundation.ValidationResult {
	result := Edit{Title: t.Title, Description: t.Description, Deadline: t.Deadline}.Validate()

	if t.ID == "" {
		result = result.Combine(foundation.Invalid(foundation.NewFieldError("id", "required", "id is required")))
	}
	if t.CreatedAt.IsZero() {
		result = result.Combine(foundation.Invalid(foundation.NewFieldError("createdAt", "required", "creation time is required")))
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		result = result.Combine(foundation.Invalid(foundation.NewFieldError("updatedAt", "order", "update time precedes creation time")))
	}
	if t.IsCompleted != (t.CompletedAt != nil) {
		result = result.Combine(foundation.Invalid(foundation.NewFieldError("completedAt", "consistency", "completion time must be set exactly when the task is completed")))
	}
	return result
}
