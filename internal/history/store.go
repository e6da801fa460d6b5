// Package history keeps an append-only log of task store changes and an
// activity projection rebuilt from it.
package history

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, e Event) error

	// GetByTaskID retrieves all events for a specific task.
	GetByTaskID(ctx context.Context, taskID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
