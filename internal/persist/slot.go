// Package persist keeps the task store durable in a single key-value slot.
//
// The Adapter encodes a state.Snapshot into a versioned JSON envelope and
// writes it under one key of a Slot. Loading revives the date fields through
// typed records, repairs records that break the completion invariants and
// falls back to seed or empty state instead of failing.
package persist

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by Slot.Read when nothing is stored under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a durable key-value location holding serialized snapshots.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

// Named is implemented by slots that report a backend name for logs and metrics.
type Named interface {
	Backend() string
}

func backendName(s Slot) string {
	if n, ok := s.(Named); ok {
		return n.Backend()
	}
	return "custom"
}
