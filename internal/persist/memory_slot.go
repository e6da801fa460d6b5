package persist

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemorySlot keeps values in process memory. It counts calls so tests can
// assert how often the store was written.
type MemorySlot struct {
	mu       sync.Mutex
	values   map[string][]byte
	reads    int
	writes   int
	writeErr error
}

// NewMemorySlot creates an empty slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (m *MemorySlot) Backend() string { return "memory" }

func (m *MemorySlot) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	v, ok := m.values[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return slices.Clone(v), nil
}

func (m *MemorySlot) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.values[key] = slices.Clone(data)
	return nil
}

func (m *MemorySlot) Close() error { return nil }

// FailWrites makes every following Write return err. Pass nil to recover.
func (m *MemorySlot) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes returns the number of Write calls.
func (m *MemorySlot) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Reads returns the number of Read calls.
func (m *MemorySlot) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Keys lists the stored keys, sorted.
func (m *MemorySlot) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.values))
}
