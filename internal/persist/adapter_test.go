package persist

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskboard/internal/config"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
	"git.home.luguber.info/inful/taskboard/internal/retry"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type failingSlot struct{ *MemorySlot }

func (failingSlot) Read(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("disk on fire")
}

func TestLoadEmptySlot(t *testing.T) {
	var logs bytes.Buffer
	adapter := NewAdapter(NewMemorySlot(), WithLogger(testLogger(&logs)))

	snap, report := adapter.Load(context.Background())
	require.Equal(t, SourceEmpty, report.Source)
	require.NoError(t, report.Err)
	require.Empty(t, snap.Tasks)
	require.Equal(t, task.FilterAll, snap.Filter)
	require.NotContains(t, logs.String(), "level=WARN")
}

func TestLoadSeedsWhenEnabled(t *testing.T) {
	now := base
	adapter := NewAdapter(NewMemorySlot(), WithSeed(true), WithClock(func() time.Time { return now }))

	snap, report := adapter.Load(context.Background())
	require.Equal(t, SourceSeed, report.Source)
	require.Len(t, snap.Tasks, 2)
	require.Equal(t, "Task 1", snap.Tasks[0].Title)
	require.Equal(t, "Task 2 description", snap.Tasks[1].Description)
	for _, tk := range snap.Tasks {
		require.True(t, tk.Validate().Valid)
	}
}

func TestLoadCorruptSlotFallsBack(t *testing.T) {
	var logs bytes.Buffer
	slot := NewMemorySlot()
	require.NoError(t, slot.Write(context.Background(), "task-storage", []byte("{broken")))
	adapter := NewAdapter(slot, WithLogger(testLogger(&logs)), WithSeed(true))

	snap, report := adapter.Load(context.Background())
	require.Equal(t, SourceSeed, report.Source)
	require.Error(t, report.Err)
	require.Len(t, snap.Tasks, 2)
	require.Contains(t, logs.String(), "Failed to decode task snapshot")

	kept, err := slot.Read(context.Background(), "task-storage"+CorruptSuffix)
	require.NoError(t, err)
	require.Equal(t, "{broken", string(kept))
}

func TestLoadKeepsValidRecordsNextToBrokenOne(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	require.NoError(t, slot.Write(ctx, "task-storage", []byte(`{"state":{"tasks":[
		{"id":"good","title":"Keep me","deadline":"2025-03-02T00:00:00Z","isCompleted":false,"createdAt":"2025-03-01T00:00:00Z","updatedAt":"2025-03-01T00:00:00Z"},
		{"id":"bad","title":"Broken","deadline":"not a date","isCompleted":false,"createdAt":"2025-03-01T00:00:00Z","updatedAt":"2025-03-01T00:00:00Z"}
	],"taskFilter":"all"},"version":1}`)))
	adapter := NewAdapter(slot, WithLogger(testLogger(&bytes.Buffer{})))

	snap, report := adapter.Load(ctx)
	require.Equal(t, SourceSlot, report.Source)
	require.Len(t, report.Warnings, 1)

	store := state.NewStore(state.WithSnapshot(snap), state.WithClock(func() time.Time { return base }))
	detach := adapter.Attach(ctx, store)
	defer detach()
	require.NoError(t, store.Create(task.New("Another", "", base.Add(time.Hour), base)))

	saved, _, err := Decode(mustRead(t, slot, "task-storage"))
	require.NoError(t, err)
	titles := make([]string, 0, len(saved.Tasks))
	for _, tk := range saved.Tasks {
		titles = append(titles, tk.Title)
	}
	require.ElementsMatch(t, []string{"Keep me", "Another"}, titles)
}

func mustRead(t *testing.T, slot Slot, key string) []byte {
	t.Helper()
	data, err := slot.Read(context.Background(), key)
	require.NoError(t, err)
	return data
}

func TestLoadUnreadableSlotFallsBack(t *testing.T) {
	var logs bytes.Buffer
	adapter := NewAdapter(failingSlot{NewMemorySlot()}, WithLogger(testLogger(&logs)))

	snap, report := adapter.Load(context.Background())
	require.Equal(t, SourceEmpty, report.Source)
	require.ErrorContains(t, report.Err, "disk on fire")
	require.Empty(t, snap.Tasks)
	require.Contains(t, logs.String(), "Failed to read task snapshot")
}

func TestSaveThenLoad(t *testing.T) {
	slot := NewMemorySlot()
	adapter := NewAdapter(slot, WithKey("custom"))
	snap := sampleSnapshot()

	require.NoError(t, adapter.Save(context.Background(), snap))
	require.Equal(t, []string{"custom"}, slot.Keys())

	got, report := adapter.Load(context.Background())
	require.Equal(t, SourceSlot, report.Source)
	require.Equal(t, snap, got)
}

func TestSaveReportsWriteFailure(t *testing.T) {
	slot := NewMemorySlot()
	slot.FailWrites(fmt.Errorf("quota exceeded"))
	adapter := NewAdapter(slot)

	err := adapter.Save(context.Background(), sampleSnapshot())
	require.True(t, errors.HasCategory(err, errors.CategoryStorage))
	require.ErrorContains(t, err, "quota exceeded")
}

func TestAttachPersistsEffectiveMutationsOnly(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	adapter := NewAdapter(slot)
	clock := base
	store := state.NewStore(state.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	detach := adapter.Attach(ctx, store)
	defer detach()

	tk := task.New("Buy milk", "", base.Add(time.Hour), base)
	require.NoError(t, store.Create(tk))
	require.Equal(t, 1, slot.Writes())

	store.Complete(tk.ID)
	store.Complete(tk.ID)
	store.Delete("missing")
	store.UndoComplete("missing")
	require.Equal(t, 2, slot.Writes())

	store.SetFilter(task.FilterCompleted)
	require.Equal(t, 3, slot.Writes())

	store.Replace(store.Snapshot())
	require.Equal(t, 3, slot.Writes())

	reloaded, report := adapter.Load(ctx)
	require.Equal(t, SourceSlot, report.Source)
	require.Equal(t, store.Snapshot(), reloaded)
}

func TestAttachContainsWriteFailures(t *testing.T) {
	var logs bytes.Buffer
	slot := NewMemorySlot()
	slot.FailWrites(fmt.Errorf("read-only filesystem"))
	adapter := NewAdapter(slot, WithLogger(testLogger(&logs)))
	store := state.NewStore()
	detach := adapter.Attach(context.Background(), store)
	defer detach()

	tk := task.New("Buy milk", "", base.Add(time.Hour), base)
	require.NoError(t, store.Create(tk))

	require.True(t, store.Get(tk.ID).IsSome())
	require.Contains(t, logs.String(), "Failed to persist task store")
	require.Contains(t, logs.String(), "read-only filesystem")
}

// flakySlot fails the first n writes.
type flakySlot struct {
	*MemorySlot
	failures int
}

func (f *flakySlot) Write(ctx context.Context, key string, data []byte) error {
	if f.failures > 0 {
		f.failures--
		return fmt.Errorf("database is locked")
	}
	return f.MemorySlot.Write(ctx, key, data)
}

func TestSaveRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	slot := &flakySlot{MemorySlot: NewMemorySlot(), failures: 2}
	policy := retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	adapter := NewAdapter(slot, WithRetry(policy))

	require.NoError(t, adapter.Save(ctx, sampleSnapshot()))
	require.Equal(t, 1, slot.Writes())

	slot.failures = 3
	err := adapter.Save(ctx, sampleSnapshot())
	require.True(t, errors.HasCategory(err, errors.CategoryStorage))
	require.ErrorContains(t, err, "database is locked")
}

func TestAttachPersistsLatestSnapshotUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := state.NewStore()
	store.Subscribe(func(state.Change) {
		time.Sleep(time.Duration(rand.IntN(300)) * time.Microsecond)
	})
	detach := NewAdapter(slot, WithLogger(testLogger(&bytes.Buffer{}))).Attach(ctx, store)
	defer detach()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Create(task.New("t", "", base.Add(time.Hour), base)); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	saved, _, err := Decode(mustRead(t, slot, "task-storage"))
	require.NoError(t, err)
	require.Equal(t, store.Snapshot(), saved)
}
