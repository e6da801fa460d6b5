package watch

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskboard/internal/config"
	"git.home.luguber.info/inful/taskboard/internal/persist"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

var base = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*persist.FileSlot, *persist.Adapter, *state.Store) {
	t.Helper()
	slot, err := persist.NewFileSlot(t.TempDir())
	require.NoError(t, err)
	return slot, persist.NewAdapter(slot), state.NewStore()
}

func TestReload_ReplacesChangedSnapshot(t *testing.T) {
	slot, adapter, store := setup(t)
	var changes []state.Change
	store.Subscribe(func(c state.Change) { changes = append(changes, c) })

	tk := task.New("From elsewhere", "", base.Add(time.Hour), base)
	require.NoError(t, adapter.Save(context.Background(), state.Snapshot{Tasks: []task.Task{tk}, Filter: task.FilterPending}))

	w, err := New(slot.Path(config.DefaultSlotKey), adapter, store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	require.True(t, w.Reload(context.Background()))
	require.Len(t, store.Tasks(), 1)
	require.Equal(t, task.FilterPending, store.Filter())
	require.Len(t, changes, 1)
	require.True(t, changes[0].Reloaded)

	require.False(t, w.Reload(context.Background()), "unchanged snapshot is not reapplied")
	require.Len(t, changes, 1)
}

func TestReload_IgnoresCorruptFile(t *testing.T) {
	slot, adapter, store := setup(t)
	tk := task.New("Keep me", "", base.Add(time.Hour), base)
	require.NoError(t, store.Create(tk))

	path := slot.Path(config.DefaultSlotKey)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var reports []persist.LoadReport
	w, err := New(path, adapter, store, OnReload(func(r persist.LoadReport) { reports = append(reports, r) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	require.False(t, w.Reload(context.Background()))
	require.Len(t, store.Tasks(), 1)
	require.Len(t, reports, 1)
	require.Equal(t, persist.SourceEmpty, reports[0].Source)
	require.Error(t, reports[0].Err)
}

func TestWatcher_ReloadsOnExternalWrite(t *testing.T) {
	slot, adapter, store := setup(t)

	reloaded := make(chan persist.LoadReport, 8)
	w, err := New(slot.Path(config.DefaultSlotKey), adapter, store,
		WithDebounce(20*time.Millisecond),
		OnReload(func(r persist.LoadReport) { reloaded <- r }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() { _ = w.Stop() })

	other := persist.NewAdapter(slot)
	tk := task.New("Written by another process", "", base.Add(time.Hour), base)
	require.NoError(t, other.Save(context.Background(), state.Snapshot{Tasks: []task.Task{tk}}))

	select {
	case r := <-reloaded:
		require.Equal(t, persist.SourceSlot, r.Source)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload")
	}
	require.Eventually(t, func() bool { return store.Get(tk.ID).IsSome() }, time.Second, 10*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	slot, adapter, store := setup(t)
	w, err := New(slot.Path(config.DefaultSlotKey), adapter, store)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
