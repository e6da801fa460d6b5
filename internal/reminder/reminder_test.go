package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskboard/internal/metrics"
	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	notified int
	overdue  int
}

func (r *countingRecorder) IncOverdueNotified(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified += n
}

func (r *countingRecorder) SetTaskCounts(_, _, overdue int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overdue = overdue
}

var base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestSweep_ReportsEachOverdueTaskOnce(t *testing.T) {
	late := task.New("Late", "", base.Add(-time.Hour), base.Add(-2*time.Hour))
	soon := task.New("Soon", "", base.Add(time.Hour), base.Add(-2*time.Hour))
	done := task.New("Done", "", base.Add(-time.Hour), base.Add(-2*time.Hour))
	done.Complete(base.Add(-90 * time.Minute))

	store := state.NewStore(state.WithSnapshot(state.Snapshot{Tasks: []task.Task{late, soon, done}, Filter: task.FilterAll}))
	now := base
	rec := &countingRecorder{}
	var seen []string
	s, err := New(store, func(t task.Task) { seen = append(seen, t.ID) },
		WithRecorder(rec), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	fresh := s.Sweep()
	require.Len(t, fresh, 1)
	require.Equal(t, late.ID, fresh[0].ID)
	require.Equal(t, []string{late.ID}, seen)
	require.Equal(t, 1, rec.notified)
	require.Equal(t, 1, rec.overdue)

	require.Empty(t, s.Sweep(), "already reported")

	now = base.Add(2 * time.Hour)
	fresh = s.Sweep()
	require.Len(t, fresh, 1)
	require.Equal(t, soon.ID, fresh[0].ID)
	require.Equal(t, 2, rec.notified)
}

func TestSweep_ReportsAgainAfterDeadlineChange(t *testing.T) {
	late := task.New("Late", "", base.Add(-time.Hour), base.Add(-2*time.Hour))
	store := state.NewStore(state.WithSnapshot(state.Snapshot{Tasks: []task.Task{late}}))
	now := base
	clock := func() time.Time { return now }
	s, err := New(store, nil, WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	require.Len(t, s.Sweep(), 1)
	require.NoError(t, store.Update(late.ID, task.Edit{Title: "Late", Deadline: base.Add(-30 * time.Minute)}))
	require.Len(t, s.Sweep(), 1)
}

func TestSweep_CompletedTaskIsForgotten(t *testing.T) {
	late := task.New("Late", "", base.Add(-time.Hour), base.Add(-2*time.Hour))
	store := state.NewStore(state.WithSnapshot(state.Snapshot{Tasks: []task.Task{late}}))
	s, err := New(store, nil, WithClock(func() time.Time { return base }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	require.Len(t, s.Sweep(), 1)
	store.Complete(late.ID)
	require.Empty(t, s.Sweep())
	store.UndoComplete(late.ID)
	require.Len(t, s.Sweep(), 1)
}

func TestSchedule_RunsJob(t *testing.T) {
	late := task.New("Late", "", time.Now().Add(-time.Hour), time.Now().Add(-2*time.Hour))
	store := state.NewStore(state.WithSnapshot(state.Snapshot{Tasks: []task.Task{late}}))

	hits := make(chan string, 4)
	s, err := New(store, func(t task.Task) { hits <- t.ID })
	require.NoError(t, err)

	_, err = s.Schedule(20 * time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case id := <-hits:
		require.Equal(t, late.ID, id)
	case <-time.After(5 * time.Second):
		t.Fatal("sweep job did not run")
	}
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestSchedule_RejectsNonPositiveInterval(t *testing.T) {
	s, err := New(state.NewStore(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	_, err = s.Schedule(0)
	require.Error(t, err)
}
