package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func ticker() func() time.Time {
	var mu sync.Mutex
	current := base
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Minute)
		return current
	}
}

func newRecordedStore(t *testing.T) (*state.Store, *SQLiteStore, *ActivityProjection) {
	t.Helper()
	db, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	projection := NewActivityProjection(db)
	recorder := NewRecorder(db, WithProjection(projection), WithClock(ticker()))
	store := state.NewStore(state.WithClock(ticker()))
	detach := recorder.Attach(context.Background(), store)
	t.Cleanup(detach)
	return store, db, projection
}

func types(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type())
	}
	return out
}

func TestRecorderAppendsOneEventPerMutation(t *testing.T) {
	store, db, _ := newRecordedStore(t)
	ctx := t.Context()

	tk := task.New("Buy milk", "", base.Add(time.Hour), base)
	require.NoError(t, store.Create(tk))
	require.NoError(t, store.Update(tk.ID, task.Edit{Title: "Buy oat milk", Deadline: base.Add(time.Hour)}))
	store.Complete(tk.ID)
	store.Complete(tk.ID)
	store.UndoComplete(tk.ID)
	store.Delete("missing")
	store.Replace(store.Snapshot())
	store.Delete(tk.ID)

	events, err := db.GetByTaskID(ctx, tk.ID)
	require.NoError(t, err)
	require.Equal(t, []string{TypeTaskCreated, TypeTaskUpdated, TypeTaskCompleted, TypeTaskReopened, TypeTaskDeleted}, types(events))

	payload, err := DecodeTaskPayload(events[2])
	require.NoError(t, err)
	require.Equal(t, "Buy oat milk", payload.Title)
	require.NotNil(t, payload.CompletedAt)
}

func TestRecorderRecordsFilterChanges(t *testing.T) {
	store, db, projection := newRecordedStore(t)

	store.SetFilter(task.FilterCompleted)

	events, err := db.GetRange(t.Context(), base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, []string{TypeFilterChanged}, types(events))
	require.Empty(t, events[0].TaskID())
	require.Equal(t, 1, projection.Totals()[TypeFilterChanged])
}

func TestFromChangeSkipsReloads(t *testing.T) {
	e, ok, err := FromChange(state.Change{Op: state.OpReplace, Reloaded: true}, base)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, e)

	_, _, err = FromChange(state.Change{Op: state.OpComplete}, base)
	require.Error(t, err)
}

func TestActivityProjection(t *testing.T) {
	store, db, live := newRecordedStore(t)

	a := task.New("A", "", base.Add(time.Hour), base)
	b := task.New("B", "", base.Add(time.Hour), base)
	require.NoError(t, store.Create(a))
	require.NoError(t, store.Create(b))
	store.Complete(a.ID)
	store.UndoComplete(a.ID)
	store.Complete(a.ID)
	require.NoError(t, store.Update(b.ID, task.Edit{Title: "B2", Deadline: base.Add(2 * time.Hour)}))
	store.Delete(b.ID)

	rebuilt := NewActivityProjection(db)
	require.NoError(t, rebuilt.Rebuild(t.Context()))
	require.False(t, rebuilt.LastSyncTime().IsZero())

	for _, p := range []*ActivityProjection{live, rebuilt} {
		actA, ok := p.Get(a.ID)
		require.True(t, ok)
		require.Equal(t, 2, actA.Completions)
		require.Equal(t, 1, actA.Reopens)
		require.NotNil(t, actA.CreatedAt)
		require.Nil(t, actA.DeletedAt)

		actB, ok := p.Get(b.ID)
		require.True(t, ok)
		require.Equal(t, "B2", actB.Title)
		require.Equal(t, 1, actB.Edits)
		require.NotNil(t, actB.DeletedAt)

		activities := p.Activities()
		require.Len(t, activities, 2)
		require.Equal(t, b.ID, activities[0].TaskID)

		require.Equal(t, map[string]int{
			TypeTaskCreated:   2,
			TypeTaskCompleted: 2,
			TypeTaskReopened:  1,
			TypeTaskUpdated:   1,
			TypeTaskDeleted:   1,
		}, p.Totals())
	}

	_, ok := live.Get("missing")
	require.False(t, ok)
}
