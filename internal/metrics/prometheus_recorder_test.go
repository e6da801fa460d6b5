package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncOperation("create")
	pr.IncOperation("create")
	pr.ObservePersistDuration("file", 3*time.Millisecond, true)
	pr.IncLoadFallback(FallbackDecode)
	pr.IncLoadRepair("completed_at_missing")
	pr.SetTaskCounts(2, 1, 1)
	pr.IncOverdueNotified(1)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 6)

	require.InDelta(t, 2, testutil.ToFloat64(pr.operations.WithLabelValues("create")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.tasks.WithLabelValues("overdue")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.loadFallbacks.WithLabelValues(string(FallbackDecode))), 0)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncOperation("create")
	pr.SetTaskCounts(1, 1, 1)
	pr.IncOverdueNotified(3)
}

func TestListener(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	store := state.NewStore(state.WithClock(func() time.Time { return now }))
	unsubscribe := store.Subscribe(Listener(pr, func() time.Time { return now }))
	defer unsubscribe()

	late := task.New("late", "", now.Add(-time.Hour), now.Add(-2*time.Hour))
	require.NoError(t, store.Create(late))
	require.NoError(t, store.Create(task.New("later", "", now.Add(time.Hour), now)))
	store.Replace(store.Snapshot())

	require.InDelta(t, 2, testutil.ToFloat64(pr.operations.WithLabelValues("create")), 0)
	require.InDelta(t, 0, testutil.ToFloat64(pr.operations.WithLabelValues("replace")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(pr.tasks.WithLabelValues("pending")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.tasks.WithLabelValues("overdue")), 0)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncOperation("complete")

	path := filepath.Join(t.TempDir(), "taskboard.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `taskboard_operations_total{op="complete"} 1`))

	require.NoError(t, WriteTextfile("", reg))
}
