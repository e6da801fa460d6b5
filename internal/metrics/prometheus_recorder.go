package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "taskboard"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	operations      *prom.CounterVec
	persistDuration *prom.HistogramVec
	loadFallbacks   *prom.CounterVec
	loadRepairs     *prom.CounterVec
	tasks           *prom.GaugeVec
	overdueNotified prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.operations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Effective store mutations by operation",
		}, []string{"op"})
		pr.persistDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Duration of snapshot writes to the durable slot",
			Buckets:   prom.DefBuckets,
		}, []string{"backend", "result"})
		pr.loadFallbacks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "load_fallbacks_total",
			Help:      "Loads that fell back to seed or empty state",
		}, []string{"reason"})
		pr.loadRepairs = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "load_repairs_total",
			Help:      "Task records repaired while loading a snapshot",
		}, []string{"kind"})
		pr.tasks = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks",
			Help:      "Current number of tasks by state",
		}, []string{"state"})
		pr.overdueNotified = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "overdue_notified_total",
			Help:      "Overdue tasks reported by the reminder sweep",
		})
		reg.MustRegister(pr.operations, pr.persistDuration, pr.loadFallbacks, pr.loadRepairs, pr.tasks, pr.overdueNotified)
	})
	return pr
}

func (p *PrometheusRecorder) IncOperation(op string) {
	if p == nil || p.operations == nil {
		return
	}
	p.operations.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) ObservePersistDuration(backend string, d time.Duration, success bool) {
	if p == nil || p.persistDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.persistDuration.WithLabelValues(backend, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncLoadFallback(reason FallbackReason) {
	if p == nil || p.loadFallbacks == nil {
		return
	}
	p.loadFallbacks.WithLabelValues(string(reason)).Inc()
}

func (p *PrometheusRecorder) IncLoadRepair(kind string) {
	if p == nil || p.loadRepairs == nil {
		return
	}
	p.loadRepairs.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) SetTaskCounts(pending, completed, overdue int) {
	if p == nil || p.tasks == nil {
		return
	}
	p.tasks.WithLabelValues("pending").Set(float64(pending))
	p.tasks.WithLabelValues("completed").Set(float64(completed))
	p.tasks.WithLabelValues("overdue").Set(float64(overdue))
}

func (p *PrometheusRecorder) IncOverdueNotified(n int) {
	if p == nil || p.overdueNotified == nil {
		return
	}
	p.overdueNotified.Add(float64(n))
}
