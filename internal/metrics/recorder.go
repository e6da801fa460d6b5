package metrics

import "time"

// FallbackReason explains why a load did not use the stored snapshot.
type FallbackReason string

const (
	FallbackEmpty   FallbackReason = "empty"
	FallbackRead    FallbackReason = "read_error"
	FallbackDecode  FallbackReason = "decode_error"
	FallbackVersion FallbackReason = "version"
)

// Recorder defines observability hooks for store operations and persistence.
// Implementations may forward to Prometheus, OpenTelemetry, etc. NoopRecorder is
// the default so callers never check for nil.
type Recorder interface {
	IncOperation(op string)
	ObservePersistDuration(backend string, d time.Duration, success bool)
	IncLoadFallback(reason FallbackReason)
	IncLoadRepair(kind string)
	SetTaskCounts(pending, completed, overdue int)
	IncOverdueNotified(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncOperation(string)                                {}
func (NoopRecorder) ObservePersistDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncLoadFallback(FallbackReason)                     {}
func (NoopRecorder) IncLoadRepair(string)                               {}
func (NoopRecorder) SetTaskCounts(int, int, int)                        {}
func (NoopRecorder) IncOverdueNotified(int)                             {}
