package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTaskID     = "task_id"
	KeyTitle      = "title"
	KeyOp         = "op"
	KeyFilter     = "filter"
	KeySlotKey    = "slot_key"
	KeyBackend    = "backend"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyVersion    = "version"
	KeyDurationMS = "duration_ms"
	KeyJob        = "job"
	KeyFormat     = "format"
	KeyBucket     = "bucket"
	KeyURL        = "url"
	KeyKind       = "kind"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func TaskID(id string) slog.Attr      { return slog.String(KeyTaskID, id) }
func Title(t string) slog.Attr        { return slog.String(KeyTitle, t) }
func Op(op string) slog.Attr          { return slog.String(KeyOp, op) }
func Filter(f string) slog.Attr       { return slog.String(KeyFilter, f) }
func SlotKey(k string) slog.Attr      { return slog.String(KeySlotKey, k) }
func Backend(b string) slog.Attr      { return slog.String(KeyBackend, b) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Version(v int) slog.Attr         { return slog.Int(KeyVersion, v) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Job(name string) slog.Attr       { return slog.String(KeyJob, name) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Bucket(b string) slog.Attr       { return slog.String(KeyBucket, b) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
