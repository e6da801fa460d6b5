package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"TaskID", KeyTaskID, "123", TaskID("123")},
		{"Title", KeyTitle, "Buy milk", Title("Buy milk")},
		{"Op", KeyOp, "create", Op("create")},
		{"Filter", KeyFilter, "pending", Filter("pending")},
		{"SlotKey", KeySlotKey, "task-storage", SlotKey("task-storage")},
		{"Backend", KeyBackend, "sqlite", Backend("sqlite")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Job", KeyJob, "overdue-sweep", Job("overdue-sweep")},
		{"Format", KeyFormat, "markdown", Format("markdown")},
		{"Bucket", KeyBucket, "taskboard", Bucket("taskboard")},
		{"URL", KeyURL, "nats://127.0.0.1:4222", URL("nats://127.0.0.1:4222")},
		{"Kind", KeyKind, "duplicate_id", Kind("duplicate_id")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Count(5); v.Key != KeyCount || v.Value.Int64() != 5 {
		t.Fatalf("Count mismatch: %v", v)
	}
	if v := Version(1); v.Key != KeyVersion {
		t.Fatalf("Version key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
