package metrics

import (
	"time"

	"git.home.luguber.info/inful/taskboard/internal/state"
	"git.home.luguber.info/inful/taskboard/internal/view"
)

// Listener returns a store listener that counts operations and refreshes the task gauges.
func Listener(rec Recorder, now func() time.Time) state.Listener {
	if rec == nil {
		rec = NoopRecorder{}
	}
	return func(c state.Change) {
		if !c.Reloaded {
			rec.IncOperation(string(c.Op))
		}
		s := view.Counts(c.Snapshot.Tasks, now())
		rec.SetTaskCounts(s.Pending, s.Completed, s.Overdue)
	}
}
