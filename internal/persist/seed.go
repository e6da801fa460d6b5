package persist

import (
	"time"

	"git.home.luguber.info/inful/taskboard/internal/task"
)

// SeedTasks returns the two sample tasks installed on first run when seeding is enabled.
func SeedTasks(now time.Time) []task.Task {
	deadline := now.Add(24 * time.Hour)
	return []task.Task{
		task.New("Task 1", "Task 1 description", deadline, now),
		task.New("Task 2", "Task 2 description", deadline, now),
	}
}
