// Package view derives the displayed task list from the stored collection.
package view

import (
	"slices"
	"time"

	"git.home.luguber.info/inful/taskboard/internal/task"
)

// Summary counts tasks per group.
type Summary struct {
	All       int `json:"all"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// View returns the tasks matching filter, pending first, then by creation time.
// Ties keep their input order. The input slice is not modified.
func View(tasks []task.Task, filter task.Filter) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	slices.SortStableFunc(out, compare)
	return out
}

func compare(a, b task.Task) int {
	if a.IsCompleted != b.IsCompleted {
		if a.IsCompleted {
			return 1
		}
		return -1
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

// Overdue returns pending tasks whose deadline is before now, in view order.
func Overdue(tasks []task.Task, now time.Time) []task.Task {
	pending := View(tasks, task.FilterPending)
	return slices.DeleteFunc(pending, func(t task.Task) bool {
		return !t.IsOverdue(now)
	})
}

// Counts summarizes tasks as of now.
func Counts(tasks []task.Task, now time.Time) Summary {
	var s Summary
	for _, t := range tasks {
		s.All++
		if t.IsCompleted {
			s.Completed++
			continue
		}
		s.Pending++
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}
