package task

import (
	"git.home.luguber.info/inful/taskboard/internal/foundation"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
)

// Filter selects which tasks a list shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

var filterNormalizer = foundation.NewNormalizer(map[string]Filter{
	"all":       FilterAll,
	"completed": FilterCompleted,
	"done":      FilterCompleted,
	"pending":   FilterPending,
	"open":      FilterPending,
}, FilterAll)

// ParseFilter parses a filter name case-insensitively.
func ParseFilter(raw string) (Filter, error) {
	f, err := filterNormalizer.NormalizeWithError(raw)
	if err != nil {
		return FilterAll, errors.ValidationError("unknown task filter").
			WithCause(err).
			WithContext("filter", raw).
			Build()
	}
	return f, nil
}

// NormalizeFilter parses a filter name, falling back to FilterAll.
func NormalizeFilter(raw string) Filter {
	return filterNormalizer.Normalize(raw)
}

// Valid reports whether f is one of the known selectors.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterCompleted, FilterPending:
		return true
	}
	return false
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.IsCompleted
	case FilterPending:
		return !t.IsCompleted
	case FilterAll:
		return true
	default:
		return false
	}
}

func (f Filter) String() string { return string(f) }
