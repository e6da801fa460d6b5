// Package form turns raw task input into a validated task.Edit.
//
// A deadline is entered as a calendar date plus a 24-hour "HH:mm" time and
// must not lie in the past. Titles and descriptions are trimmed and
// normalized to Unicode NFC.
package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/taskboard/internal/foundation"
	"git.home.luguber.info/inful/taskboard/internal/task"
)

// Field names reported in validation results.
const (
	FieldTitle        = "title"
	FieldDeadline     = "deadline"
	FieldDeadlineTime = "deadlineTime"
)

// Layouts of the date and time inputs.
const (
	DateLayout = time.DateOnly
	TimeLayout = "15:04"
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// Values is the raw content of the task form.
type Values struct {
	Title       string
	Description string
	// Date is a calendar date in DateLayout.
	Date string
	// Time is a time of day in TimeLayout.
	Time string
}

// NewTaskDefaults returns the values offered when creating a task: empty text
// and a deadline of now.
func NewTaskDefaults(now time.Time) Values {
	return Values{
		Date: now.Format(DateLayout),
		Time: now.Format(TimeLayout),
	}
}

// EditDefaults returns the values offered when editing t.
func EditDefaults(t task.Task, loc *time.Location) Values {
	deadline := t.Deadline.In(loc)
	return Values{
		Title:       t.Title,
		Description: t.Description,
		Date:        deadline.Format(DateLayout),
		Time:        deadline.Format(TimeLayout),
	}
}

// CombineDateAndTime sets the clock of date to hhmm, in loc. Seconds are zeroed.
func CombineDateAndTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	m := timePattern.FindStringSubmatch(hhmm)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid time %q", hhmm)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hours, minutes, 0, 0, loc), nil
}

// Submit validates v against now and returns the edit to apply.
func Submit(v Values, now time.Time, loc *time.Location) (task.Edit, foundation.ValidationResult) {
	edit := task.Edit{
		Title:       normalizeText(v.Title),
		Description: normalizeText(v.Description),
	}

	result := foundation.NotBlank(FieldTitle, "Title is required")(edit.Title)

	dateRaw := strings.TrimSpace(v.Date)
	timeRaw := strings.TrimSpace(v.Time)

	var date time.Time
	switch {
	case dateRaw == "":
		result = result.Combine(foundation.Invalid(foundation.NewFieldError(FieldDeadline, "required", "Date is required")))
	default:
		d, err := time.ParseInLocation(DateLayout, dateRaw, loc)
		if err != nil {
			result = result.Combine(foundation.Invalid(foundation.NewFieldError(FieldDeadline, "format", "Invalid date")))
		}
		date = d
	}

	switch {
	case timeRaw == "":
		result = result.Combine(foundation.Invalid(foundation.NewFieldError(FieldDeadlineTime, "required", "Time is required")))
	case !timePattern.MatchString(timeRaw):
		result = result.Combine(foundation.Invalid(foundation.NewFieldError(FieldDeadlineTime, "format", "Invalid time")))
	}

	if !result.Valid {
		return task.Edit{}, result
	}

	deadline, err := CombineDateAndTime(date, timeRaw, loc)
	if err != nil {
		return task.Edit{}, foundation.Invalid(foundation.NewFieldError(FieldDeadlineTime, "format", "Invalid time"))
	}
	// Minute precision: a deadline in the current minute is still accepted.
	if deadline.Before(now.Truncate(time.Minute)) {
		return task.Edit{}, foundation.Invalid(foundation.NewFieldError(FieldDeadlineTime, "past", "Deadline cannot be in the past"))
	}
	edit.Deadline = deadline
	return edit, foundation.Valid()
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
