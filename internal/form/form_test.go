package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskboard/internal/task"
)

var (
	berlin = time.FixedZone("CET", 3600)
	now    = time.Date(2025, 3, 1, 9, 30, 45, 0, berlin)
)

func TestCombineDateAndTime(t *testing.T) {
	date := time.Date(2025, 3, 4, 23, 59, 59, 999, berlin)

	got, err := CombineDateAndTime(date, "07:05", berlin)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 4, 7, 5, 0, 0, berlin), got)

	for _, bad := range []string{"24:00", "7:05", "07:60", "", "07-05"} {
		_, err := CombineDateAndTime(date, bad, berlin)
		require.Error(t, err, bad)
	}
}

func TestSubmit(t *testing.T) {
	edit, result := Submit(Values{
		Title:       "  Cafe\u0301 run ",
		Description: "beans",
		Date:        "2025-03-02",
		Time:        "18:00",
	}, now, berlin)

	require.True(t, result.Valid, "%v", result.Errors)
	require.Equal(t, "Café run", edit.Title)
	require.Equal(t, "beans", edit.Description)
	require.Equal(t, time.Date(2025, 3, 2, 18, 0, 0, 0, berlin), edit.Deadline)
	require.True(t, edit.Validate().Valid)
}

func TestSubmitAcceptsCurrentMinute(t *testing.T) {
	_, result := Submit(Values{Title: "now", Date: "2025-03-01", Time: "09:30"}, now, berlin)
	require.True(t, result.Valid)
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name    string
		values  Values
		field   string
		message string
	}{
		{"missing title", Values{Title: " ", Date: "2025-03-02", Time: "10:00"}, FieldTitle, "Title is required"},
		{"missing date", Values{Title: "x", Time: "10:00"}, FieldDeadline, "Date is required"},
		{"bad date", Values{Title: "x", Date: "03/02/2025", Time: "10:00"}, FieldDeadline, "Invalid date"},
		{"missing time", Values{Title: "x", Date: "2025-03-02"}, FieldDeadlineTime, "Time is required"},
		{"bad time", Values{Title: "x", Date: "2025-03-02", Time: "25:00"}, FieldDeadlineTime, "Invalid time"},
		{"past deadline", Values{Title: "x", Date: "2025-03-01", Time: "09:29"}, FieldDeadlineTime, "Deadline cannot be in the past"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result := Submit(tt.values, now, berlin)
			require.False(t, result.Valid)
			fe, ok := result.Field(tt.field).Get()
			require.True(t, ok, "expected error on %s, got %v", tt.field, result.Errors)
			require.Equal(t, tt.message, fe.Message)
		})
	}
}

func TestDefaults(t *testing.T) {
	require.Equal(t, Values{Date: "2025-03-01", Time: "09:30"}, NewTaskDefaults(now))

	tk := task.New("Buy milk", "2 litres", time.Date(2025, 3, 5, 17, 15, 0, 0, time.UTC), now)
	require.Equal(t, Values{
		Title:       "Buy milk",
		Description: "2 litres",
		Date:        "2025-03-05",
		Time:        "18:15",
	}, EditDefaults(tk, berlin))
}
