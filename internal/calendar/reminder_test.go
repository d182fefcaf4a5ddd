package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "raw rrule", input: "FREQ=WEEKLY;BYDAY=MO"},
		{name: "raw rrule with prefix", input: "RRULE:FREQ=MONTHLY;BYMONTHDAY=10"},
		{name: "daily", input: "daily"},
		{name: "every weekday", input: "every weekday"},
		{name: "every other week", input: "every other week"},
		{name: "every 3 weeks", input: "every 3 weeks"},
		{name: "every tuesday", input: "Every Tuesday"},
		{name: "monthly", input: "monthly"},
		{name: "garbage", input: "sometimes", wantErr: true},
		{name: "unknown weekday", input: "every funday", wantErr: true},
		{name: "bad rrule", input: "FREQ=SOMETIMES", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRule(tt.input, start)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRule)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}
}

func TestRemindersByDay(t *testing.T) {
	reminders := []Reminder{
		// Mondays of February 2024: 5, 12, 19, 26
		{Title: "trash", Rule: "every monday", Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "rent", Rule: "FREQ=MONTHLY;BYMONTHDAY=10", Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "dentist", Start: time.Date(2024, 2, 12, 15, 30, 0, 0, time.UTC)},
		{Title: "elsewhere", Start: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)},
		{Title: "future", Rule: "daily", Start: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "broken", Rule: "whenever", Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	byDay := RemindersByDay(reminders, Month{Year: 2024, Month: 1})

	assert.Equal(t, map[int][]string{
		5:  {"trash"},
		10: {"rent"},
		12: {"trash", "dentist"},
		19: {"trash"},
		26: {"trash"},
	}, byDay)
}
