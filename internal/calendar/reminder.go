package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Reminder is a titled event that recurs according to Rule, starting on Start. An empty Rule
// means the reminder happens once, on Start.
type Reminder struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Rule  string    `json:"rule"`
	Start time.Time `json:"start"`
}

var ErrInvalidRule = errors.New("invalid recurrence rule")

var everyNWeeks = regexp.MustCompile(`^every (\d+) weeks?$`)

// ParseRule parses a raw RRULE ("FREQ=WEEKLY;BYDAY=MO", optionally prefixed with "RRULE:") or
// one of the phrases "daily", "every weekday", "every weekend", "every other week",
// "every N weeks", "monthly", "yearly" and "every <weekday>".
func ParseRule(s string, start time.Time) (*rrule.RRule, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	dtstart := truncateToDay(start)

	if strings.HasPrefix(s, "rrule:") || strings.Contains(s, "freq=") {
		raw := strings.TrimPrefix(strings.ToUpper(s), "RRULE:")
		r, err := rrule.StrToRRule(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: RRULE %q: %v", ErrInvalidRule, raw, err)
		}
		r.DTStart(dtstart)

		return r, nil
	}

	opt := rrule.ROption{Dtstart: dtstart}

	switch s {
	case "every day", "daily":
		opt.Freq = rrule.DAILY
	case "every weekday", "weekdays":
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
	case "every weekend", "weekends":
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rrule.SA, rrule.SU}
	case "every week", "weekly":
		opt.Freq = rrule.WEEKLY
	case "every other week", "every second week":
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case "every month", "monthly":
		opt.Freq = rrule.MONTHLY
	case "every year", "yearly":
		opt.Freq = rrule.YEARLY
	default:
		if m := everyNWeeks.FindStringSubmatch(s); m != nil {
			n, _ := strconv.Atoi(m[1])
			opt.Freq = rrule.WEEKLY
			opt.Interval = n
			break
		}

		wd, ok := rruleWeekdays[strings.TrimPrefix(s, "every ")]
		if !strings.HasPrefix(s, "every ") || !ok {
			return nil, fmt.Errorf("%w: unrecognized recurrence %q", ErrInvalidRule, s)
		}
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{wd}
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	return r, nil
}

var rruleWeekdays = map[string]rrule.Weekday{
	"monday":    rrule.MO,
	"tuesday":   rrule.TU,
	"wednesday": rrule.WE,
	"thursday":  rrule.TH,
	"friday":    rrule.FR,
	"saturday":  rrule.SA,
	"sunday":    rrule.SU,
}

// RemindersByDay expands the reminders over m and groups their titles by day of month.
// Reminders with a rule that doesn't parse are skipped.
func RemindersByDay(reminders []Reminder, m Month) map[int][]string {
	first := m.firstDay()
	last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)

	byDay := make(map[int][]string)
	for _, r := range reminders {
		if strings.TrimSpace(r.Rule) == "" {
			start := truncateToDay(r.Start)
			if m.contains(start) {
				byDay[start.Day()] = append(byDay[start.Day()], r.Title)
			}
			continue
		}

		rule, err := ParseRule(r.Rule, r.Start)
		if err != nil {
			continue
		}

		for _, t := range rule.Between(first, last, true) {
			byDay[t.Day()] = append(byDay[t.Day()], r.Title)
		}
	}

	return byDay
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
