package templates

import (
	"time"

	"github.com/bnuredini/homehub/internal/calendar"
)

type CalendarData struct {
	Grid         calendar.Grid
	View         calendar.View
	WeekdayNames []string
}

func NewCalendarData(view calendar.View, now time.Time, loc calendar.Locale, reminders map[int][]string) *CalendarData {
	grid := view.Grid(now, loc)
	if len(reminders) > 0 {
		grid.AttachReminders(reminders)
	}

	return &CalendarData{
		Grid:         grid,
		View:         view,
		WeekdayNames: loc.WeekdayNames(),
	}
}
