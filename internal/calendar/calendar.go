// Package calendar lays out month grids for a Monday-first, 7-column calendar.
//
// Nothing in here touches I/O. Callers pass the wall-clock time in and render the resulting
// Grid however they like (HTML partial, terminal, JSON).
package calendar

import (
	"time"
)

// Month identifies the month under display. Month is zero-based (0 = January).
type Month struct {
	Year  int
	Month int
}

type Cell struct {
	Day          int
	CurrentMonth bool
	Today        bool
	Reminders    []string
}

type Week [7]Cell

type Grid struct {
	Title string
	Month Month
	Rows  []Week
}

const maxRows = 6

func (m Month) firstDay() time.Time {
	return time.Date(m.Year, time.Month(m.Month+1), 1, 0, 0, 0, 0, time.UTC)
}

// FirstWeekday returns the Monday-first weekday index (0 = Monday, 6 = Sunday) of the 1st.
func (m Month) FirstWeekday() int {
	raw := int(m.firstDay().Weekday())
	if raw == 0 {
		return 6
	}

	return raw - 1
}

// DaysInMonth is the day-of-month of day 0 of the following month.
func (m Month) DaysInMonth() int {
	return time.Date(m.Year, time.Month(m.Month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Month) DaysInPreviousMonth() int {
	return time.Date(m.Year, time.Month(m.Month+1), 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Month) contains(t time.Time) bool {
	return t.Year() == m.Year && int(t.Month())-1 == m.Month
}

// Generate lays out the given month. Rows stop as soon as the last day of the month has been
// placed, so the grid has between 4 and 6 full weeks. Days borrowed from the neighboring months
// fill the first and last row.
func Generate(month, year int, now time.Time, loc Locale) Grid {
	m := Month{Year: year, Month: month}
	firstWeekday := m.FirstWeekday()
	daysInMonth := m.DaysInMonth()
	daysInPrevMonth := m.DaysInPreviousMonth()
	isCurrentMonth := m.contains(now)

	rows := make([]Week, 0, maxRows)

	date := 1
	for i := 0; i < maxRows; i++ {
		if date > daysInMonth {
			break
		}

		var week Week
		for j := 0; j < 7; j++ {
			switch {
			case i == 0 && j < firstWeekday:
				week[j] = Cell{Day: daysInPrevMonth - (firstWeekday - j - 1)}
			case date > daysInMonth:
				week[j] = Cell{Day: date - daysInMonth}
				date++
			default:
				week[j] = Cell{
					Day:          date,
					CurrentMonth: true,
					Today:        isCurrentMonth && date == now.Day(),
				}
				date++
			}
		}

		rows = append(rows, week)
	}

	return Grid{
		Title: loc.Title(m),
		Month: m,
		Rows:  rows,
	}
}

// AttachReminders marks current-month cells with the reminder titles keyed by day of month.
func (g *Grid) AttachReminders(byDay map[int][]string) {
	for i := range g.Rows {
		for j := range g.Rows[i] {
			cell := &g.Rows[i][j]
			if !cell.CurrentMonth {
				continue
			}

			cell.Reminders = byDay[cell.Day]
		}
	}
}

// Cells returns the grid cells in row-major order.
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, len(g.Rows)*7)
	for _, week := range g.Rows {
		cells = append(cells, week[:]...)
	}

	return cells
}
