package calendar

import (
	"strings"
	"time"
)

type Direction int

const (
	Previous Direction = iota
	Next
)

// ParseDirection accepts "prev", "previous" and "next" (case-insensitive).
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "previous":
		return Previous, true
	case "next":
		return Next, true
	}

	return 0, false
}

// View is the navigation state of a calendar widget. It is a value: Navigate returns the new
// state and leaves the receiver untouched.
type View struct {
	Month int
	Year  int
}

func NewView(now time.Time) View {
	return View{Month: int(now.Month()) - 1, Year: now.Year()}
}

func (v View) Navigate(d Direction) View {
	switch d {
	case Previous:
		v.Month--
		if v.Month < 0 {
			v.Month = 11
			v.Year--
		}
	case Next:
		v.Month++
		if v.Month > 11 {
			v.Month = 0
			v.Year++
		}
	}

	return v
}

func (v View) Grid(now time.Time, loc Locale) Grid {
	return Generate(v.Month, v.Year, now, loc)
}
