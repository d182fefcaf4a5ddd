package calendar

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locale holds the month and weekday names used for titles and date labels.
type Locale struct {
	Tag language.Tag

	// months are used in "Month Year" titles, monthsOf inside full dates. They differ for
	// languages with grammatical case (Polish "luty 2024" but "1 lutego 2024").
	months   [12]string
	monthsOf [12]string

	// Monday-first.
	weekdays      [7]string
	weekdaysShort [7]string
}

var Polish = Locale{
	Tag: language.Polish,
	months: [12]string{
		"styczeń", "luty", "marzec", "kwiecień", "maj", "czerwiec",
		"lipiec", "sierpień", "wrzesień", "październik", "listopad", "grudzień",
	},
	monthsOf: [12]string{
		"stycznia", "lutego", "marca", "kwietnia", "maja", "czerwca",
		"lipca", "sierpnia", "września", "października", "listopada", "grudnia",
	},
	weekdays: [7]string{
		"poniedziałek", "wtorek", "środa", "czwartek", "piątek", "sobota", "niedziela",
	},
	weekdaysShort: [7]string{"Pn", "Wt", "Śr", "Cz", "Pt", "So", "Nd"},
}

var English = Locale{
	Tag: language.English,
	months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	monthsOf: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	weekdays: [7]string{
		"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	},
	weekdaysShort: [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"},
}

// The first entry is the fallback for anything the matcher can't place.
var supportedLocales = []Locale{Polish, English}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(supportedLocales))
	for _, l := range supportedLocales {
		tags = append(tags, l.Tag)
	}

	return language.NewMatcher(tags)
}()

// ParseLocale picks the closest supported locale for a BCP 47 tag or an Accept-Language value.
func ParseLocale(s string) Locale {
	_, idx := language.MatchStrings(localeMatcher, s)

	return supportedLocales[idx]
}

func (l Locale) String() string {
	return l.Tag.String()
}

// Title formats the long month name followed by the year, e.g. "luty 2024".
func (l Locale) Title(m Month) string {
	first := m.firstDay()

	return fmt.Sprintf("%s %d", l.months[int(first.Month())-1], first.Year())
}

// Heading is Title with each word capitalized, for places where the title starts a line.
func (l Locale) Heading(m Month) string {
	return cases.Title(l.Tag).String(l.Title(m))
}

// WeekdayNames returns the short Monday-first column headers.
func (l Locale) WeekdayNames() []string {
	return l.weekdaysShort[:]
}

// LongDate formats t like "niedziela, 18 października 2026".
func (l Locale) LongDate(t time.Time) string {
	return fmt.Sprintf(
		"%s, %d %s %d",
		l.weekdays[mondayFirst(t.Weekday())],
		t.Day(),
		l.monthsOf[int(t.Month())-1],
		t.Year(),
	)
}

func mondayFirst(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
