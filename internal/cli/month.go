package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bnuredini/homehub/internal/calendar"
)

const gridWidth = 7*3 - 1

type monthOptions struct {
	Month  int
	Year   int
	Locale string
	Plain  bool
}

var monthFlags = struct {
	ints  []IntFlag
	strs  []StringFlag
	bools []BoolFlag
}{
	ints: []IntFlag{
		{Name: "month", Usage: "month to show (1-12, default: current month)"},
		{Name: "year", Usage: "year to show (default: current year)"},
	},
	strs: []StringFlag{
		{Name: "locale", Usage: "language of month and weekday names (pl, en)", Default: "pl"},
	},
	bools: []BoolFlag{
		{Name: "plain", Usage: "disable colors"},
	},
}

var monthCmd = newMonthCommand("month", "Show a month", nil)

var nextCmd = newMonthCommand("next", "Show the month after the given (or current) one", direction(calendar.Next))

var prevCmd = newMonthCommand("prev", "Show the month before the given (or current) one", direction(calendar.Previous))

func direction(d calendar.Direction) *calendar.Direction {
	return &d
}

func newMonthCommand(use, short string, nav *calendar.Direction) *cobra.Command {
	return LeafCommand{
		Use:       use,
		Short:     short,
		Args:      cobra.NoArgs,
		IntFlags:  monthFlags.ints,
		StrFlags:  monthFlags.strs,
		BoolFlags: monthFlags.bools,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readMonthOptions(cmd)
			if err != nil {
				return err
			}

			return runMonth(cmd, opts, nav, time.Now())
		},
	}.Build()
}

func readMonthOptions(cmd *cobra.Command) (monthOptions, error) {
	var opts monthOptions
	var err error

	flags := cmd.Flags()
	if opts.Month, err = flags.GetInt("month"); err != nil {
		return opts, err
	}
	if opts.Year, err = flags.GetInt("year"); err != nil {
		return opts, err
	}
	if opts.Locale, err = flags.GetString("locale"); err != nil {
		return opts, err
	}
	if opts.Plain, err = flags.GetBool("plain"); err != nil {
		return opts, err
	}

	return opts, nil
}

func runMonth(cmd *cobra.Command, opts monthOptions, nav *calendar.Direction, now time.Time) error {
	view := calendar.NewView(now)
	if opts.Month != 0 {
		if opts.Month < 1 || opts.Month > 12 {
			return fmt.Errorf("--month must be between 1 and 12, got %d", opts.Month)
		}
		view.Month = opts.Month - 1
	}
	if opts.Year != 0 {
		view.Year = opts.Year
	}
	if nav != nil {
		view = view.Navigate(*nav)
	}

	loc := calendar.ParseLocale(opts.Locale)
	out := cmd.OutOrStdout()
	p := palette{styled: !opts.Plain && isTerminal(out)}

	_, err := fmt.Fprint(out, renderGrid(view.Grid(now, loc), loc, p))
	return err
}

// renderGrid lays the grid out like cal(1): a centered heading, weekday names and one line per
// week.
func renderGrid(grid calendar.Grid, loc calendar.Locale, p palette) string {
	var sb strings.Builder

	heading := lipgloss.PlaceHorizontal(gridWidth, lipgloss.Center, loc.Heading(grid.Month))
	sb.WriteString(p.heading(strings.TrimRight(heading, " ")))
	sb.WriteString("\n")

	names := loc.WeekdayNames()
	for i, name := range names {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(p.weekday(fmt.Sprintf("%-2s", name)))
	}
	sb.WriteString("\n")

	for _, week := range grid.Rows {
		for i, cell := range week {
			if i > 0 {
				sb.WriteString(" ")
			}

			day := fmt.Sprintf("%2d", cell.Day)
			switch {
			case cell.Today:
				sb.WriteString(p.today(day))
			case !cell.CurrentMonth:
				sb.WriteString(p.silent(day))
			default:
				sb.WriteString(day)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
