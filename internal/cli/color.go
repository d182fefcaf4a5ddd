package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C00"))
	weekdayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CFCF"))
	silentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	todayStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// palette renders calendar parts. The zero value leaves text untouched.
type palette struct {
	styled bool
}

func (p palette) heading(s string) string { return p.render(headingStyle, s) }
func (p palette) weekday(s string) string { return p.render(weekdayStyle, s) }
func (p palette) silent(s string) string  { return p.render(silentStyle, s) }
func (p palette) today(s string) string   { return p.render(todayStyle, s) }

func (p palette) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}

	return style.Render(s)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
