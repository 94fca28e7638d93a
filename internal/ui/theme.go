package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles styles, symbols and the panel border.
// All UI helpers pull from the current theme.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Off                                 lipgloss.Style

	BoxChecked, BoxUnchecked string
	SymOK, SymFail           string
	BarFull, BarEmpty        string

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor
}

var themes = map[string]func() Theme{
	"classic": classic,
	"neon":    neon,
	"mono":    mono,
}

var current = classic()

// Themes returns the known theme names.
func Themes() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// SetTheme switches the current theme. Unknown names fall back to classic
// and report false.
func SetTheme(name string) bool {
	mk, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		current = classic()
		return false
	}
	current = mk()
	return true
}

func Current() Theme { return current }

func classic() Theme {
	return Theme{
		Name:         "classic",
		Title:        lipgloss.NewStyle().Bold(true),
		Muted:        lipgloss.NewStyle().Faint(true),
		Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected:     lipgloss.NewStyle().Bold(true).Reverse(true),
		Off:          lipgloss.NewStyle().Faint(true),
		BoxChecked:   "☑",
		BoxUnchecked: "☐",
		SymOK:        "✔",
		SymFail:      "✖",
		BarFull:      "█",
		BarEmpty:     "░",
		Border:       lipgloss.RoundedBorder(),
		BorderColor:  lipgloss.Color("8"),
	}
}

func neon() Theme {
	t := classic()
	t.Name = "neon"
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	t.Selected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13"))
	t.BoxChecked, t.BoxUnchecked = "◼", "◻"
	t.BorderColor = lipgloss.Color("13")
	return t
}

func mono() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:         "mono",
		Title:        plain,
		Muted:        plain,
		Accent:       plain,
		Success:      plain,
		Error:        plain,
		Pending:      plain,
		Selected:     plain,
		Off:          plain,
		BoxChecked:   "[x]",
		BoxUnchecked: "[ ]",
		SymOK:        "ok",
		SymFail:      "error:",
		BarFull:      "#",
		BarEmpty:     "-",
		Border:       lipgloss.NormalBorder(),
		BorderColor:  lipgloss.NoColor{},
	}
}
