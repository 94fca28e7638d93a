package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders "[████░░░░] done/total" in the current theme.
func ProgressBar(done, total, width int) string {
	t := current
	if width <= 0 {
		width = 28
	}
	filled := 0
	if total > 0 {
		filled = int(float64(done) / float64(total) * float64(width))
	}
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat(t.BarFull, filled) + strings.Repeat(t.BarEmpty, width-filled) +
		fmt.Sprintf("] %d/%d", done, total)
}

// Box renders a check box for a boolean.
func Box(on bool) string {
	if on {
		return current.Success.Render(current.BoxChecked)
	}
	return current.Muted.Render(current.BoxUnchecked)
}

// PanelString frames lines with the current theme's border.
func PanelString(lines ...string) string {
	border := lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}
