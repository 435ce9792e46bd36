package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel frames for the replay layout.
var (
	canvasFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	sidebarFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)
)

// ProgressBar renders a filled bar for a fraction in [0, 1].
func ProgressBar(frac float64, width int) string {
	if width < 1 {
		return ""
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Separator renders a horizontal rule.
func Separator(width int) string {
	return strings.Repeat("─", width)
}
