package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the TUI and the CLI summary
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const undefined = "n/a"

func formatLoss(v *int) string {
	if v == nil {
		return undefined
	}
	return fmt.Sprintf("%d", *v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return undefined
	}
	return fmt.Sprintf("%.2f", *v)
}

// similarityStyle colors agreement above chance green and below red.
func similarityStyle(v *float64) lipgloss.Style {
	switch {
	case v == nil:
		return dimStyle
	case *v > 0:
		return positiveStyle
	case *v < 0:
		return negativeStyle
	default:
		return lipgloss.NewStyle()
	}
}
