package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Meter renders a horizontal bar of width cells filled to percent. Filled
// cells take the severity color of their position, so a full bar runs from
// green to red.
func Meter(width int, percent float64) string {
	if width < 1 {
		return ""
	}
	percent = max(0, min(percent, 100))
	filled := int(percent/100*float64(width) + 0.5)

	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i+1) / float64(width) * 100
			sb.WriteString(lipgloss.NewStyle().Foreground(MetricColor(pos)).Render("■"))
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(ColorBorder).Render("■"))
		}
	}
	return sb.String()
}
