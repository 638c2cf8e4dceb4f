package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are the 8 vertical levels, lowest to highest.
var sparklineBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the most recent width values as one row of block
// characters scaled to [0, maxVal], colored by the severity of the last
// value when maxVal is 100 and by color otherwise.
func Sparkline(data []float64, width int, maxVal float64, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	if maxVal <= 0 {
		maxVal = 100
	}

	var sb strings.Builder
	levels := len(sparklineBlocks)
	for _, v := range data {
		level := clampInt(int(v/maxVal*float64(levels-1)), levels-1)
		sb.WriteRune(sparklineBlocks[level])
	}

	if maxVal == 100 {
		color = MetricColor(data[len(data)-1])
	}
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}
