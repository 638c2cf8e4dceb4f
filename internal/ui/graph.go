package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns give each cell a 2x4 dot matrix:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// U+2800 is the empty pattern; dot n sets bit n-1, except dots 7 and 8
// which are bits 6 and 7.
const brailleBase = '⠀'

// brailleDots maps [row][col] to the bit of that dot.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// Graph renders data as a braille area graph of width x height cells,
// newest value at the right. Values are scaled to [0, maxVal]; each cell
// holds two samples. With percentage data (maxVal 100) each column is
// colored by severity, otherwise by color. The result has one string per
// row, top first.
func Graph(data []float64, width, height int, maxVal float64, color lipgloss.Color) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	if maxVal <= 0 {
		maxVal = 100
	}

	points := width * 2
	if len(data) > points {
		data = data[len(data)-points:]
	}
	offset := points - len(data)
	totalDots := height * 4

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(brailleBase), width))
	}
	colMax := make([]float64, width)

	for i, v := range data {
		pos := i + offset
		col, sub := pos/2, pos%2
		colMax[col] = max(colMax[col], v)

		dots := clampInt(int(v/maxVal*float64(totalDots)+0.5), totalDots)
		if v > 0 && dots == 0 {
			dots = 1
		}
		for dot := 0; dot < dots; dot++ {
			row := height - 1 - dot/4
			grid[row][col] |= rune(1) << brailleDots[3-dot%4][sub]
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var sb strings.Builder
		for c, ch := range row {
			fg := color
			if maxVal == 100 {
				fg = MetricColor(colMax[c])
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(fg).Render(string(ch)))
		}
		lines[r] = sb.String()
	}
	return lines
}

// clampInt clamps val to [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
