package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/term"
)

// Frame draws a rounded border around r with title set into the top edge.
// The interior is left untouched.
func Frame(r layout.Rect, title string, color lipgloss.Color) string {
	if r.Width < 2 || r.Height < 2 {
		return ""
	}
	b := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(color)
	inner := r.Width - 2

	var sb strings.Builder
	sb.WriteString(term.MoveTo(r.Y, r.X))
	if title != "" && inner > 4 {
		label := edge.Render("┤") + TitleStyle.Render(ansi.Truncate(title, inner-4, "…")) + edge.Render("├")
		rest := inner - 1 - ansi.StringWidth(label)
		sb.WriteString(edge.Render(b.TopLeft + b.Top))
		sb.WriteString(label)
		sb.WriteString(edge.Render(strings.Repeat(b.Top, max(rest, 0)) + b.TopRight))
	} else {
		sb.WriteString(edge.Render(b.TopLeft + strings.Repeat(b.Top, inner) + b.TopRight))
	}

	side := edge.Render(b.Left)
	for y := r.Y + 1; y < r.Y+r.Height-1; y++ {
		sb.WriteString(term.MoveTo(y, r.X))
		sb.WriteString(side)
		sb.WriteString(term.MoveTo(y, r.X+r.Width-1))
		sb.WriteString(edge.Render(b.Right))
	}

	sb.WriteString(term.MoveTo(r.Y+r.Height-1, r.X))
	sb.WriteString(edge.Render(b.BottomLeft + strings.Repeat(b.Bottom, inner) + b.BottomRight))
	return sb.String()
}

// Place writes lines into r top to bottom, truncating each to the rect's
// width and padding it with spaces so stale text is overwritten. Lines past
// the rect's height are dropped; missing lines are blanked.
func Place(r layout.Rect, lines []string) string {
	if r.Empty() {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < r.Height; i++ {
		line := ""
		if i < len(lines) {
			line = Fit(lines[i], r.Width)
		} else {
			line = strings.Repeat(" ", r.Width)
		}
		sb.WriteString(term.MoveTo(r.Y+i, r.X))
		sb.WriteString(line)
	}
	return sb.String()
}

// Fit truncates or pads s to exactly width visible cells.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w > width {
		s = ansi.Truncate(s, width, "")
		w = ansi.StringWidth(s)
	}
	return s + strings.Repeat(" ", width-w) + term.Reset
}

// PadLeft right-aligns s in width cells.
func PadLeft(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	return strings.Repeat(" ", width-w) + s
}
