package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/ui"
)

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorAccent).
			Background(ui.ColorSurface).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorAccent).
			Bold(true).
			MarginBottom(1)
)

func newHelp() help.Model {
	h := help.New()
	h.ShowAll = true
	h.FullSeparator = "   "
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(ui.ColorText).Bold(true)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(ui.ColorTextDim)
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(ui.ColorBorder)
	return h
}

// helpColumns is how many binding groups share one row of the overlay.
const helpColumns = 3

// renderHelp returns the help box centered on the screen.
func renderHelp(h help.Model, keys keyMap, l layout.Layout) string {
	parts := []string{helpTitleStyle.Render("Keyboard Shortcuts")}
	groups := keys.FullHelp()
	for i := 0; i < len(groups); i += helpColumns {
		if i > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, h.FullHelpView(groups[i:min(i+helpColumns, len(groups))]))
	}
	parts = append(parts, "",
		ui.LabelStyle.Render("Press h, f1 or esc to close"),
	)
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	box := helpBoxStyle.Render(content)

	lines := strings.Split(box, "\n")
	w := lipgloss.Width(box)
	r := layout.Rect{
		X:      max(1, (l.Width-w)/2+1),
		Y:      max(1, (l.Height-len(lines))/2+1),
		Width:  min(w, l.Width),
		Height: min(len(lines), l.Height),
	}
	return ui.Place(r, lines)
}
