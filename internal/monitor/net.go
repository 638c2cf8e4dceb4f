package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/source"
	"github.com/rileyhilliard/rtop/internal/term"
	"github.com/rileyhilliard/rtop/internal/ui"
)

func renderNet(box layout.Rect, s *source.NetSnapshot) string {
	in := box.Inner()
	if in.Empty() {
		return ""
	}
	var sb strings.Builder

	// b and n cycle the interface named on the top edge
	iface := "<b " + s.Interface + " n>"
	if s.Interface == "" {
		iface = "<b no interface n>"
	}
	sb.WriteString(term.MoveTo(box.Y, box.X+box.Width-len(iface)-2))
	sb.WriteString(ui.TitleStyle.Render(iface))

	var flags []string
	if s.Reset {
		flags = append(flags, "reset")
	}
	if s.Auto {
		flags = append(flags, "auto")
	}
	if s.Sync {
		flags = append(flags, "sync")
	}
	header := ui.MutedStyle.Render(strings.Join(flags, " "))

	statsH := 2
	graphH := (in.Height - 1 - 2*statsH) / 2
	lines := []string{header}
	lines = append(lines, direction(ui.SymbolDown+" Download", s.Download, in.Width, graphH, ui.ColorDownload)...)
	lines = append(lines, direction(ui.SymbolUp+" Upload", s.Upload, in.Width, graphH, ui.ColorUpload)...)
	sb.WriteString(ui.Place(in, lines))
	return sb.String()
}

// direction renders the graph and the rate lines of one direction.
func direction(label string, d source.NetDirection, width, graphH int, color lipgloss.Color) []string {
	var lines []string
	if graphH > 0 {
		lines = append(lines, ui.Graph(d.History, width, graphH, d.Graph, color)...)
	}
	lines = append(lines,
		lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)+" "+ui.ValueStyle.Render(rateText(d.Speed)),
		ui.LabelStyle.Render("Top ")+ui.ValueStyle.Render(rateText(d.Top))+
			ui.LabelStyle.Render("  Total ")+ui.ValueStyle.Render(bytesText(d.Total)),
	)
	return lines
}
