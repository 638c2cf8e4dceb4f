package monitor

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/source"
	"github.com/rileyhilliard/rtop/internal/term"
	"github.com/rileyhilliard/rtop/internal/ui"
)

// coreColumnWidth is the width of the per-core meter column.
const coreColumnWidth = 30

func (r *Renderer) renderCPU(box layout.Rect, s *source.CPUSnapshot, d Display) string {
	in := box.Inner()
	if in.Empty() {
		return ""
	}
	var sb strings.Builder

	// clock and interval ride on the top edge
	clock := r.now().Format("15:04:05")
	sb.WriteString(term.MoveTo(box.Y, box.X+box.Width/2-len(clock)/2))
	sb.WriteString(ui.TitleStyle.Render(clock))
	interval := fmt.Sprintf("- %dms +", d.UpdateMs)
	sb.WriteString(term.MoveTo(box.Y, box.X+box.Width-len(interval)-3))
	sb.WriteString(ui.LabelStyle.Render(interval))

	warnings := r.warningLines()
	graphH := in.Height - len(warnings)
	if graphH < 1 {
		warnings = warnings[:0]
		graphH = in.Height
	}

	colW := min(coreColumnWidth, in.Width/2)
	graph := layout.Rect{X: in.X, Y: in.Y, Width: in.Width - colW - 1, Height: graphH}
	sb.WriteString(ui.Place(graph, ui.Graph(s.History, graph.Width, graph.Height, 100, ui.ColorGraph)))

	cores := layout.Rect{X: graph.X + graph.Width + 1, Y: in.Y, Width: colW, Height: graphH}
	sb.WriteString(ui.Place(cores, coreLines(s, colW)))

	if len(warnings) > 0 {
		lines := make([]string, len(warnings))
		for i, w := range warnings {
			lines[i] = ui.WarningStyle.Render(ui.SymbolWarning + " " + w)
		}
		sb.WriteString(ui.Place(layout.Rect{X: in.X, Y: in.Y + graphH, Width: in.Width, Height: len(lines)}, lines))
	}
	return sb.String()
}

// coreLines lists the model, the total and one meter per core, followed by
// load average and uptime.
func coreLines(s *source.CPUSnapshot, width int) []string {
	meterW := max(width-10, 1)
	line := func(label string, pct float64) string {
		return ui.LabelStyle.Render(fmt.Sprintf("%-4s", label)) + " " +
			ui.Meter(meterW, pct) + ui.ValueStyle.Render(" "+percentText(pct))
	}

	lines := []string{
		ui.TitleStyle.Render(s.Model),
		line("CPU", s.Total),
	}
	for i, pct := range s.PerCore {
		lines = append(lines, line(fmt.Sprintf("C%d", i), pct))
	}
	lines = append(lines,
		ui.LabelStyle.Render(fmt.Sprintf("Load %.2f %.2f %.2f", s.Load[0], s.Load[1], s.Load[2])),
		ui.LabelStyle.Render("Up "+uptimeText(s.Uptime)),
	)
	return lines
}
