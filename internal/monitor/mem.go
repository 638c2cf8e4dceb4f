package monitor

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/source"
	"github.com/rileyhilliard/rtop/internal/ui"
)

type memItem struct {
	label string
	key   string
	value uint64
	total uint64
}

func renderMem(box layout.Rect, s *source.MemSnapshot, d Display) string {
	in := box.Inner()
	if in.Empty() {
		return ""
	}

	items := []memItem{
		{"Used", source.MemUsed, s.Used, s.Total},
		{"Available", source.MemAvailable, s.Available, s.Total},
		{"Cached", source.MemCached, s.Cached, s.Total},
		{"Free", source.MemFree, s.Free, s.Total},
	}
	if d.ShowSwap && s.SwapTotal > 0 {
		items = append(items,
			memItem{"Swap", source.SwapUsed, s.SwapUsed, s.SwapTotal},
			memItem{"Swap free", source.SwapFree, s.SwapFree, s.SwapTotal},
		)
	}

	lines := []string{
		ui.LabelStyle.Render(fmt.Sprintf("%-10s", "Total")) + ui.ValueStyle.Render(ui.PadLeft(bytesText(s.Total), 10)),
	}
	meterW := in.Width - 26
	sparkW := 0
	if meterW >= 16 {
		sparkW = meterW / 3
		meterW -= sparkW + 1
	}
	for _, it := range items {
		pct := source.Percent(it.value, it.total)
		line := ui.LabelStyle.Render(fmt.Sprintf("%-10s", it.label)) +
			ui.ValueStyle.Render(ui.PadLeft(bytesText(it.value), 10))
		if meterW > 0 {
			line += " " + ui.Meter(meterW, pct)
		}
		line += ui.ValueStyle.Render(" " + percentText(pct))
		if sparkW > 0 {
			line += " " + ui.Sparkline(s.History[it.key], sparkW, 100, ui.ColorMemBox)
		}
		lines = append(lines, line)
	}

	var sb strings.Builder
	sb.WriteString(ui.Place(layout.Rect{X: in.X, Y: in.Y, Width: in.Width, Height: min(len(lines), in.Height)}, lines))

	// used memory history fills what is left
	if rest := in.Height - len(lines); rest > 0 {
		graph := layout.Rect{X: in.X, Y: in.Y + len(lines), Width: in.Width, Height: rest}
		sb.WriteString(ui.Place(graph, ui.Graph(s.History[source.MemUsed], graph.Width, graph.Height, 100, ui.ColorMemBox)))
	}
	return sb.String()
}
