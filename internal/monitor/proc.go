package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/proctree"
	"github.com/rileyhilliard/rtop/internal/source"
	"github.com/rileyhilliard/rtop/internal/term"
	"github.com/rileyhilliard/rtop/internal/ui"
)

// Process table column widths. The arguments column takes what is left.
const (
	colPid     = 7
	colProgram = 16
	colThreads = 8
	colUser    = 10
	colMem     = 9
	colCPU     = 6
	minArgs    = 8
)

func (r *Renderer) renderProc(l layout.Layout, s *source.ProcSnapshot, d Display) string {
	in := l.Proc.Inner()
	if in.Empty() {
		return ""
	}
	v := s.View
	var sb strings.Builder

	sb.WriteString(procTitle(l.Proc, v.Options, d))

	rows := l.ProcRows()
	wide := in.Width >= colPid+colProgram+colThreads+colUser+colMem+colCPU+minArgs
	lines := []string{ui.TitleStyle.Render(procHeader(in.Width, wide, d.MemBytes))}

	offset, selected := r.sel.Offset(), r.sel.Index()
	for i := offset; i < len(v.Rows) && i < offset+rows; i++ {
		line := procLine(v.Rows[i], in.Width, v.Options.Tree, wide, d.MemBytes)
		if i == selected {
			line = ui.SelectedStyle.Render(ui.Fit(line, in.Width))
		}
		lines = append(lines, line)
	}
	sb.WriteString(ui.Place(in, lines))

	// position counter on the bottom edge
	count := fmt.Sprintf(" %d/%d ", max(selected+1, 0), len(v.Rows))
	sb.WriteString(term.MoveTo(l.Proc.Y+l.Proc.Height-1, l.Proc.X+l.Proc.Width-len(count)-2))
	sb.WriteString(ui.LabelStyle.Render(count))

	if !l.Detail.Empty() {
		sb.WriteString(renderDetail(l.Detail, s.Detail, d))
	}
	return sb.String()
}

// procTitle draws the filter, sort key and toggles on the top edge.
func procTitle(box layout.Rect, opts proctree.Options, d Display) string {
	var sb strings.Builder
	filter := "f filter"
	switch {
	case d.Filtering:
		filter = "filter: " + d.Filter + "_"
	case d.Filter != "":
		filter = "filter: " + d.Filter
	}
	sb.WriteString(term.MoveTo(box.Y, box.X+7))
	sb.WriteString(ui.LabelStyle.Render(filter))

	tags := []string{"< " + opts.Sort.String() + " >"}
	if opts.Tree {
		tags = append(tags, "tree")
	}
	if opts.Reverse {
		tags = append(tags, "reverse")
	}
	right := strings.Join(tags, " ")
	sb.WriteString(term.MoveTo(box.Y, box.X+box.Width-len(right)-2))
	sb.WriteString(ui.TitleStyle.Render(right))
	return sb.String()
}

func argsWidth(width int) int {
	return width - colPid - colProgram - colThreads - colUser - colMem - colCPU
}

func procHeader(width int, wide, memBytes bool) string {
	mem := "Mem%"
	if memBytes {
		mem = "MemB"
	}
	var sb strings.Builder
	sb.WriteString(ui.PadLeft("Pid:", colPid-1) + " ")
	sb.WriteString(fmt.Sprintf("%-*s", colProgram, "Program:"))
	if wide {
		sb.WriteString(fmt.Sprintf("%-*s", argsWidth(width), "Arguments:"))
	}
	sb.WriteString(ui.PadLeft("Threads:", colThreads))
	sb.WriteString(" " + fmt.Sprintf("%-*s", colUser-1, "User:"))
	sb.WriteString(ui.PadLeft(mem, colMem))
	sb.WriteString(ui.PadLeft("Cpu%", colCPU))
	return sb.String()
}

func procLine(row proctree.Row, width int, tree, wide, memBytes bool) string {
	name := row.Name
	if tree {
		glyph := ""
		if row.HasChildren {
			glyph = ui.SymbolExpanded
			if row.Collapsed {
				glyph = ui.SymbolCollapsed
			}
		}
		name = row.Prefix + glyph + name
	}

	mem := fmt.Sprintf("%.1f", row.MemPercent)
	if memBytes {
		mem = bytesText(row.Mem)
	}

	var sb strings.Builder
	sb.WriteString(ui.PadLeft(strconv.Itoa(int(row.Pid)), colPid-1) + " ")
	sb.WriteString(ui.Fit(name, colProgram-1) + " ")
	if wide {
		sb.WriteString(ui.Fit(row.Args, argsWidth(width)-1) + " ")
	}
	sb.WriteString(ui.PadLeft(strconv.Itoa(int(row.Threads)), colThreads))
	sb.WriteString(" " + ui.Fit(row.User, colUser-1))
	sb.WriteString(ui.PadLeft(mem, colMem))
	sb.WriteString(ui.PadLeft(fmt.Sprintf("%.1f", row.CPU), colCPU))
	return sb.String()
}

// renderDetail draws the pinned process panel.
func renderDetail(box layout.Rect, det *source.ProcDetail, d Display) string {
	in := box.Inner()
	if in.Empty() {
		return ""
	}
	if det == nil {
		return ui.Place(in, []string{ui.MutedStyle.Render("waiting for process data")})
	}
	rec := det.Record

	mem := fmt.Sprintf("%.1f%%", rec.MemPercent)
	if d.MemBytes {
		mem = bytesText(rec.Mem)
	}
	info := []string{
		ui.TitleStyle.Render(fmt.Sprintf("%d %s", rec.Pid, rec.Name)) + ui.MutedStyle.Render(" ("+rec.Status+")"),
		ui.LabelStyle.Render("Cpu ") + ui.ValueStyle.Render(fmt.Sprintf("%.1f%%", rec.CPU)) +
			ui.LabelStyle.Render("  Mem ") + ui.ValueStyle.Render(mem) +
			ui.LabelStyle.Render("  Threads ") + ui.ValueStyle.Render(strconv.Itoa(int(rec.Threads))) +
			ui.LabelStyle.Render("  User ") + ui.ValueStyle.Render(rec.User),
		ui.MutedStyle.Render(rec.Args),
	}

	var sb strings.Builder
	textH := min(len(info), in.Height)
	sb.WriteString(ui.Place(layout.Rect{X: in.X, Y: in.Y, Width: in.Width, Height: textH}, info))

	graphH := in.Height - textH
	if graphH > 0 {
		half := in.Width / 2
		cpu := layout.Rect{X: in.X, Y: in.Y + textH, Width: half, Height: graphH}
		mem := layout.Rect{X: in.X + half + 1, Y: in.Y + textH, Width: in.Width - half - 1, Height: graphH}
		sb.WriteString(ui.Place(cpu, ui.Graph(det.CPUHistory, cpu.Width, cpu.Height, 100, ui.ColorGraph)))
		sb.WriteString(ui.Place(mem, ui.Graph(det.MemHistory, mem.Width, mem.Height, 100, ui.ColorMemBox)))
	}
	return sb.String()
}
