// Package layout computes panel geometry for the dashboard.
package layout

import "fmt"

// Minimum terminal size the dashboard can be drawn in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// Panel percentages of the available space.
const (
	cpuHeightPct     = 32
	cpuHeightPctMini = 45
	memWidthPct      = 45
	memHeightPct     = 60
	detailHeight     = 8
)

// Rect is a panel position in 1-based terminal cells.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rect occupies no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the 1-based cell (x, y) lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return !r.Empty() && x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Inner returns the rect inside a one-cell border.
func (r Rect) Inner() Rect {
	if r.Width < 2 || r.Height < 2 {
		return Rect{X: r.X, Y: r.Y}
	}
	return Rect{X: r.X + 1, Y: r.Y + 1, Width: r.Width - 2, Height: r.Height - 2}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.Width, r.Height, r.X, r.Y)
}

// Mode selects which panels are shown.
type Mode struct {
	Mini     bool // hide the memory and network panels
	Detailed bool // show the detail panel above the process list
}

// Layout holds the geometry of every panel for one terminal size and mode.
// Panels not shown in the mode are empty.
type Layout struct {
	Width, Height int
	Mode          Mode
	TooSmall      bool

	Cpu    Rect
	Mem    Rect
	Net    Rect
	Proc   Rect
	Detail Rect
}

// Calc computes the layout for a terminal of width x height cells. It is a
// pure function; a terminal below MinWidth x MinHeight yields a layout with
// TooSmall set and no panels.
func Calc(width, height int, mode Mode) Layout {
	l := Layout{Width: width, Height: height, Mode: mode}
	if width < MinWidth || height < MinHeight {
		l.TooSmall = true
		return l
	}

	cpuPct := cpuHeightPct
	if mode.Mini {
		cpuPct = cpuHeightPctMini
	}
	cpuH := height * cpuPct / 100
	l.Cpu = Rect{X: 1, Y: 1, Width: width, Height: cpuH}

	top := cpuH + 1
	rest := height - cpuH

	procX, procW := 1, width
	if !mode.Mini {
		memW := width * memWidthPct / 100
		memH := rest * memHeightPct / 100
		l.Mem = Rect{X: 1, Y: top, Width: memW, Height: memH}
		l.Net = Rect{X: 1, Y: top + memH, Width: memW, Height: rest - memH}
		procX, procW = memW+1, width-memW
	}

	procY, procH := top, rest
	if mode.Detailed {
		l.Detail = Rect{X: procX, Y: procY, Width: procW, Height: detailHeight}
		procY += detailHeight
		procH -= detailHeight
	}
	l.Proc = Rect{X: procX, Y: procY, Width: procW, Height: procH}
	return l
}

// Panels returns the non-empty panels by name, in drawing order.
func (l Layout) Panels() []Named {
	all := []Named{
		{"cpu", l.Cpu},
		{"mem", l.Mem},
		{"net", l.Net},
		{"detail", l.Detail},
		{"proc", l.Proc},
	}
	out := all[:0]
	for _, p := range all {
		if !p.Rect.Empty() {
			out = append(out, p)
		}
	}
	return out
}

// Named pairs a panel name with its rect.
type Named struct {
	Name string
	Rect Rect
}

// ProcRows is the number of process rows that fit in the process panel:
// the inner height less one header line.
func (l Layout) ProcRows() int {
	rows := l.Proc.Inner().Height - 1
	if rows < 0 {
		return 0
	}
	return rows
}
