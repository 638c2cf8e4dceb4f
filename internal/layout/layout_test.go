package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalc_Full(t *testing.T) {
	l := Calc(100, 40, Mode{})

	assert.False(t, l.TooSmall)
	assert.Equal(t, Rect{X: 1, Y: 1, Width: 100, Height: 12}, l.Cpu)
	assert.Equal(t, Rect{X: 1, Y: 13, Width: 45, Height: 16}, l.Mem)
	assert.Equal(t, Rect{X: 1, Y: 29, Width: 45, Height: 12}, l.Net)
	assert.Equal(t, Rect{X: 46, Y: 13, Width: 55, Height: 28}, l.Proc)
	assert.True(t, l.Detail.Empty())
}

func TestCalc_PanelsTileTheScreen(t *testing.T) {
	sizes := [][2]int{{80, 24}, {120, 50}, {211, 63}, {97, 31}}
	modes := []Mode{{}, {Mini: true}, {Detailed: true}, {Mini: true, Detailed: true}}

	for _, size := range sizes {
		for _, mode := range modes {
			l := Calc(size[0], size[1], mode)
			area := 0
			for _, p := range l.Panels() {
				area += p.Rect.Width * p.Rect.Height
				assert.GreaterOrEqual(t, p.Rect.X, 1)
				assert.GreaterOrEqual(t, p.Rect.Y, 1)
				assert.LessOrEqual(t, p.Rect.X+p.Rect.Width-1, size[0], "%s %v", p.Name, size)
				assert.LessOrEqual(t, p.Rect.Y+p.Rect.Height-1, size[1], "%s %v", p.Name, size)
			}
			assert.Equal(t, size[0]*size[1], area, "size %v mode %+v", size, mode)
		}
	}
}

func TestCalc_Mini(t *testing.T) {
	l := Calc(100, 40, Mode{Mini: true})

	assert.True(t, l.Mem.Empty())
	assert.True(t, l.Net.Empty())
	assert.Equal(t, 1, l.Proc.X)
	assert.Equal(t, 100, l.Proc.Width)
	assert.Equal(t, 18, l.Cpu.Height)
}

func TestCalc_Detailed(t *testing.T) {
	full := Calc(100, 40, Mode{})
	l := Calc(100, 40, Mode{Detailed: true})

	assert.Equal(t, full.Proc.Y, l.Detail.Y)
	assert.Equal(t, detailHeight, l.Detail.Height)
	assert.Equal(t, full.Proc.Y+detailHeight, l.Proc.Y)
	assert.Equal(t, full.Proc.Height-detailHeight, l.Proc.Height)
}

func TestCalc_TooSmall(t *testing.T) {
	l := Calc(79, 30, Mode{})
	assert.True(t, l.TooSmall)
	assert.Empty(t, l.Panels())

	l = Calc(80, 23, Mode{})
	assert.True(t, l.TooSmall)
}

func TestCalc_Pure(t *testing.T) {
	assert.Equal(t, Calc(132, 43, Mode{Detailed: true}), Calc(132, 43, Mode{Detailed: true}))
}

func TestRect(t *testing.T) {
	r := Rect{X: 5, Y: 2, Width: 10, Height: 4}

	assert.True(t, r.Contains(5, 2))
	assert.True(t, r.Contains(14, 5))
	assert.False(t, r.Contains(15, 5))
	assert.False(t, r.Contains(4, 2))
	assert.Equal(t, Rect{X: 6, Y: 3, Width: 8, Height: 2}, r.Inner())
	assert.Equal(t, "10x4@5,2", r.String())
}

func TestProcRows(t *testing.T) {
	l := Calc(100, 40, Mode{})
	assert.Equal(t, 28-2-1, l.ProcRows())
	assert.Zero(t, Layout{}.ProcRows())
}
