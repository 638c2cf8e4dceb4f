// Package term holds the escape sequences the dashboard writes and a thin
// handle over the controlling terminal's output side.
package term

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	xterm "golang.org/x/term"
)

// Fallback geometry when the output is not a terminal.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Screen mode toggles. Written through the compositor's Now.
var (
	AltScreen     = termenv.CSI + termenv.AltScreenSeq
	NormalScreen  = termenv.CSI + termenv.ExitAltScreenSeq
	HideCursor    = termenv.CSI + termenv.HideCursorSeq
	ShowCursor    = termenv.CSI + termenv.ShowCursorSeq
	SaveCursor    = termenv.CSI + termenv.SaveCursorPositionSeq
	RestoreCursor = termenv.CSI + termenv.RestoreCursorPositionSeq
	Clear         = termenv.CSI + "2J" + termenv.CSI + "0;0f"
	ClearLine     = termenv.CSI + termenv.EraseEntireLineSeq

	// MouseOn enables button and wheel reports in SGR extended encoding.
	MouseOn = termenv.CSI + termenv.EnableMouseCellMotionSeq +
		termenv.CSI + termenv.EnableMouseExtendedModeSeq
	MouseOff = termenv.CSI + termenv.DisableMouseCellMotionSeq +
		termenv.CSI + termenv.DisableMouseExtendedModeSeq
	// MouseDirectOff disables the any-motion mode some terminals leave on.
	MouseDirectOff = termenv.CSI + termenv.DisableMouseAllMotionSeq

	// Reset clears all SGR attributes.
	Reset = termenv.CSI + termenv.ResetSeq + "m"
)

// MoveTo positions the cursor at a 1-based line and column.
func MoveTo(line, col int) string {
	return termenv.CSI + fmt.Sprintf(termenv.CursorPositionSeq, line, col)
}

// Right moves the cursor n columns right.
func Right(n int) string {
	if n <= 0 {
		return ""
	}
	return termenv.CSI + fmt.Sprintf(termenv.CursorForwardSeq, n)
}

// Left moves the cursor n columns left.
func Left(n int) string {
	if n <= 0 {
		return ""
	}
	return termenv.CSI + fmt.Sprintf(termenv.CursorBackSeq, n)
}

// Down moves the cursor n lines down.
func Down(n int) string {
	if n <= 0 {
		return ""
	}
	return termenv.CSI + fmt.Sprintf(termenv.CursorDownSeq, n)
}

// Title sets the window title. An empty title resets it.
func Title(s string) string {
	return termenv.OSC + fmt.Sprintf(termenv.SetWindowTitleSeq, s)
}

// Terminal is the output side of the controlling terminal.
// Writes are serialized so the compositor and one-shot mode toggles never interleave.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	fd     int
	isTTY  bool
	width  int
	height int
}

// New wraps out. When out is a terminal its size is queried on Refresh.
func New(out io.Writer) *Terminal {
	t := &Terminal{out: out, fd: -1, width: DefaultWidth, height: DefaultHeight}
	if f, ok := out.(*os.File); ok {
		t.fd = int(f.Fd())
		t.isTTY = xterm.IsTerminal(t.fd)
	}
	t.Refresh()
	return t
}

// Write implements io.Writer.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Write(p)
}

// IsTerminal reports whether output goes to a real terminal.
func (t *Terminal) IsTerminal() bool {
	return t.isTTY
}

// Refresh re-reads the terminal size and reports whether it changed.
func (t *Terminal) Refresh() bool {
	if !t.isTTY {
		return false
	}
	w, h, err := xterm.GetSize(t.fd)
	if err != nil || w <= 0 || h <= 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	changed := w != t.width || h != t.height
	t.width, t.height = w, h
	return changed
}

// Size returns the last known width and height.
func (t *Terminal) Size() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// SetSize overrides the geometry. Used by tests and non-terminal output.
func (t *Terminal) SetSize(width, height int) {
	t.mu.Lock()
	t.width, t.height = width, height
	t.mu.Unlock()
}
