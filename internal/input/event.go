package input

import "fmt"

// Kind tags which field of an Event is meaningful.
type Kind int

const (
	KindRune Kind = iota
	KindNamed
	KindMouse
)

// Named keys produced by the decoder.
const (
	KeyUp        = "up"
	KeyDown      = "down"
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyHome      = "home"
	KeyEnd       = "end"
	KeyPageUp    = "page_up"
	KeyPageDown  = "page_down"
	KeyInsert    = "insert"
	KeyDelete    = "delete"
	KeyEscape    = "escape"
	KeyEnter     = "enter"
	KeyBackspace = "backspace"
	KeyTab       = "tab"
	KeyShiftTab  = "shift_tab"
	KeyCtrlC     = "ctrl+c"
	KeyCtrlZ     = "ctrl+z"
)

// MouseKind is the action reported by a mouse event.
type MouseKind int

const (
	MouseClick MouseKind = iota
	MouseScrollUp
	MouseScrollDown
)

// String returns the event name used in key bindings.
func (k MouseKind) String() string {
	switch k {
	case MouseScrollUp:
		return "mouse_scroll_up"
	case MouseScrollDown:
		return "mouse_scroll_down"
	default:
		return "mouse_click"
	}
}

// Mouse is a decoded mouse report. X and Y are 1-based terminal cells.
type Mouse struct {
	Kind MouseKind
	X    int
	Y    int
}

// Event is one semantic input event: a printable rune, a named key or a mouse report.
type Event struct {
	Kind  Kind
	Rune  rune
	Name  string
	Mouse Mouse
}

// Rune builds a printable-character event.
func Rune(r rune) Event { return Event{Kind: KindRune, Rune: r} }

// Named builds a named-key event.
func Named(name string) Event { return Event{Kind: KindNamed, Name: name} }

// MouseEvent builds a mouse event.
func MouseEvent(kind MouseKind, x, y int) Event {
	return Event{Kind: KindMouse, Mouse: Mouse{Kind: kind, X: x, Y: y}}
}

// String returns the key name used for matching bindings: the character
// itself, the named key, or the mouse action.
func (e Event) String() string {
	switch e.Kind {
	case KindRune:
		return string(e.Rune)
	case KindMouse:
		return e.Mouse.Kind.String()
	default:
		return e.Name
	}
}

// GoString includes mouse coordinates, handy in test failure output.
func (e Event) GoString() string {
	if e.Kind == KindMouse {
		return fmt.Sprintf("%s(%d,%d)", e.Mouse.Kind, e.Mouse.X, e.Mouse.Y)
	}
	return fmt.Sprintf("%q", e.String())
}

// IsPrintable reports whether the event is a single printable character.
func (e Event) IsPrintable() bool {
	return e.Kind == KindRune
}
