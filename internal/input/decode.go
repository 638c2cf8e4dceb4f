package input

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	rterrors "github.com/rileyhilliard/rtop/internal/errors"
)

// maxSeqLen bounds how many bytes an escape sequence may accumulate before
// it is abandoned as unrecognized.
const maxSeqLen = 32

type decodeState int

const (
	stateNormal decodeState = iota
	stateEscape
)

// Decoder turns raw terminal bytes into Events. It keeps state between Feed
// calls so sequences split across reads decode correctly. Not safe for
// concurrent use; the reader goroutine owns it.
type Decoder struct {
	state   decodeState
	seq     []byte // bytes after ESC
	partial []byte // incomplete UTF-8 rune

	// OnUnknown, when set, receives sequences that decoded to nothing.
	OnUnknown func(seq string)
}

// NewDecoder returns a decoder in the Normal state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Pending reports whether the decoder is holding an incomplete sequence that
// Flush would resolve.
func (d *Decoder) Pending() bool {
	return d.state == stateEscape || len(d.partial) > 0
}

// Flush resolves held bytes after the escape timeout: a lone ESC becomes the
// escape key, an incomplete sequence is dropped.
func (d *Decoder) Flush() []Event {
	var out []Event
	if d.state == stateEscape {
		if len(d.seq) == 0 {
			out = append(out, Named(KeyEscape))
		} else {
			d.unknown()
		}
	}
	d.reset()
	d.partial = d.partial[:0]
	return out
}

// Feed decodes data, returning every event completed by it.
func (d *Decoder) Feed(data []byte) []Event {
	var out []Event
	for i := 0; i < len(data); i++ {
		out = d.feedByte(data[i], out)
	}
	return out
}

func (d *Decoder) feedByte(b byte, out []Event) []Event {
	if d.state == stateEscape {
		return d.feedEscape(b, out)
	}

	if len(d.partial) > 0 || b >= utf8.RuneSelf {
		d.partial = append(d.partial, b)
		if !utf8.FullRune(d.partial) {
			return out
		}
		r, size := utf8.DecodeRune(d.partial)
		if r == utf8.RuneError && size == 1 {
			// Drop only the invalid lead byte and decode what followed it.
			bad := d.partial[0]
			rest := append([]byte(nil), d.partial[1:]...)
			d.partial = d.partial[:0]
			if d.OnUnknown != nil {
				d.OnUnknown(string([]byte{bad}))
			}
			for _, c := range rest {
				out = d.feedByte(c, out)
			}
			return out
		}
		d.partial = d.partial[:0]
		out = append(out, Rune(r))
		return out
	}

	switch b {
	case 0x1b:
		d.state = stateEscape
		d.seq = d.seq[:0]
	case '\r', '\n':
		out = append(out, Named(KeyEnter))
	case 0x7f, 0x08:
		out = append(out, Named(KeyBackspace))
	case '\t':
		out = append(out, Named(KeyTab))
	case 0x03:
		out = append(out, Named(KeyCtrlC))
	case 0x1a:
		out = append(out, Named(KeyCtrlZ))
	default:
		if b >= 0x20 {
			out = append(out, Rune(rune(b)))
		}
	}
	return out
}

func (d *Decoder) feedEscape(b byte, out []Event) []Event {
	if len(d.seq) == 0 {
		switch b {
		case '[', 'O':
			d.seq = append(d.seq, b)
			return out
		case 0x1b:
			// ESC ESC: the first one stands alone.
			return append(out, Named(KeyEscape))
		default:
			// ESC followed by an ordinary key.
			out = append(out, Named(KeyEscape))
			d.reset()
			return d.feedByte(b, out)
		}
	}

	// An X10 mouse report carries three raw bytes that may be outside the
	// printable range, so it is collected before any other checks.
	if d.isX10() {
		d.seq = append(d.seq, b)
		if len(d.seq) == 5 {
			out = d.emit(decodeX10(d.seq[2:]), out)
		}
		return out
	}

	if b < 0x20 || b > 0x7e {
		// A control byte aborts the sequence and is processed on its own.
		d.unknown()
		d.reset()
		return d.feedByte(b, out)
	}

	d.seq = append(d.seq, b)

	if d.seq[0] == 'O' {
		return d.emit(decodeSS3(b), out)
	}

	if len(d.seq) == 2 && b == 'M' {
		return out
	}
	if b >= 0x40 && b <= 0x7e {
		return d.emit(decodeCSI(string(d.seq[1:])), out)
	}
	if len(d.seq) > maxSeqLen {
		d.unknown()
		d.reset()
	}
	return out
}

// isX10 reports whether the held sequence is ESC [ M followed by raw bytes.
func (d *Decoder) isX10() bool {
	return len(d.seq) >= 2 && d.seq[0] == '[' && d.seq[1] == 'M'
}

// emit appends ev when the sequence was recognized, reports it otherwise,
// and returns to the Normal state either way.
func (d *Decoder) emit(ev *Event, out []Event) []Event {
	if ev != nil {
		out = append(out, *ev)
	} else if !d.silent() {
		d.unknown()
	}
	d.reset()
	return out
}

// silent is true for well-formed reports deliberately ignored, such as mouse
// button release.
func (d *Decoder) silent() bool {
	s := string(d.seq)
	if strings.HasPrefix(s, "[<") && strings.HasSuffix(s, "m") {
		return true
	}
	if strings.HasPrefix(s, "[<") && strings.HasSuffix(s, "M") {
		return true
	}
	return d.isX10()
}

// decodeError describes a sequence the decoder could not map to an event.
func decodeError(seq string) error {
	return rterrors.New(rterrors.ErrInput, fmt.Sprintf("unrecognized input sequence %q", seq), "")
}

func (d *Decoder) unknown() {
	if d.OnUnknown != nil {
		d.OnUnknown("\x1b" + string(d.seq))
	}
}

func (d *Decoder) reset() {
	d.state = stateNormal
	d.seq = d.seq[:0]
}

func named(name string) *Event {
	ev := Named(name)
	return &ev
}

// decodeSS3 handles ESC O <final>.
func decodeSS3(final byte) *Event {
	switch final {
	case 'A':
		return named(KeyUp)
	case 'B':
		return named(KeyDown)
	case 'C':
		return named(KeyRight)
	case 'D':
		return named(KeyLeft)
	case 'H':
		return named(KeyHome)
	case 'F':
		return named(KeyEnd)
	case 'P':
		return named("f1")
	case 'Q':
		return named("f2")
	case 'R':
		return named("f3")
	case 'S':
		return named("f4")
	}
	return nil
}

// tildeKeys maps ESC [ <n> ~ codes.
var tildeKeys = map[int]string{
	1: KeyHome, 7: KeyHome,
	4: KeyEnd, 8: KeyEnd,
	2: KeyInsert, 3: KeyDelete,
	5: KeyPageUp, 6: KeyPageDown,
	11: "f1", 12: "f2", 13: "f3", 14: "f4", 15: "f5",
	17: "f6", 18: "f7", 19: "f8", 20: "f9", 21: "f10",
	23: "f11", 24: "f12",
}

// decodeCSI handles the body of ESC [ ... <final>.
func decodeCSI(body string) *Event {
	if body == "" {
		return nil
	}
	final := body[len(body)-1]
	params := body[:len(body)-1]

	if strings.HasPrefix(params, "<") {
		return decodeSGRMouse(params[1:], final)
	}

	switch final {
	case 'A':
		return named(KeyUp)
	case 'B':
		return named(KeyDown)
	case 'C':
		return named(KeyRight)
	case 'D':
		return named(KeyLeft)
	case 'H':
		return named(KeyHome)
	case 'F':
		return named(KeyEnd)
	case 'Z':
		return named(KeyShiftTab)
	case '~':
		first, _, _ := strings.Cut(params, ";")
		n, err := strconv.Atoi(first)
		if err != nil {
			return nil
		}
		if name, ok := tildeKeys[n]; ok {
			return named(name)
		}
	}
	return nil
}

// Mouse button bits shared by the SGR and X10 encodings.
const (
	mouseWheelBit  = 64
	mouseMotionBit = 32
	mouseModMask   = 4 | 8 | 16
)

// mouseFromButton maps a button code to a mouse action. ok is false for
// releases, motion and buttons other than the primary one.
func mouseFromButton(code int) (MouseKind, bool) {
	code &^= mouseModMask
	if code&mouseMotionBit != 0 {
		return 0, false
	}
	if code&mouseWheelBit != 0 {
		if code&1 == 0 {
			return MouseScrollUp, true
		}
		return MouseScrollDown, true
	}
	if code&3 == 0 {
		return MouseClick, true
	}
	return 0, false
}

// decodeSGRMouse handles ESC [ < b ; x ; y (M|m). Releases (m) decode to nothing.
func decodeSGRMouse(params string, final byte) *Event {
	if final != 'M' {
		return nil
	}
	parts := strings.Split(params, ";")
	if len(parts) != 3 {
		return nil
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		nums[i] = n
	}
	kind, ok := mouseFromButton(nums[0])
	if !ok {
		return nil
	}
	ev := MouseEvent(kind, nums[1], nums[2])
	return &ev
}

// decodeX10 handles the three raw bytes after ESC [ M.
func decodeX10(raw []byte) *Event {
	code := int(raw[0]) - 32
	if code&3 == 3 && code&mouseWheelBit == 0 {
		return nil // release
	}
	kind, ok := mouseFromButton(code)
	if !ok {
		return nil
	}
	ev := MouseEvent(kind, int(raw[1])-32, int(raw[2])-32)
	return &ev
}
