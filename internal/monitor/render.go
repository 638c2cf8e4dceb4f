package monitor

import (
	stderrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/rtop/internal/draw"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/proctree"
	"github.com/rileyhilliard/rtop/internal/source"
	"github.com/rileyhilliard/rtop/internal/term"
	"github.com/rileyhilliard/rtop/internal/ui"
)

// Compositor buffer names. Each source renders into the buffer named after
// its kind.
const (
	bufBackground = "background"
	bufHelp       = "help"
)

// Z-orders of the compositor buffers.
const (
	zBackground = 0
	zPanel      = 1
	zOverlay    = 5
)

// Display holds the settings that change how snapshots are drawn but not
// what is sampled.
type Display struct {
	ShowSwap  bool
	MemBytes  bool
	UpdateMs  int
	Filter    string
	Filtering bool
	Help      bool
}

// Renderer turns published snapshots into compositor buffers. Render and
// Draw run on the collector goroutine; the setters are called from the main
// loop.
type Renderer struct {
	comp  *draw.Compositor
	store *source.Store
	sel   *proctree.Selection
	procs *source.ProcSource
	log   logger.Logger
	now   func() time.Time

	geo atomic.Pointer[layout.Layout]

	mu       sync.Mutex
	display  Display
	warnings map[source.Kind]string
}

// NewRenderer creates a renderer writing into comp. procs may be nil when
// the detail view is never used.
func NewRenderer(comp *draw.Compositor, store *source.Store, sel *proctree.Selection, procs *source.ProcSource, log logger.Logger, d Display) *Renderer {
	if log == nil {
		log = logger.Noop()
	}
	r := &Renderer{
		comp:     comp,
		store:    store,
		sel:      sel,
		procs:    procs,
		log:      log,
		now:      time.Now,
		display:  d,
		warnings: make(map[source.Kind]string),
	}
	r.geo.Store(&layout.Layout{TooSmall: true})
	return r
}

// Layout returns the current geometry.
func (r *Renderer) Layout() layout.Layout {
	return *r.geo.Load()
}

// SetLayout adopts l and redraws the panel frames. Panel buffers are dropped
// until their next render.
func (r *Renderer) SetLayout(l layout.Layout) {
	r.geo.Store(&l)
	_ = r.comp.Clear(false, panelBuffers()...)
	r.comp.Buffer(bufBackground, background(l), zBackground)
}

// Display returns a copy of the display settings.
func (r *Renderer) Display() Display {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.display
}

// UpdateDisplay changes the display settings through fn and returns the result.
func (r *Renderer) UpdateDisplay(fn func(*Display)) Display {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.display)
	return r.display
}

// SetWarning records or clears (err == nil) the failure warning of a source.
func (r *Renderer) SetWarning(kind source.Kind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.warnings, kind)
		return
	}
	var rtErr *errors.Error
	if stderrors.As(err, &rtErr) && rtErr.Cause != nil {
		err = rtErr.Cause
	}
	r.warnings[kind] = kind.String() + " sampling failing: " + err.Error()
}

func (r *Renderer) warningLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, k := range source.Order {
		if w, ok := r.warnings[k]; ok {
			out = append(out, w)
		}
	}
	return out
}

// Render draws snap into its panel buffer.
func (r *Renderer) Render(kind source.Kind, snap source.Snapshot) {
	l := r.Layout()
	if l.TooSmall {
		return
	}
	d := r.Display()

	var out string
	switch s := snap.(type) {
	case *source.CPUSnapshot:
		out = r.renderCPU(l.Cpu, s, d)
	case *source.MemSnapshot:
		out = renderMem(l.Mem, s, d)
	case *source.NetSnapshot:
		out = renderNet(l.Net, s)
	case *source.ProcSnapshot:
		l = r.syncProc(l, s)
		out = r.renderProc(l, s, d)
	default:
		return
	}
	r.comp.Buffer(kind.String(), out, zPanel)
}

// syncProc follows the selection and the detail pin into the new view.
// When the pinned process is gone the detail panel is closed and the
// layout recomputed.
func (r *Renderer) syncProc(l layout.Layout, s *source.ProcSnapshot) layout.Layout {
	if _, open := r.sel.Detailed(); open && !r.sel.SyncDetail(s.View) {
		if r.procs != nil {
			r.procs.SetDetail(0)
		}
		mode := l.Mode
		mode.Detailed = false
		l = layout.Calc(l.Width, l.Height, mode)
		r.SetLayout(l)
		r.renderStored(source.KindCPU, source.KindMem, source.KindNet)
	}
	r.sel.Sync(s.View, l.ProcRows())
	return l
}

// renderStored re-renders the published snapshots of kinds.
func (r *Renderer) renderStored(kinds ...source.Kind) {
	for _, k := range kinds {
		if snap := r.store.Get(k); snap != nil {
			r.Render(k, snap)
		}
	}
}

// Draw writes every buffer in one terminal write.
func (r *Renderer) Draw() {
	if err := r.comp.Out(); err != nil {
		r.log.Error("draw: writing frame: %v", err)
	}
}

func panelBuffers() []string {
	names := make([]string, 0, source.NumKinds)
	for _, k := range source.Order {
		names = append(names, k.String())
	}
	return names
}

// background clears the screen and draws every panel frame.
func background(l layout.Layout) string {
	if l.TooSmall {
		return term.Clear + tooSmall(l)
	}
	var sb strings.Builder
	sb.WriteString(term.Clear)
	colors := map[string]lipgloss.Color{
		"cpu": ui.ColorCPUBox, "mem": ui.ColorMemBox, "net": ui.ColorNetBox,
		"detail": ui.ColorProcBox, "proc": ui.ColorProcBox,
	}
	for _, p := range l.Panels() {
		sb.WriteString(ui.Frame(p.Rect, p.Name, colors[p.Name]))
	}
	return sb.String()
}

func tooSmall(l layout.Layout) string {
	msg := []string{
		ui.WarningStyle.Render("Terminal size too small:"),
		ui.ValueStyle.Render(sizeText(l.Width, l.Height)),
		ui.LabelStyle.Render("Needed for current config:"),
		ui.ValueStyle.Render(sizeText(layout.MinWidth, layout.MinHeight)),
	}
	y := max(1, l.Height/2-len(msg)/2)
	var sb strings.Builder
	for i, line := range msg {
		sb.WriteString(term.MoveTo(y+i, 1))
		sb.WriteString(ui.Fit(centered(line, l.Width), l.Width))
	}
	return sb.String()
}
