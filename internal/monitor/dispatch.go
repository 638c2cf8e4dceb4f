package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	"golang.org/x/sys/unix"

	"github.com/rileyhilliard/rtop/internal/collector"
	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/input"
	"github.com/rileyhilliard/rtop/internal/proctree"
	"github.com/rileyhilliard/rtop/internal/source"
)

// scrollStep is how many rows one wheel notch moves the selection.
const scrollStep = 3

var (
	drawOnly  = collector.Options{OnlyDraw: true, DrawNow: true}
	rebuild   = collector.Options{Redraw: true, DrawNow: true, ProcInterrupt: true}
	resample  = collector.Options{DrawNow: true, Interrupt: true}
	procKinds = source.SetOf(source.KindProc)
)

// handle dispatches one input event.
func (a *App) handle(ev input.Event) {
	d := a.render.Display()
	if d.Filtering && a.handleFilter(ev) {
		return
	}
	if d.Help {
		a.handleHelp(ev)
		return
	}

	k := a.keys
	switch {
	case key.Matches(ev, k.Quit):
		a.quit = true
	case key.Matches(ev, k.Suspend):
		a.suspend()
	case key.Matches(ev, k.Help):
		a.toggleHelp()

	case key.Matches(ev, k.IntervalUp):
		a.adjustInterval(config.UpdateStepMs)
	case key.Matches(ev, k.IntervalDn):
		a.adjustInterval(-config.UpdateStepMs)
	case key.Matches(ev, k.Mini):
		a.cfg.MiniMode = !a.cfg.MiniMode
		a.cfg.Changed = true
		a.relayout()
		a.coll.Collect(source.All, drawOnly)
	case key.Matches(ev, k.Swap):
		a.cfg.ShowSwap = a.render.UpdateDisplay(func(d *Display) { d.ShowSwap = !d.ShowSwap }).ShowSwap
		a.cfg.Changed = true
		a.coll.Collect(source.SetOf(source.KindMem), drawOnly)

	case key.Matches(ev, k.NetNext):
		a.net.Cycle(1)
		a.coll.Collect(source.SetOf(source.KindNet), collector.Options{Redraw: true, DrawNow: true})
	case key.Matches(ev, k.NetPrev):
		a.net.Cycle(-1)
		a.coll.Collect(source.SetOf(source.KindNet), collector.Options{Redraw: true, DrawNow: true})
	case key.Matches(ev, k.NetReset):
		a.net.ToggleReset()
		a.coll.Collect(source.SetOf(source.KindNet), collector.Options{Redraw: true, DrawNow: true})
	case key.Matches(ev, k.NetAuto):
		a.cfg.NetAuto = a.net.ToggleAuto()
		a.cfg.Changed = true
		a.coll.Collect(source.SetOf(source.KindNet), collector.Options{Redraw: true, DrawNow: true})
	case key.Matches(ev, k.NetSync):
		a.cfg.NetSync = a.net.ToggleSync()
		a.cfg.Changed = true
		a.coll.Collect(source.SetOf(source.KindNet), collector.Options{Redraw: true, DrawNow: true})

	case key.Matches(ev, k.SortNext):
		a.updateProc(func(o *proctree.Options) { o.Sort = o.Sort.Next() })
	case key.Matches(ev, k.SortPrev):
		a.updateProc(func(o *proctree.Options) { o.Sort = o.Sort.Prev() })
	case key.Matches(ev, k.Reverse):
		a.updateProc(func(o *proctree.Options) { o.Reverse = !o.Reverse })
	case key.Matches(ev, k.Tree):
		a.updateProc(func(o *proctree.Options) { o.Tree = !o.Tree })
	case key.Matches(ev, k.PerCore):
		a.procs.SetPerCore(!a.procs.PerCore())
		a.cfg.ProcPerCore = a.procs.PerCore()
		a.cfg.Changed = true
		a.coll.Collect(procKinds, resample)
	case key.Matches(ev, k.Collapse):
		a.toggleCollapse()

	case key.Matches(ev, k.Filter):
		a.render.UpdateDisplay(func(d *Display) { d.Filtering = true })
		a.coll.Collect(procKinds, drawOnly)
	case key.Matches(ev, k.ClearFilter):
		a.setFilter("")

	case key.Matches(ev, k.Term):
		_ = a.sendSignal(unix.SIGTERM)
	case key.Matches(ev, k.Kill):
		_ = a.sendSignal(unix.SIGKILL)
	case key.Matches(ev, k.Interrupt):
		_ = a.sendSignal(unix.SIGINT)

	case key.Matches(ev, k.Detail):
		a.toggleDetail()
	case ev.Kind == input.KindNamed && ev.Name == input.KeyEscape:
		if _, open := a.sel.Detailed(); open {
			a.toggleDetail()
		}

	default:
		a.handleMove(ev)
	}
}

// handleMove handles the selection keys and mouse events.
func (a *App) handleMove(ev input.Event) {
	k := a.keys
	v := a.view()
	rows := a.render.Layout().ProcRows()
	page := max(rows, 1)

	switch {
	case key.Matches(ev, k.Up):
		a.sel.Move(v, -1, rows)
	case key.Matches(ev, k.Down):
		a.sel.Move(v, 1, rows)
	case key.Matches(ev, k.PageUp):
		a.sel.Scroll(v, -page, rows)
	case key.Matches(ev, k.PageDown):
		a.sel.Scroll(v, page, rows)
	case key.Matches(ev, k.Home):
		a.sel.Home(v, rows)
	case key.Matches(ev, k.End):
		a.sel.End(v, rows)
	case key.Matches(ev, k.ScrollUp):
		a.sel.Scroll(v, -scrollStep, rows)
	case key.Matches(ev, k.ScrollDown):
		a.sel.Scroll(v, scrollStep, rows)
	case key.Matches(ev, k.Click):
		a.click(v, ev.Mouse, rows)
	default:
		return
	}
	a.coll.Collect(procKinds, drawOnly)
}

// click selects the process row under the pointer. Clicks outside the
// list drop the selection.
func (a *App) click(v *proctree.View, m input.Mouse, rows int) {
	list := a.render.Layout().Proc.Inner()
	// first inner line is the column header
	if list.Contains(m.X, m.Y) && m.Y > list.Y {
		a.sel.Click(v, m.Y-list.Y-1, rows)
		return
	}
	a.sel.Clear()
}

// handleFilter edits the filter while filtering is on and reports whether
// the event was consumed.
func (a *App) handleFilter(ev input.Event) bool {
	d := a.render.Display()
	switch {
	case ev.IsPrintable():
		a.setFilter(d.Filter + string(ev.Rune))
	case ev.Kind == input.KindMouse && ev.Mouse.Kind == input.MouseClick,
		ev.Kind == input.KindNamed && ev.Name == input.KeyEnter:
		a.render.UpdateDisplay(func(d *Display) { d.Filtering = false })
		a.coll.Collect(procKinds, drawOnly)
	case ev.Kind == input.KindNamed && (ev.Name == input.KeyEscape || ev.Name == input.KeyDelete):
		a.render.UpdateDisplay(func(d *Display) { d.Filtering = false })
		a.setFilter("")
	case ev.Kind == input.KindNamed && ev.Name == input.KeyBackspace:
		if r := []rune(d.Filter); len(r) > 0 {
			a.setFilter(string(r[:len(r)-1]))
		}
	default:
		return false
	}
	return true
}

// setFilter applies a new filter with a proc-scoped interrupt so a burst of
// keystrokes never queues stale rebuilds.
func (a *App) setFilter(filter string) {
	a.render.UpdateDisplay(func(d *Display) { d.Filter = filter })
	a.procs.Update(func(o *proctree.Options) { o.Filter = filter })
	a.coll.Collect(procKinds, rebuild)
}

// updateProc changes tree options, mirrors them into the config and
// rebuilds the list.
func (a *App) updateProc(fn func(*proctree.Options)) {
	o := a.procs.Update(fn)
	a.cfg.ProcSorting = o.Sort.String()
	a.cfg.ProcReversed = o.Reverse
	a.cfg.ProcTree = o.Tree
	a.cfg.Changed = true
	a.coll.Collect(procKinds, rebuild)
}

func (a *App) toggleCollapse() {
	if !a.procs.Options().Tree {
		return
	}
	pid, ok := a.sel.Selected()
	if !ok {
		return
	}
	a.collapse.Toggle(pid)
	a.coll.Collect(procKinds, rebuild)
}

// toggleDetail opens the detail panel for the selected process, or closes
// it when it is already open for that process or nothing is selected.
func (a *App) toggleDetail() {
	pinned, open := a.sel.Detailed()
	selected, ok := a.sel.Selected()
	switch {
	case open && (!ok || selected == pinned):
		a.sel.ExitDetail()
		a.procs.SetDetail(0)
	case ok:
		a.sel.EnterDetail(selected)
		a.procs.SetDetail(selected)
	default:
		return
	}
	a.relayout()
	a.coll.Collect(source.All, drawOnly)
	a.coll.Collect(procKinds, rebuild)
}

func (a *App) adjustInterval(delta int) {
	if !a.cfg.AdjustUpdate(delta) {
		return
	}
	a.render.UpdateDisplay(func(d *Display) { d.UpdateMs = a.cfg.UpdateMs })
	a.coll.Collect(source.SetOf(source.KindCPU), drawOnly)
}

func (a *App) toggleHelp() {
	d := a.render.UpdateDisplay(func(d *Display) { d.Help = !d.Help })
	if d.Help {
		a.refreshHelp()
	} else {
		_ = a.comp.Clear(false, bufHelp)
		a.relayout()
	}
	a.coll.Collect(source.All, drawOnly)
}

// handleHelp closes the overlay on its own keys or escape; q still quits.
func (a *App) handleHelp(ev input.Event) {
	switch {
	case key.Matches(ev, a.keys.Quit):
		a.quit = true
	case key.Matches(ev, a.keys.Help), ev.Kind == input.KindNamed && ev.Name == input.KeyEscape:
		a.toggleHelp()
	}
}

// refreshHelp redraws the help overlay for the current layout if it is shown.
func (a *App) refreshHelp() {
	if !a.render.Display().Help {
		return
	}
	a.comp.Buffer(bufHelp, renderHelp(a.help, a.keys, a.render.Layout()), zOverlay)
}

// view returns the published process view, or nil before the first sample.
func (a *App) view() *proctree.View {
	if s := a.store.Proc(); s != nil {
		return s.View
	}
	return nil
}
