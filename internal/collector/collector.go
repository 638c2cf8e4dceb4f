// Package collector runs sampling passes on a dedicated goroutine. Callers
// request passes for a set of sources; a newer request can cancel a running
// pass, whose partial results are then discarded, so only the latest data is
// ever published.
package collector

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	rterrors "github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/source"
)

// FailureThreshold is the number of consecutive sampling failures of one
// source that raise a visible warning.
const FailureThreshold = 3

// Options modify a collection request.
type Options struct {
	// DrawNow composites and writes the frame at the end of the pass.
	DrawNow bool
	// Interrupt cancels a running pass that overlaps the requested sources.
	Interrupt bool
	// ProcInterrupt cancels a running pass only if it includes the process source.
	ProcInterrupt bool
	// Redraw rebuilds from the last sample without querying the OS.
	Redraw bool
	// OnlyDraw skips the sources and re-renders the published snapshots.
	OnlyDraw bool
}

// Renderer turns published snapshots into frame fragments. Both methods are
// called on the collector goroutine.
type Renderer interface {
	Render(kind source.Kind, snap source.Snapshot)
	Draw()
}

// mode is what a pass does for one kind. Higher modes include lower ones.
type mode int

const (
	modeNone mode = iota
	modeDraw
	modeRebuild
	modeSample
)

type request struct {
	modes   [source.NumKinds]mode
	drawNow bool
}

func newRequest(set source.Set, opts Options) *request {
	m := modeSample
	switch {
	case opts.OnlyDraw:
		m = modeDraw
	case opts.Redraw:
		m = modeRebuild
	}
	r := &request{drawNow: opts.DrawNow}
	for _, k := range set.Kinds() {
		r.modes[k] = m
	}
	return r
}

// merge folds o into r, keeping the stronger mode per kind.
func (r *request) merge(o *request) {
	for i, m := range o.modes {
		r.modes[i] = max(r.modes[i], m)
	}
	r.drawNow = r.drawNow || o.drawNow
}

func (r *request) set() source.Set {
	var s source.Set
	for i, m := range r.modes {
		if m != modeNone {
			s = s.Union(source.SetOf(source.Kind(i)))
		}
	}
	return s
}

type pass struct {
	req    *request
	cancel context.CancelFunc
}

// Collector owns the sampling goroutine.
type Collector struct {
	sources [source.NumKinds]source.Source
	store   *source.Store
	render  Renderer
	log     logger.Logger
	done    *Barrier

	// OnWarning, when set, is called on the collector goroutine when a
	// source crosses FailureThreshold and again with a nil error when it recovers.
	OnWarning func(kind source.Kind, err error)

	fatal chan error

	mu       sync.Mutex
	pending  *request
	running  *pass
	started  bool
	stopping bool
	wake     chan struct{}
	exited   chan struct{}

	failures [source.NumKinds]int
	warnings map[source.Kind]string
}

// New creates a collector over sources, publishing into store.
func New(store *source.Store, render Renderer, log logger.Logger, sources ...source.Source) *Collector {
	if log == nil {
		log = logger.Noop()
	}
	c := &Collector{
		store:    store,
		render:   render,
		log:      log,
		done:     NewBarrier(),
		fatal:    make(chan error, 1),
		warnings: make(map[source.Kind]string),
	}
	for _, s := range sources {
		c.sources[s.Kind()] = s
	}
	return c
}

// Done returns the completion barrier. It is reset when a request is
// accepted and released once the worker has no work left.
func (c *Collector) Done() *Barrier { return c.done }

// Fatal delivers the error of a pass that panicked. The worker exits after
// reporting it, so at most one error is sent per Start.
func (c *Collector) Fatal() <-chan error { return c.fatal }

// Store returns the snapshot store.
func (c *Collector) Store() *source.Store { return c.store }

// Start launches the worker goroutine. Calling Start on a running collector
// does nothing.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	c.stopping = false
	c.wake = make(chan struct{}, 1)
	c.exited = make(chan struct{})
	if c.pending != nil {
		c.done.Reset()
		c.wake <- struct{}{}
	}
	go c.loop(c.wake, c.exited)
}

// Stop asks the worker to exit after its current pass and waits for it.
// Pending requests are kept for the next Start. Calling Stop on a stopped
// collector does nothing.
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.stopping = true
	exited := c.exited
	c.signal()
	c.mu.Unlock()

	<-exited

	c.mu.Lock()
	c.started = false
	c.mu.Unlock()
	c.done.Release()
}

// Running reports whether the worker goroutine is active.
func (c *Collector) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Collect requests a pass over set. Requests arriving while a pass runs are
// merged and served by the next pass.
func (c *Collector) Collect(set source.Set, opts Options) {
	if set.Empty() && !opts.DrawNow {
		return
	}
	req := newRequest(set, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		c.pending = req
	} else {
		c.pending.merge(req)
	}
	c.done.Reset()

	if run := c.running; run != nil {
		running := run.req.set()
		switch {
		case opts.Interrupt && running&set != 0:
			run.cancel()
		case opts.ProcInterrupt && running.Has(source.KindProc):
			run.cancel()
		}
	}
	c.signal()
}

// Warnings returns the current failure warning per source.
func (c *Collector) Warnings() map[source.Kind]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[source.Kind]string, len(c.warnings))
	for k, v := range c.warnings {
		out[k] = v
	}
	return out
}

// signal wakes the worker. Callers hold c.mu.
func (c *Collector) signal() {
	if c.wake == nil {
		return
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Collector) loop(wake <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	for {
		<-wake

		for {
			c.mu.Lock()
			if c.stopping {
				c.mu.Unlock()
				return
			}
			req := c.pending
			if req == nil {
				c.done.Release()
				c.mu.Unlock()
				break
			}
			c.pending = nil
			ctx, cancel := context.WithCancel(context.Background())
			c.running = &pass{req: req, cancel: cancel}
			c.mu.Unlock()

			completed, err := c.safeRun(ctx, req)
			cancel()

			c.mu.Lock()
			c.running = nil
			if err != nil {
				c.mu.Unlock()
				c.log.Error("collector: %s", rterrors.Brief(err))
				select {
				case c.fatal <- err:
				default:
				}
				c.done.Release()
				return
			}
			if !completed {
				// Serve the cancelled work with the newer request.
				if c.pending == nil {
					c.pending = req
				} else {
					req.merge(c.pending)
					c.pending = req
				}
			}
			c.mu.Unlock()
		}
	}
}

// safeRun runs a pass, turning a panic in a source or the renderer into an
// ErrRuntime error.
func (c *Collector) safeRun(ctx context.Context, req *request) (completed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Debug("collector: panic stack:\n%s", debug.Stack())
			err = rterrors.New(rterrors.ErrRuntime, fmt.Sprintf("collector pass panicked: %v", r), "")
		}
	}()
	return c.run(ctx, req), nil
}

// run performs one pass and reports whether it completed. A cancelled pass
// commits and publishes nothing.
func (c *Collector) run(ctx context.Context, req *request) bool {
	staged := make([]source.Snapshot, source.NumKinds)

	for _, k := range source.Order {
		m := req.modes[k]
		src := c.sources[k]
		if src == nil || m < modeRebuild {
			continue
		}

		var snap source.Snapshot
		var err error
		if m == modeSample {
			snap, err = src.Sample(ctx)
		} else {
			snap, err = src.Rebuild(ctx)
		}
		if ctx.Err() != nil {
			c.log.Debug("collector: pass cancelled during %s", k)
			return false
		}
		switch {
		case err == nil:
			staged[k] = snap
			if m == modeSample {
				c.recovered(k)
			}
		case errors.Is(err, source.ErrNoSnapshot):
		case m == modeSample:
			c.failed(k, err)
		default:
			c.log.Warn("collector: rebuilding %s: %v", k, err)
		}
	}
	if ctx.Err() != nil {
		return false
	}

	for k, snap := range staged {
		if snap == nil {
			continue
		}
		c.sources[k].Commit(snap)
		c.store.Publish(snap)
	}

	if c.render != nil {
		for _, k := range source.Order {
			if req.modes[k] == modeNone {
				continue
			}
			if snap := c.store.Get(k); snap != nil {
				c.render.Render(k, snap)
			}
		}
		if req.drawNow {
			c.render.Draw()
		}
	}
	return true
}

func (c *Collector) failed(k source.Kind, cause error) {
	err := rterrors.WrapWithCode(cause, rterrors.ErrSample, fmt.Sprintf("sampling %s", k), "")
	c.failures[k]++
	n := c.failures[k]
	c.log.Warn("collector: %s (%d in a row)", rterrors.Brief(err), n)
	if n != FailureThreshold {
		return
	}

	c.log.Error("collector: %s, raising warning", rterrors.Brief(err))
	c.mu.Lock()
	c.warnings[k] = fmt.Sprintf("%s sampling failing: %v", k, cause)
	c.mu.Unlock()
	if c.OnWarning != nil {
		c.OnWarning(k, err)
	}
}

func (c *Collector) recovered(k source.Kind) {
	wasWarning := c.failures[k] >= FailureThreshold
	c.failures[k] = 0
	if !wasWarning {
		return
	}
	c.log.Info("collector: %s sampling recovered", k)
	c.mu.Lock()
	delete(c.warnings, k)
	c.mu.Unlock()
	if c.OnWarning != nil {
		c.OnWarning(k, nil)
	}
}
