package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"

	"github.com/rileyhilliard/rtop/internal/collector"
	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/draw"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/input"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/proctree"
	"github.com/rileyhilliard/rtop/internal/source"
	"github.com/rileyhilliard/rtop/internal/term"
)

// startupWait bounds the wait for the first frame.
const startupWait = 10 * time.Second

// Options configure an App.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Log        logger.Logger
	Provider   source.Provider
	In         *os.File
	Out        io.Writer
}

// App is the dashboard: it owns the input reader, the collector and the
// compositor, and runs the main loop.
type App struct {
	cfg     *config.Config
	cfgPath string
	log     logger.Logger

	term   *term.Terminal
	comp   *draw.Compositor
	reader *input.Reader
	coll   *collector.Collector
	render *Renderer
	store  *source.Store

	net   *source.NetSource
	procs *source.ProcSource

	sel      *proctree.Selection
	collapse *proctree.Collapse
	keys     keyMap
	help     help.Model

	signals chan os.Signal
	state   State
	quit    bool
	started time.Time
}

// New wires the dashboard components. Nothing is started until Init.
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Log
	if log == nil {
		log = logger.Noop()
	}
	provider := opts.Provider
	if provider == nil {
		provider = source.NewPSUtil()
	}
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	sort, _ := proctree.ParseSortKey(cfg.ProcSorting)
	collapse := proctree.NewCollapse()
	procs := source.NewProcSource(provider, collapse, cfg.HistorySize, source.ProcConfig{
		Options: proctree.Options{
			Sort:       sort,
			Reverse:    cfg.ProcReversed,
			Tree:       cfg.ProcTree,
			LazyMargin: cfg.CPULazyMargin,
		},
		PerCore:   cfg.ProcPerCore,
		Smoothing: cfg.CPULazySmoothing,
	})
	net := source.NewNetSource(provider, cfg.HistorySize, source.NetConfig{
		Download: config.UnitsToBytes(cfg.NetDownload),
		Upload:   config.UnitsToBytes(cfg.NetUpload),
		Auto:     cfg.NetAuto,
		Sync:     cfg.NetSync,
	})

	t := term.New(out)
	comp := draw.New(t)
	store := source.NewStore()
	sel := proctree.NewSelection()
	render := NewRenderer(comp, store, sel, procs, log, Display{
		ShowSwap: cfg.ShowSwap,
		MemBytes: cfg.ProcMemBytes,
		UpdateMs: cfg.UpdateMs,
	})

	a := &App{
		cfg:      cfg,
		cfgPath:  opts.ConfigPath,
		log:      log,
		term:     t,
		comp:     comp,
		reader:   input.NewReader(in, log),
		render:   render,
		store:    store,
		net:      net,
		procs:    procs,
		sel:      sel,
		collapse: collapse,
		keys:     defaultKeys(),
		help:     newHelp(),
		signals:  make(chan os.Signal, 8),
	}
	a.coll = collector.New(store, render, log,
		source.NewCPUSource(provider, cfg.HistorySize),
		source.NewMemSource(provider, cfg.HistorySize),
		net,
		procs,
	)
	a.coll.OnWarning = render.SetWarning
	return a
}

// initStep is one named startup step.
type initStep struct {
	name string
	run  func() error
}

// Init runs the startup sequence. The first failing step aborts startup
// with an INIT error.
func (a *App) Init() error {
	a.started = time.Now()
	steps := []initStep{
		{"colors", a.initColors},
		{"terminal", a.enterTerminal},
		{"layout", a.initLayout},
		{"signals", a.initSignals},
		{"input reader", a.reader.Start},
		{"collector", a.initCollector},
	}
	for _, step := range steps {
		a.log.Debug("init: %s", step.name)
		if err := step.run(); err != nil {
			a.log.Error("init: %s failed: %v", step.name, err)
			return errors.WrapWithCode(err, errors.ErrInit,
				fmt.Sprintf("Initialization step %q failed", step.name),
				"Check the error log for details")
		}
	}
	a.state = StateRunning
	a.log.Info("init: started in %s", time.Since(a.started).Round(time.Millisecond))
	return nil
}

func (a *App) initColors() error {
	if a.term.IsTerminal() {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	}
	return nil
}

// enterTerminal switches to the alternate screen with mouse reporting on.
func (a *App) enterTerminal() error {
	return a.comp.Now(term.AltScreen, term.HideCursor, term.MouseOn, term.Title("rtop"), term.Clear)
}

// restoreTerminal undoes enterTerminal.
func (a *App) restoreTerminal() error {
	return a.comp.Now(term.Clear, term.MouseOff, term.MouseDirectOff, term.NormalScreen, term.ShowCursor, term.Title(""))
}

func (a *App) initLayout() error {
	a.term.Refresh()
	a.relayout()
	return nil
}

func (a *App) initSignals() error {
	signal.Notify(a.signals, unix.SIGWINCH, unix.SIGTSTP, unix.SIGCONT, unix.SIGINT, unix.SIGTERM)
	return nil
}

func (a *App) initCollector() error {
	a.coll.Start()
	a.coll.Collect(source.All, collector.Options{DrawNow: true})
	if !a.coll.Done().Wait(startupWait) {
		a.log.Warn("init: first collection still running after %s", startupWait)
	}
	return nil
}

// relayout recomputes the geometry for the current size and mode.
func (a *App) relayout() layout.Layout {
	w, h := a.term.Size()
	_, detailed := a.sel.Detailed()
	l := layout.Calc(w, h, layout.Mode{Mini: a.cfg.MiniMode, Detailed: detailed})
	a.render.SetLayout(l)
	a.log.Debug("layout: %dx%d mini=%t detailed=%t", w, h, l.Mode.Mini, l.Mode.Detailed)
	return l
}

// Run is the main loop. It returns when the user quits, ctx is done or a
// terminating signal arrives. A panic in the main loop or on the collector
// goroutine is returned as an ErrRuntime error.
func (a *App) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrRuntime, fmt.Sprintf("main loop panic: %v", r), "")
		}
	}()

	next := time.Now().Add(a.cfg.UpdateInterval())
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for !a.quit {
		select {
		case <-ctx.Done():
			a.quit = true
		case sig := <-a.signals:
			a.handleSignal(sig)
			if a.state == StateRunning {
				next = time.Now().Add(a.cfg.UpdateInterval())
				resetTimer(timer, time.Until(next))
			}
		case err := <-a.coll.Fatal():
			return err
		case <-timer.C:
			a.coll.Collect(source.All, collector.Options{DrawNow: true})
			next = time.Now().Add(a.cfg.UpdateInterval())
			timer.Reset(time.Until(next))
		case <-a.reader.Queue().Ready():
			for !a.quit && a.reader.HasKey() {
				ev, ok := a.reader.Get()
				if !ok {
					break
				}
				a.handle(ev)
			}
		}
	}
	return nil
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// Close stops the reader and the collector, saves the config when exiting
// cleanly and restores the terminal.
func (a *App) Close(code int) error {
	signal.Stop(a.signals)
	if err := a.reader.Stop(); err != nil {
		a.log.Warn("quit: stopping input reader: %v", err)
	}
	a.coll.Stop()

	var saveErr error
	if code == 0 && a.cfgPath != "" {
		if saveErr = config.Save(a.cfg, a.cfgPath); saveErr != nil {
			a.log.Error("quit: saving config: %v", saveErr)
		}
	}
	if err := a.restoreTerminal(); err != nil {
		a.log.Warn("quit: restoring terminal: %v", err)
	}
	a.state = StateStopped
	if !a.started.IsZero() {
		a.log.Info("quit: exiting with code %d after %s", code, time.Since(a.started).Round(time.Second))
	}
	return saveErr
}

// State returns the lifecycle state.
func (a *App) State() State { return a.state }
