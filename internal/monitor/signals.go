package monitor

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rileyhilliard/rtop/internal/collector"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/source"
)

// Process signalling, replaced in tests.
var (
	killProcess = unix.Kill
	stopSelf    = func() error { return unix.Kill(os.Getpid(), unix.SIGSTOP) }
)

func (a *App) handleSignal(sig os.Signal) {
	a.log.Debug("signal: %v", sig)
	switch sig {
	case unix.SIGWINCH:
		a.resize()
	case unix.SIGTSTP:
		a.suspend()
	case unix.SIGCONT:
		a.resume()
	case unix.SIGINT, unix.SIGTERM:
		a.quit = true
	}
}

// resize recomputes the layout and redraws everything.
func (a *App) resize() {
	if a.state != StateRunning {
		return
	}
	a.term.Refresh()
	a.relayout()
	a.refreshHelp()
	a.coll.Collect(source.All, collector.Options{OnlyDraw: true, DrawNow: true})
}

// suspend hands the terminal back to the shell and stops the process.
func (a *App) suspend() {
	if err := checkTransition(a.state, StateSuspended); err != nil {
		a.log.Debug("suspend: %v", err)
		return
	}
	if err := a.reader.Stop(); err != nil {
		a.log.Warn("suspend: stopping input reader: %v", err)
	}
	a.coll.Stop()
	if err := a.restoreTerminal(); err != nil {
		a.log.Warn("suspend: restoring terminal: %v", err)
	}
	a.state = StateSuspended
	a.log.Info("suspend: stopped")

	if err := stopSelf(); err != nil {
		a.log.Error("suspend: %v", err)
	}
}

// resume takes the terminal back after SIGCONT and restarts sampling.
func (a *App) resume() {
	if err := checkTransition(a.state, StateRunning); err != nil {
		a.log.Debug("resume: %v", err)
		return
	}
	if err := a.enterTerminal(); err != nil {
		a.log.Warn("resume: entering terminal: %v", err)
	}
	if err := a.reader.Start(); err != nil {
		a.log.Error("resume: starting input reader: %v", err)
	}
	a.term.Refresh()
	a.relayout()
	a.refreshHelp()
	a.coll.Start()
	a.coll.Collect(source.All, collector.Options{DrawNow: true})
	a.state = StateRunning
	a.log.Info("resume: running")
}

// sendSignal delivers sig to the detailed process, or else the selected
// one. A failed delivery is logged and returned as a SIGNAL error.
func (a *App) sendSignal(sig unix.Signal) error {
	pid, ok := a.sel.Detailed()
	if !ok {
		pid, ok = a.sel.Selected()
	}
	if !ok || pid <= 0 {
		return nil
	}
	name := unix.SignalName(sig)
	if err := killProcess(int(pid), sig); err != nil {
		a.log.Error("signal: sending %s to pid %d: %v", name, pid, err)
		return errors.WrapWithCode(err, errors.ErrSignal,
			fmt.Sprintf("Failed to send %s to pid %d", name, pid), "")
	}
	a.log.Info("signal: sent %s to pid %d", name, pid)
	return nil
}
