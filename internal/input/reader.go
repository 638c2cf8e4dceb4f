package input

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	xterm "golang.org/x/term"
	"golang.org/x/sys/unix"

	rterrors "github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/logger"
)

const (
	// pollInterval bounds how long the reader goes without checking for Stop.
	pollInterval = 100 * time.Millisecond
	// escapeTimeout is how long a lone ESC waits for the rest of a sequence.
	escapeTimeout = 25 * time.Millisecond
)

// Reader reads raw bytes from the terminal on its own goroutine, decodes them
// and queues the resulting events.
type Reader struct {
	in    *os.File
	queue *Queue
	dec   *Decoder
	log   logger.Logger

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	done     chan struct{}
	rawState *xterm.State
}

// NewReader creates a reader over in. Undecodable sequences are logged at debug level.
func NewReader(in *os.File, log logger.Logger) *Reader {
	if log == nil {
		log = logger.Noop()
	}
	r := &Reader{
		in:    in,
		queue: NewQueue(DefaultQueueSize),
		dec:   NewDecoder(),
		log:   log,
	}
	r.dec.OnUnknown = func(seq string) {
		r.log.Debug("input: %s", rterrors.Brief(decodeError(seq)))
	}
	return r
}

// Start puts the terminal in raw mode, when in is a terminal, and begins
// reading. Calling Start on a running reader does nothing.
func (r *Reader) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	fd := int(r.in.Fd())
	if xterm.IsTerminal(fd) {
		state, err := xterm.MakeRaw(fd)
		if err != nil {
			return err
		}
		r.rawState = state
	}

	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.running = true
	go r.loop(fd, r.stop, r.done)
	return nil
}

// Stop ends reading, waits for the goroutine to exit and restores the
// terminal mode. Calling Stop on a stopped reader does nothing.
func (r *Reader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return nil
	}
	close(r.stop)
	<-r.done
	r.running = false

	if r.rawState != nil {
		err := xterm.Restore(int(r.in.Fd()), r.rawState)
		r.rawState = nil
		return err
	}
	return nil
}

// Running reports whether the reader goroutine is active.
func (r *Reader) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Queue returns the event queue the reader fills.
func (r *Reader) Queue() *Queue { return r.queue }

// HasKey reports whether an event is waiting.
func (r *Reader) HasKey() bool { return r.queue.HasKey() }

// Get removes and returns the oldest event.
func (r *Reader) Get() (Event, bool) { return r.queue.Get() }

// Wait blocks until an event arrives or timeout elapses.
func (r *Reader) Wait(timeout time.Duration) bool { return r.queue.Wait(timeout) }

// Clear drops waiting events.
func (r *Reader) Clear() { r.queue.Clear() }

func (r *Reader) loop(fd int, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 256)

	for {
		select {
		case <-stop:
			return
		default:
		}

		timeout := pollInterval
		if r.dec.Pending() {
			timeout = escapeTimeout
		}

		ready, err := waitReadable(fd, timeout)
		if err != nil {
			r.log.Error("input: poll failed: %v", err)
			return
		}
		if !ready {
			if r.dec.Pending() {
				r.queue.Push(r.dec.Flush()...)
			}
			continue
		}

		n, err := r.in.Read(buf)
		if n > 0 {
			r.queue.Push(r.dec.Feed(buf[:n])...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.log.Error("input: read failed: %v", err)
			}
			r.queue.Push(r.dec.Flush()...)
			return
		}
	}
}

// waitReadable polls fd for input for up to timeout.
func waitReadable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, int(timeout/time.Millisecond))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}
