package collector

import (
	"sync"
	"time"
)

// Barrier is a resettable completion signal: one writer resets and releases
// it, any number of goroutines wait on it.
type Barrier struct {
	mu   sync.Mutex
	ch   chan struct{}
	open bool
}

// NewBarrier returns a released barrier.
func NewBarrier() *Barrier {
	ch := make(chan struct{})
	close(ch)
	return &Barrier{ch: ch, open: true}
}

// Reset makes subsequent waiters block until the next Release.
func (b *Barrier) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		b.ch = make(chan struct{})
		b.open = false
	}
}

// Release wakes every waiter.
func (b *Barrier) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		close(b.ch)
		b.open = true
	}
}

// Done reports whether the barrier is released.
func (b *Barrier) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Wait blocks until the barrier is released or timeout elapses, and reports
// whether it was released. A timeout of zero or less waits indefinitely.
func (b *Barrier) Wait(timeout time.Duration) bool {
	b.mu.Lock()
	ch := b.ch
	b.mu.Unlock()

	if timeout <= 0 {
		<-ch
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
