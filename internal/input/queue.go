package input

import (
	"sync"
	"time"
)

// DefaultQueueSize bounds how many undelivered events are kept.
const DefaultQueueSize = 128

// Queue is a bounded FIFO of events shared by the reader goroutine and the
// main loop. When full, the oldest event is dropped.
type Queue struct {
	mu     sync.Mutex
	events []Event
	limit  int
	notify chan struct{}
}

// NewQueue creates a queue holding up to limit events.
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = DefaultQueueSize
	}
	return &Queue{
		limit:  limit,
		notify: make(chan struct{}, 1),
	}
}

// Push appends events and wakes one waiter.
func (q *Queue) Push(events ...Event) {
	if len(events) == 0 {
		return
	}
	q.mu.Lock()
	q.events = append(q.events, events...)
	if over := len(q.events) - q.limit; over > 0 {
		q.events = append(q.events[:0], q.events[over:]...)
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// HasKey reports whether an event is waiting.
func (q *Queue) HasKey() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) > 0
}

// Len returns the number of waiting events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Get removes and returns the oldest event.
func (q *Queue) Get() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return Event{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev, true
}

// Clear discards waiting events.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.events = nil
	q.mu.Unlock()
}

// Wait blocks until an event is available or timeout elapses. A timeout of
// zero or less checks without blocking.
func (q *Queue) Wait(timeout time.Duration) bool {
	if q.HasKey() {
		return true
	}
	if timeout <= 0 {
		return false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-q.notify:
			if q.HasKey() {
				return true
			}
		case <-timer.C:
			return q.HasKey()
		}
	}
}

// Ready exposes the wake-up channel so callers can select on input together
// with other events. A receive does not guarantee an event is still queued.
func (q *Queue) Ready() <-chan struct{} {
	return q.notify
}
