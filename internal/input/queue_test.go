package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(4)
	assert.False(t, q.HasKey())

	q.Push(Rune('a'), Rune('b'))
	require.True(t, q.HasKey())

	ev, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, Rune('a'), ev)
	ev, _ = q.Get()
	assert.Equal(t, Rune('b'), ev)

	_, ok = q.Get()
	assert.False(t, ok)
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Push(Rune('a'), Rune('b'), Rune('c'))

	assert.Equal(t, 2, q.Len())
	ev, _ := q.Get()
	assert.Equal(t, Rune('b'), ev)
}

func TestQueue_WaitWakesOnPush(t *testing.T) {
	q := NewQueue(0)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(Named(KeyEnter))
	}()

	assert.True(t, q.Wait(2*time.Second))
	ev, _ := q.Get()
	assert.Equal(t, KeyEnter, ev.String())
}

func TestQueue_WaitTimesOut(t *testing.T) {
	q := NewQueue(0)

	start := time.Now()
	assert.False(t, q.Wait(30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.False(t, q.Wait(0))
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue(0)
	q.Push(Rune('x'))
	q.Clear()
	assert.False(t, q.HasKey())
}
