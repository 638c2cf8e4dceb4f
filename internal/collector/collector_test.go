package collector

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rterrors "github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/source"
)

const waitFor = 2 * time.Second

func setup(t *testing.T, fakes ...*fakeSource) (*Collector, *fakeRenderer) {
	t.Helper()
	r := newRenderer()
	srcs := make([]source.Source, len(fakes))
	for i, f := range fakes {
		srcs[i] = f
	}
	c := New(source.NewStore(), r, logger.NewBufferLogger(), srcs...)
	c.Start()
	t.Cleanup(c.Stop)
	return c, r
}

func waitStarted(t *testing.T, f *fakeSource) int {
	t.Helper()
	select {
	case gen := <-f.started:
		return gen
	case <-time.After(waitFor):
		t.Fatal("sample did not start")
		return 0
	}
}

// waitGen waits for the Sample call numbered gen to start.
func waitGen(t *testing.T, f *fakeSource, gen int) {
	t.Helper()
	for {
		if waitStarted(t, f) >= gen {
			return
		}
	}
}

func TestCollect_PublishesAndRenders(t *testing.T) {
	cpu, proc := newFake(source.KindCPU), newFake(source.KindProc)
	c, r := setup(t, cpu, proc)

	c.Collect(source.All, Options{DrawNow: true})
	require.True(t, c.Done().Wait(waitFor))

	assert.Equal(t, 1.0, c.Store().CPU().Total)
	assert.Equal(t, 1, c.Store().Proc().View.Total)
	assert.Equal(t, 1, r.count(source.KindCPU))
	assert.Equal(t, 1, r.count(source.KindProc))
	assert.Zero(t, r.count(source.KindMem), "no source registered")
	assert.Equal(t, 1, r.drawCount())

	_, _, commits := cpu.counts()
	assert.Equal(t, 1, commits)
}

func TestCollect_InterruptBurstPublishesLastOnce(t *testing.T) {
	proc := newFake(source.KindProc)
	proc.block = make(chan struct{})
	c, r := setup(t, proc)

	c.Collect(source.SetOf(source.KindProc), Options{})
	waitStarted(t, proc)

	for i := 0; i < 10; i++ {
		c.Collect(source.SetOf(source.KindProc), Options{Interrupt: true, DrawNow: true})
	}
	close(proc.block)
	require.True(t, c.Done().Wait(waitFor))

	samples, _, commits := proc.counts()
	assert.Equal(t, 1, commits)
	assert.Equal(t, 1, r.count(source.KindProc))
	assert.Equal(t, samples, c.Store().Proc().View.Total, "published snapshot comes from the last pass")
	assert.Greater(t, samples, 1)
	assert.Equal(t, 1, r.drawCount())
}

func TestCollect_WithoutInterruptQueues(t *testing.T) {
	proc := newFake(source.KindProc)
	proc.block = make(chan struct{})
	c, r := setup(t, proc)

	c.Collect(source.SetOf(source.KindProc), Options{})
	waitStarted(t, proc)
	c.Collect(source.SetOf(source.KindProc), Options{})
	c.Collect(source.SetOf(source.KindProc), Options{})
	close(proc.block)
	require.True(t, c.Done().Wait(waitFor))

	samples, _, commits := proc.counts()
	assert.Equal(t, 2, samples, "queued requests merge into one pass")
	assert.Equal(t, 2, commits)
	assert.Equal(t, 2, r.count(source.KindProc))
}

func TestCollect_ProcInterruptScope(t *testing.T) {
	cpu, proc := newFake(source.KindCPU), newFake(source.KindProc)
	cpu.block = make(chan struct{})
	c, _ := setup(t, cpu, proc)

	// a cpu-only pass is not cancelled by a proc interrupt
	c.Collect(source.SetOf(source.KindCPU), Options{})
	waitStarted(t, cpu)
	c.Collect(source.SetOf(source.KindProc), Options{ProcInterrupt: true})
	close(cpu.block)
	require.True(t, c.Done().Wait(waitFor))

	samples, _, commits := cpu.counts()
	assert.Equal(t, 1, samples)
	assert.Equal(t, 1, commits)

	// a pass including proc is
	proc.block = make(chan struct{})
	c.Collect(source.SetOf(source.KindProc), Options{})
	waitGen(t, proc, 2)
	c.Collect(source.SetOf(source.KindProc), Options{ProcInterrupt: true, Redraw: true})
	close(proc.block)
	require.True(t, c.Done().Wait(waitFor))

	samples, _, commits = proc.counts()
	assert.Equal(t, 3, samples, "cancelled sample is redone")
	assert.Equal(t, 2, commits)
}

func TestCollect_RedrawAndOnlyDraw(t *testing.T) {
	proc := newFake(source.KindProc)
	c, r := setup(t, proc)

	c.Collect(source.SetOf(source.KindProc), Options{})
	require.True(t, c.Done().Wait(waitFor))

	c.Collect(source.SetOf(source.KindProc), Options{Redraw: true})
	require.True(t, c.Done().Wait(waitFor))
	samples, rebuilds, _ := proc.counts()
	assert.Equal(t, 1, samples)
	assert.Equal(t, 1, rebuilds)
	assert.Equal(t, -1, c.Store().Proc().View.Total)

	c.Collect(source.SetOf(source.KindProc), Options{OnlyDraw: true, DrawNow: true})
	require.True(t, c.Done().Wait(waitFor))
	samples, rebuilds, commits := proc.counts()
	assert.Equal(t, 1, samples)
	assert.Equal(t, 1, rebuilds)
	assert.Equal(t, 2, commits)
	assert.Equal(t, 3, r.count(source.KindProc))
	assert.Equal(t, 1, r.drawCount())
}

func TestCollect_FailureEscalation(t *testing.T) {
	cpu := newFake(source.KindCPU)
	c, _ := setup(t, cpu)

	var mu sync.Mutex
	var warned []error
	c.OnWarning = func(k source.Kind, err error) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, source.KindCPU, k)
		warned = append(warned, err)
	}

	c.Collect(source.SetOf(source.KindCPU), Options{})
	require.True(t, c.Done().Wait(waitFor))
	good := c.Store().CPU()

	boom := errors.New("boom")
	cpu.setErr(boom)
	for i := 0; i < FailureThreshold+1; i++ {
		c.Collect(source.SetOf(source.KindCPU), Options{})
		require.True(t, c.Done().Wait(waitFor))
	}

	assert.Same(t, good, c.Store().CPU(), "stale snapshot kept")
	assert.Equal(t, "cpu sampling failing: boom", c.Warnings()[source.KindCPU])
	mu.Lock()
	require.Len(t, warned, 1)
	assert.ErrorIs(t, warned[0], boom)
	assert.True(t, rterrors.IsCode(warned[0], rterrors.ErrSample))
	mu.Unlock()

	cpu.setErr(nil)
	c.Collect(source.SetOf(source.KindCPU), Options{})
	require.True(t, c.Done().Wait(waitFor))
	assert.Empty(t, c.Warnings())
	mu.Lock()
	require.Len(t, warned, 2)
	assert.Nil(t, warned[1])
	mu.Unlock()
}

func TestCollector_StartStop(t *testing.T) {
	cpu := newFake(source.KindCPU)
	c := New(source.NewStore(), nil, nil, cpu)

	c.Stop()
	assert.False(t, c.Running())

	// requests made while stopped wait for Start
	c.Collect(source.SetOf(source.KindCPU), Options{})
	assert.False(t, c.Done().Wait(50*time.Millisecond))

	c.Start()
	c.Start()
	assert.True(t, c.Running())
	require.True(t, c.Done().Wait(waitFor))
	assert.NotNil(t, c.Store().CPU())

	c.Stop()
	c.Stop()
	assert.False(t, c.Running())

	c.Start()
	c.Collect(source.SetOf(source.KindCPU), Options{})
	require.True(t, c.Done().Wait(waitFor))
	samples, _, _ := cpu.counts()
	assert.Equal(t, 2, samples)
	c.Stop()
}

func TestCollector_StopWaitsForPass(t *testing.T) {
	cpu := newFake(source.KindCPU)
	cpu.block = make(chan struct{})
	c := New(source.NewStore(), nil, nil, cpu)
	c.Start()

	c.Collect(source.SetOf(source.KindCPU), Options{})
	waitStarted(t, cpu)

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the pass finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(cpu.block)
	select {
	case <-stopped:
	case <-time.After(waitFor):
		t.Fatal("Stop did not return")
	}
	_, _, commits := cpu.counts()
	assert.Equal(t, 1, commits)
}

func TestCollect_EmptySetIgnored(t *testing.T) {
	c := New(source.NewStore(), nil, nil)
	c.Collect(0, Options{})
	assert.True(t, c.Done().Done())
}

type panickyRenderer struct{ fakeRenderer }

func (r *panickyRenderer) Render(source.Kind, source.Snapshot) { panic("render bug") }

func TestCollect_PanicReportedAsFatal(t *testing.T) {
	cpu := newFake(source.KindCPU)
	log := logger.NewBufferLogger()
	c := New(source.NewStore(), &panickyRenderer{}, log, cpu)
	c.Start()

	c.Collect(source.SetOf(source.KindCPU), Options{DrawNow: true})

	select {
	case err := <-c.Fatal():
		assert.True(t, rterrors.IsCode(err, rterrors.ErrRuntime))
		assert.Contains(t, err.Error(), "render bug")
	case <-time.After(waitFor):
		t.Fatal("panic was not reported")
	}
	assert.True(t, c.Done().Wait(waitFor), "waiters are released")
	assert.True(t, log.HasLevel("error"))

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(waitFor):
		t.Fatal("Stop hung after a panic")
	}
	assert.False(t, c.Running())
}
