package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/rtop/internal/proctree"
)

var bg = context.Background()

func TestCPUSource(t *testing.T) {
	f := &fakeProvider{total: 10, perCore: []float64{5, 15}, info: CPUInfo{Model: "Test CPU", Logical: 2}, load: [3]float64{1, 2, 3}}
	c := NewCPUSource(f, 3)

	_, err := c.Rebuild(bg)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	s, err := c.Sample(bg)
	require.NoError(t, err)
	snap := s.(*CPUSnapshot)
	assert.Equal(t, []float64{10}, snap.History)
	assert.Equal(t, [][]float64{{5}, {15}}, snap.CoreHistory)
	assert.Equal(t, "Test CPU", snap.Model)
	assert.Equal(t, [3]float64{1, 2, 3}, snap.Load)
	assert.Equal(t, time.Hour, snap.Uptime)
	c.Commit(snap)

	// an uncommitted sample leaves history alone
	f.total = 99
	_, err = c.Sample(bg)
	require.NoError(t, err)

	f.total = 20
	s, err = c.Sample(bg)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, s.(*CPUSnapshot).History)
	c.Commit(s)

	again, err := c.Rebuild(bg)
	require.NoError(t, err)
	assert.Same(t, s, again)
}

func TestCPUSource_Error(t *testing.T) {
	f := &fakeProvider{cpuErr: errFake}
	_, err := NewCPUSource(f, 3).Sample(bg)
	assert.ErrorIs(t, err, errFake)
}

func TestMemSource(t *testing.T) {
	f := &fakeProvider{mem: MemStat{Total: 1000, Used: 250, Available: 750, Cached: 100, Free: 500, SwapTotal: 200, SwapUsed: 50, SwapFree: 150}}
	m := NewMemSource(f, 4)

	s, err := m.Sample(bg)
	require.NoError(t, err)
	m.Commit(s)

	f.mem.Used = 500
	s, err = m.Sample(bg)
	require.NoError(t, err)
	snap := s.(*MemSnapshot)
	assert.Equal(t, []float64{25, 50}, snap.History[MemUsed])
	assert.Equal(t, []float64{25, 25}, snap.History[SwapUsed])
	assert.Equal(t, uint64(500), snap.Used)
	assert.Equal(t, 0.0, Percent(1, 0))
}

func TestNetSource_Rates(t *testing.T) {
	f := &fakeProvider{net: []NetCounter{
		{Name: "lo", BytesRecv: 10, BytesSent: 10},
		{Name: "eth0", BytesRecv: 1000, BytesSent: 500},
	}}
	n := NewNetSource(f, 10, NetConfig{Download: 1 << 20, Upload: 1 << 20})

	s, err := n.Sample(bg)
	require.NoError(t, err)
	first := s.(*NetSnapshot)
	assert.Equal(t, []string{"eth0", "lo"}, first.Interfaces)
	assert.Equal(t, "eth0", first.Interface)
	assert.Zero(t, first.Download.Speed)
	n.Commit(first)

	// pretend the previous reading was two seconds ago
	st := n.state["eth0"]
	st.prevTime = st.prevTime.Add(-2 * time.Second)
	n.state["eth0"] = st

	f.net[1] = NetCounter{Name: "eth0", BytesRecv: 3000, BytesSent: 1500}
	s, err = n.Sample(bg)
	require.NoError(t, err)
	snap := s.(*NetSnapshot)
	assert.InDelta(t, 1000, snap.Download.Speed, 10)
	assert.InDelta(t, 500, snap.Upload.Speed, 10)
	assert.Equal(t, uint64(2000), snap.Download.Total)
	assert.Equal(t, float64(1<<20), snap.Download.Graph)
	assert.Len(t, snap.Download.History, 2)
	n.Commit(snap)

	assert.True(t, n.ToggleReset())
	r, err := n.Rebuild(bg)
	require.NoError(t, err)
	assert.Zero(t, r.(*NetSnapshot).Download.Total)
	assert.False(t, n.ToggleReset())
	r, _ = n.Rebuild(bg)
	assert.Equal(t, uint64(2000), r.(*NetSnapshot).Download.Total)
}

func TestNetSource_ResetDuringPass(t *testing.T) {
	f := &fakeProvider{net: []NetCounter{{Name: "eth0", BytesRecv: 1000, BytesSent: 100}}}
	n := NewNetSource(f, 10, NetConfig{})

	for _, recv := range []uint64{1000, 3000} {
		f.net[0].BytesRecv = recv
		s, err := n.Sample(bg)
		require.NoError(t, err)
		n.Commit(s)
	}

	// a pass sampled before the toggle commits after it
	f.net[0].BytesRecv = 4000
	staged, err := n.Sample(bg)
	require.NoError(t, err)
	require.True(t, n.ToggleReset())
	n.Commit(staged)

	r, err := n.Rebuild(bg)
	require.NoError(t, err)
	snap := r.(*NetSnapshot)
	assert.True(t, snap.Reset)
	assert.Equal(t, uint64(1000), snap.Download.Total)

	// later samples keep counting from the reset point
	f.net[0].BytesRecv = 4500
	s, err := n.Sample(bg)
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), s.(*NetSnapshot).Download.Total)
}

func TestNetSource_CycleAndScaling(t *testing.T) {
	f := &fakeProvider{net: []NetCounter{{Name: "eth0"}, {Name: "lo"}, {Name: "wlan0"}}}
	n := NewNetSource(f, 10, NetConfig{Download: 100, Upload: 5000})

	assert.Equal(t, "", n.Cycle(1))

	s, err := n.Sample(bg)
	require.NoError(t, err)
	n.Commit(s)

	assert.Equal(t, "lo", n.Cycle(1))
	assert.Equal(t, "wlan0", n.Cycle(1))
	assert.Equal(t, "eth0", n.Cycle(1))
	assert.Equal(t, "wlan0", n.Cycle(-1))

	r, err := n.Rebuild(bg)
	require.NoError(t, err)
	snap := r.(*NetSnapshot)
	assert.Equal(t, "wlan0", snap.Interface)
	assert.Equal(t, 100.0, snap.Download.Graph)

	assert.True(t, n.ToggleSync())
	r, _ = n.Rebuild(bg)
	assert.Equal(t, 5000.0, r.(*NetSnapshot).Download.Graph)

	assert.True(t, n.ToggleAuto())
	r, _ = n.Rebuild(bg)
	assert.Equal(t, float64(minAutoGraph), r.(*NetSnapshot).Upload.Graph)
	assert.True(t, n.Config().Auto)
}

func TestNetHelpers(t *testing.T) {
	assert.Equal(t, 0.0, rate(100, 50, 1))
	assert.Equal(t, 0.0, rate(0, 50, 0))
	assert.Equal(t, 25.0, rate(0, 50, 2))

	assert.Equal(t, []float64{2, 3, 4}, appendBounded([]float64{1, 2, 3}, 4, 3))
	assert.Equal(t, []float64{1}, appendBounded(nil, 1, 3))

	assert.Equal(t, "eth0", pickInterface([]string{"eth0", "lo"}, "gone"))
	assert.Equal(t, "lo", pickInterface([]string{"lo"}, ""))
	assert.Equal(t, "", pickInterface(nil, "x"))

	assert.Equal(t, uint64(40), total(100, 60, 0, false))
	assert.Equal(t, uint64(10), total(100, 60, 90, true))
	assert.Equal(t, uint64(0), total(50, 60, 0, false))
}

func procFixture() []ProcInfo {
	return []ProcInfo{
		{Pid: 1, Ppid: 0, Name: "init", CPUTime: 10, RSS: 100},
		{Pid: 2, Ppid: 1, Name: "worker", Cmdline: "worker --busy", CPUTime: 20, RSS: 200},
		{Pid: 3, Ppid: 1, Name: "idle", CPUTime: 5, RSS: 300},
	}
}

func TestProcSource_CPUFromTimes(t *testing.T) {
	f := &fakeProvider{procs: procFixture(), info: CPUInfo{Logical: 2}}
	p := NewProcSource(f, proctree.NewCollapse(), 10, ProcConfig{Options: proctree.Options{Sort: proctree.SortCPUResponsive}})

	s, err := p.Sample(bg)
	require.NoError(t, err)
	first := s.(*ProcSnapshot)
	assert.Len(t, first.View.Rows, 3)
	for _, r := range first.View.Rows {
		assert.Zero(t, r.CPU)
	}
	p.Commit(first)
	p.prevTime = p.prevTime.Add(-time.Second)

	f.procs[1].CPUTime = 21 // one cpu second over one wall second
	s, err = p.Sample(bg)
	require.NoError(t, err)
	snap := s.(*ProcSnapshot)
	require.NotEmpty(t, snap.View.Rows)
	top := snap.View.Rows[0]
	assert.Equal(t, int32(2), top.Pid)
	assert.InDelta(t, 50, top.CPU, 1, "split across two cores")
	assert.InDelta(t, 0.3*50, top.LazyCPU, 0.5)
}

func TestProcSource_PerCore(t *testing.T) {
	f := &fakeProvider{procs: procFixture(), info: CPUInfo{Logical: 4}}
	p := NewProcSource(f, proctree.NewCollapse(), 10, ProcConfig{PerCore: true})
	assert.True(t, p.PerCore())

	s, _ := p.Sample(bg)
	p.Commit(s)
	p.prevTime = p.prevTime.Add(-time.Second)

	f.procs[1].CPUTime = 21
	s, err := p.Sample(bg)
	require.NoError(t, err)
	i, ok := s.(*ProcSnapshot).View.Index(2)
	require.True(t, ok)
	assert.InDelta(t, 100, s.(*ProcSnapshot).View.Rows[i].CPU, 2)
}

func TestProcSource_RebuildSkipsOS(t *testing.T) {
	f := &fakeProvider{procs: procFixture()}
	p := NewProcSource(f, proctree.NewCollapse(), 10, ProcConfig{})

	_, err := p.Rebuild(bg)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	s, err := p.Sample(bg)
	require.NoError(t, err)
	p.Commit(s)

	f.procErr = errFake
	_, err = p.Sample(bg)
	assert.ErrorIs(t, err, errFake)

	p.Update(func(o *proctree.Options) { o.Filter = "busy" })
	r, err := p.Rebuild(bg)
	require.NoError(t, err)
	rows := r.(*ProcSnapshot).View.Rows
	require.Len(t, rows, 2)
	assert.Equal(t, int32(2), rows[1].Pid)
	assert.Equal(t, "busy", p.Options().Filter)
}

func TestProcSource_PrunesCollapse(t *testing.T) {
	f := &fakeProvider{procs: procFixture()}
	c := proctree.NewCollapse()
	c.Set(1, true)
	c.Set(99, true)
	p := NewProcSource(f, c, 10, ProcConfig{Options: proctree.Options{Tree: true}})

	s, err := p.Sample(bg)
	require.NoError(t, err)
	assert.True(t, c.Collapsed(99), "nothing pruned before commit")

	p.Commit(s)
	assert.True(t, c.Collapsed(1))
	assert.False(t, c.Collapsed(99))
	assert.Same(t, c, p.Collapse())
}

func TestProcSource_Cancelled(t *testing.T) {
	f := &fakeProvider{procs: procFixture()}
	p := NewProcSource(f, proctree.NewCollapse(), 10, ProcConfig{})

	ctx, cancel := context.WithCancel(bg)
	cancel()
	_, err := p.Sample(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcSource_Detail(t *testing.T) {
	f := &fakeProvider{procs: procFixture()}
	p := NewProcSource(f, proctree.NewCollapse(), 10, ProcConfig{})
	p.SetDetail(3)

	s, err := p.Sample(bg)
	require.NoError(t, err)
	d := s.(*ProcSnapshot).Detail
	require.NotNil(t, d)
	assert.Equal(t, "idle", d.Record.Name)
	assert.Len(t, d.CPUHistory, 1)
	p.Commit(s)

	s, _ = p.Sample(bg)
	assert.Len(t, s.(*ProcSnapshot).Detail.CPUHistory, 2)

	p.SetDetail(42)
	s, _ = p.Sample(bg)
	assert.Nil(t, s.(*ProcSnapshot).Detail)
}

func TestStore(t *testing.T) {
	st := NewStore()
	assert.Nil(t, st.Get(KindCPU))
	assert.Nil(t, st.CPU())

	cpu := &CPUSnapshot{Total: 1}
	st.Publish(cpu)
	st.Publish(&ProcSnapshot{})
	assert.Same(t, cpu, st.CPU())
	assert.Same(t, cpu, st.Get(KindCPU))
	assert.NotNil(t, st.Proc())
	assert.Nil(t, st.Mem())
	assert.Nil(t, st.Get(KindNet))
}
