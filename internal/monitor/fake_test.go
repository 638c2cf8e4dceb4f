package monitor

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/source"
)

type fakeProvider struct {
	mu    sync.Mutex
	procs []source.ProcInfo
	panic bool
}

func (f *fakeProvider) CPUPercent(context.Context) (float64, []float64, error) {
	return 42, []float64{40, 44}, nil
}

func (f *fakeProvider) CPUInfo(context.Context) (source.CPUInfo, error) {
	return source.CPUInfo{Model: "Fake CPU 3000", Logical: 2}, nil
}

func (f *fakeProvider) LoadAvg(context.Context) ([3]float64, error) {
	return [3]float64{0.5, 0.4, 0.3}, nil
}

func (f *fakeProvider) Uptime(context.Context) (uint64, error) { return 7200, nil }

func (f *fakeProvider) Memory(context.Context) (source.MemStat, error) {
	return source.MemStat{Total: 8 << 30, Used: 4 << 30, Available: 4 << 30, Cached: 1 << 30, Free: 3 << 30,
		SwapTotal: 1 << 30, SwapUsed: 0, SwapFree: 1 << 30}, nil
}

func (f *fakeProvider) NetCounters(context.Context) ([]source.NetCounter, error) {
	return []source.NetCounter{{Name: "lo"}, {Name: "eth0", BytesRecv: 1000, BytesSent: 500}}, nil
}

func (f *fakeProvider) Processes(ctx context.Context) ([]source.ProcInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panic {
		panic("process table corrupted")
	}
	return append([]source.ProcInfo(nil), f.procs...), nil
}

func testProcs() []source.ProcInfo {
	return []source.ProcInfo{
		{Pid: 101, Ppid: 0, Name: "init", User: "root", Threads: 1, RSS: 1 << 20},
		{Pid: 102, Ppid: 101, Name: "sshd", User: "root", Threads: 2, RSS: 2 << 20},
		{Pid: 103, Ppid: 102, Name: "bash", Cmdline: "bash --login", User: "dev", Threads: 1, RSS: 3 << 20},
		{Pid: 104, Ppid: 101, Name: "cron", User: "root", Threads: 1, RSS: 1 << 20},
	}
}

// syncBuffer is a bytes.Buffer safe for the collector goroutine to write
// while a test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type testApp struct {
	*App
	out   *syncBuffer
	input *os.File
	log   *logger.BufferLogger
	prov  *fakeProvider
}

// newTestApp starts an App at 120x40 over a pipe and a buffer.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	out := &syncBuffer{}
	log := logger.NewBufferLogger()
	cfg := config.DefaultConfig()
	cfg.ProcTree = true
	cfg.ProcSorting = "pid"

	prov := &fakeProvider{procs: testProcs()}
	a := New(Options{
		Config:     cfg,
		ConfigPath: t.TempDir() + "/rtop.yaml",
		Log:        log,
		Provider:   prov,
		In:         r,
		Out:        out,
	})
	a.term.SetSize(120, 40)
	require.NoError(t, a.Init())

	t.Cleanup(func() {
		_ = a.Close(1)
		_ = w.Close()
		_ = r.Close()
	})
	return &testApp{App: a, out: out, input: w, log: log, prov: prov}
}

// settle waits for the collector to finish queued work.
func (a *testApp) settle(t *testing.T) {
	t.Helper()
	require.True(t, a.coll.Done().Wait(2*time.Second), "collector did not finish")
}
