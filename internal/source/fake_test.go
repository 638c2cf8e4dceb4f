package source

import (
	"context"
	"errors"
	"sync"
)

// fakeProvider returns canned statistics; a non-nil err field fails that call.
type fakeProvider struct {
	mu sync.Mutex

	total   float64
	perCore []float64
	info    CPUInfo
	load    [3]float64
	mem     MemStat
	net     []NetCounter
	procs   []ProcInfo

	cpuErr, memErr, netErr, procErr error
}

var errFake = errors.New("fake failure")

func (f *fakeProvider) CPUPercent(context.Context) (float64, []float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total, append([]float64(nil), f.perCore...), f.cpuErr
}

func (f *fakeProvider) CPUInfo(context.Context) (CPUInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info, nil
}

func (f *fakeProvider) LoadAvg(context.Context) ([3]float64, error) {
	return f.load, nil
}

func (f *fakeProvider) Uptime(context.Context) (uint64, error) {
	return 3600, nil
}

func (f *fakeProvider) Memory(context.Context) (MemStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mem, f.memErr
}

func (f *fakeProvider) NetCounters(context.Context) ([]NetCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]NetCounter(nil), f.net...), f.netErr
}

func (f *fakeProvider) Processes(ctx context.Context) ([]ProcInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ProcInfo(nil), f.procs...), f.procErr
}
