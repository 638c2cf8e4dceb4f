package collector

import (
	"context"
	"sync"

	"github.com/rileyhilliard/rtop/internal/proctree"
	"github.com/rileyhilliard/rtop/internal/source"
)

// fakeSource returns snapshots tagged with the number of the Sample call
// that produced them. When block is set, Sample waits for it to close or
// for cancellation.
type fakeSource struct {
	kind source.Kind

	mu       sync.Mutex
	samples  int
	rebuilds int
	commits  []source.Snapshot
	err      error
	block    chan struct{}
	started  chan int
}

func newFake(kind source.Kind) *fakeSource {
	return &fakeSource{kind: kind, started: make(chan int, 64)}
}

func (f *fakeSource) Kind() source.Kind { return f.kind }

func (f *fakeSource) snapshot(gen int) source.Snapshot {
	if f.kind == source.KindProc {
		return &source.ProcSnapshot{View: &proctree.View{Total: gen}}
	}
	return &source.CPUSnapshot{Total: float64(gen)}
}

func (f *fakeSource) Sample(ctx context.Context) (source.Snapshot, error) {
	f.mu.Lock()
	f.samples++
	gen, err, block := f.samples, f.err, f.block
	f.mu.Unlock()

	f.started <- gen
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return f.snapshot(gen), nil
}

func (f *fakeSource) Rebuild(context.Context) (source.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebuilds++
	return f.snapshot(-f.rebuilds), nil
}

func (f *fakeSource) Commit(s source.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, s)
}

func (f *fakeSource) counts() (samples, rebuilds, commits int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples, f.rebuilds, len(f.commits)
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeRenderer struct {
	mu      sync.Mutex
	renders map[source.Kind][]source.Snapshot
	draws   int
}

func newRenderer() *fakeRenderer {
	return &fakeRenderer{renders: make(map[source.Kind][]source.Snapshot)}
}

func (r *fakeRenderer) Render(k source.Kind, s source.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders[k] = append(r.renders[k], s)
}

func (r *fakeRenderer) Draw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws++
}

func (r *fakeRenderer) count(k source.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.renders[k])
}

func (r *fakeRenderer) drawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws
}
