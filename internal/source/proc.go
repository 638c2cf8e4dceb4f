package source

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/rtop/internal/proctree"
)

// DefaultSmoothing is the weight of the newest sample in the lazy CPU average.
const DefaultSmoothing = 0.3

// ProcConfig holds process panel settings.
type ProcConfig struct {
	Options proctree.Options
	// PerCore reports process CPU as a share of one core instead of the whole machine.
	PerCore   bool
	Smoothing float64
}

type procSample struct {
	cpuTime float64
	lazy    float64
}

// ProcSource enumerates processes and builds the process tree view.
type ProcSource struct {
	provider Provider
	builder  *proctree.Builder
	collapse *proctree.Collapse
	size     int

	mu        sync.Mutex
	cfg       ProcConfig
	cpus      int
	detailPid int32
	detailCPU *Ring
	detailMem *Ring

	prev     map[int32]procSample
	prevTime time.Time
	records  []proctree.Record
	last     *ProcSnapshot
}

// NewProcSource creates a process source. collapse is shared with the UI.
func NewProcSource(p Provider, collapse *proctree.Collapse, historySize int, cfg ProcConfig) *ProcSource {
	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		cfg.Smoothing = DefaultSmoothing
	}
	return &ProcSource{
		provider:  p,
		builder:   proctree.NewBuilder(),
		collapse:  collapse,
		size:      historySize,
		cfg:       cfg,
		detailCPU: NewRing(historySize),
		detailMem: NewRing(historySize),
	}
}

func (p *ProcSource) Kind() Kind { return KindProc }

// Options returns the current tree options.
func (p *ProcSource) Options() proctree.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Options
}

// Update changes the tree options through fn. The change is seen by the
// next Sample or Rebuild.
func (p *ProcSource) Update(fn func(*proctree.Options)) proctree.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.cfg.Options)
	return p.cfg.Options
}

// SetPerCore switches how process CPU is scaled.
func (p *ProcSource) SetPerCore(perCore bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.PerCore = perCore
}

// PerCore reports how process CPU is scaled.
func (p *ProcSource) PerCore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.PerCore
}

// SetDetail pins pid for detail history; zero clears it.
func (p *ProcSource) SetDetail(pid int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pid == p.detailPid {
		return
	}
	p.detailPid = pid
	p.detailCPU.Reset()
	p.detailMem.Reset()
}

// Collapse returns the shared collapse set.
func (p *ProcSource) Collapse() *proctree.Collapse { return p.collapse }

func (p *ProcSource) Sample(ctx context.Context) (Snapshot, error) {
	infos, err := p.provider.Processes(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	p.mu.Lock()
	cfg := p.cfg
	if p.cpus == 0 {
		if info, err := p.provider.CPUInfo(ctx); err == nil {
			p.cpus = info.Logical
		}
	}
	cpus := max(p.cpus, 1)
	p.mu.Unlock()

	elapsed := now.Sub(p.prevTime).Seconds()
	staged := make(map[int32]procSample, len(infos))
	records := make([]proctree.Record, len(infos))
	for i, in := range infos {
		var cpu float64
		prev, seen := p.prev[in.Pid]
		if seen && !p.prevTime.IsZero() && elapsed > 0 && in.CPUTime >= prev.cpuTime {
			cpu = (in.CPUTime - prev.cpuTime) / elapsed * 100
			if !cfg.PerCore {
				cpu /= float64(cpus)
			}
		}
		lazy := cpu
		if seen {
			lazy = prev.lazy + cfg.Smoothing*(cpu-prev.lazy)
		}
		staged[in.Pid] = procSample{cpuTime: in.CPUTime, lazy: lazy}

		records[i] = proctree.Record{
			Pid:        in.Pid,
			Ppid:       in.Ppid,
			Name:       in.Name,
			Args:       in.Cmdline,
			User:       in.User,
			Threads:    in.Threads,
			CPU:        cpu,
			LazyCPU:    lazy,
			Mem:        in.RSS,
			MemPercent: in.MemPercent,
			Status:     in.Status,
			CreateTime: in.CreateTime,
		}
	}

	view, err := p.builder.Build(ctx, records, cfg.Options, p.collapse)
	if err != nil {
		return nil, err
	}
	snap := &ProcSnapshot{
		Time:    now,
		View:    view,
		fresh:   true,
		records: records,
		prev:    staged,
	}
	snap.Detail = p.detail(view, true)
	return snap, nil
}

func (p *ProcSource) Rebuild(ctx context.Context) (Snapshot, error) {
	if p.last == nil {
		return nil, ErrNoSnapshot
	}
	view, err := p.builder.Build(ctx, p.records, p.Options(), p.collapse)
	if err != nil {
		return nil, err
	}
	snap := &ProcSnapshot{
		Time: p.last.Time,
		View: view,
	}
	snap.Detail = p.detail(view, false)
	return snap, nil
}

func (p *ProcSource) Commit(s Snapshot) {
	snap, ok := s.(*ProcSnapshot)
	if !ok {
		return
	}
	p.builder.Commit(snap.View)
	if snap.fresh {
		p.prev = snap.prev
		p.prevTime = snap.Time
		p.records = snap.records
		p.collapse.Prune(snap.View.Pids())

		p.mu.Lock()
		if d := snap.Detail; d != nil && d.Record.Pid == p.detailPid {
			p.detailCPU.Push(d.Record.CPU)
			p.detailMem.Push(float64(d.Record.MemPercent))
		}
		p.mu.Unlock()
	}
	p.last = snap
}

// detail returns the pinned process with its history, or nil.
func (p *ProcSource) detail(view *proctree.View, fresh bool) *ProcDetail {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detailPid == 0 {
		return nil
	}
	rec, ok := view.Lookup(p.detailPid)
	if !ok {
		return nil
	}
	d := &ProcDetail{Record: *rec}
	if fresh {
		d.CPUHistory = p.detailCPU.With(rec.CPU)
		d.MemHistory = p.detailMem.With(float64(rec.MemPercent))
	} else {
		d.CPUHistory = p.detailCPU.All()
		d.MemHistory = p.detailMem.All()
	}
	return d
}
