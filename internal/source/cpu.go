package source

import (
	"context"
	"time"
)

// CPUSource samples processor utilization.
type CPUSource struct {
	provider Provider
	size     int

	total *Ring
	cores []*Ring
	info  *CPUInfo
	last  *CPUSnapshot
}

// NewCPUSource creates a CPU source keeping historySize samples per series.
func NewCPUSource(p Provider, historySize int) *CPUSource {
	return &CPUSource{
		provider: p,
		size:     historySize,
		total:    NewRing(historySize),
	}
}

func (c *CPUSource) Kind() Kind { return KindCPU }

func (c *CPUSource) Sample(ctx context.Context) (Snapshot, error) {
	total, perCore, err := c.provider.CPUPercent(ctx)
	if err != nil {
		return nil, err
	}

	snap := &CPUSnapshot{
		Time:        time.Now(),
		Total:       total,
		PerCore:     perCore,
		History:     c.total.With(total),
		CoreHistory: make([][]float64, len(perCore)),
	}
	for i, v := range perCore {
		if i < len(c.cores) {
			snap.CoreHistory[i] = c.cores[i].With(v)
		} else {
			snap.CoreHistory[i] = []float64{v}
		}
	}

	// Load and uptime are not available everywhere; a failure leaves them zero.
	if load, err := c.provider.LoadAvg(ctx); err == nil {
		snap.Load = load
	}
	if up, err := c.provider.Uptime(ctx); err == nil {
		snap.Uptime = time.Duration(up) * time.Second
	}

	if c.info != nil {
		snap.Model = c.info.Model
	} else if info, err := c.provider.CPUInfo(ctx); err == nil {
		snap.Model = info.Model
	}
	return snap, nil
}

func (c *CPUSource) Rebuild(context.Context) (Snapshot, error) {
	if c.last == nil {
		return nil, ErrNoSnapshot
	}
	return c.last, nil
}

func (c *CPUSource) Commit(s Snapshot) {
	snap, ok := s.(*CPUSnapshot)
	if !ok || snap == c.last {
		return
	}
	c.total.Push(snap.Total)
	for len(c.cores) < len(snap.PerCore) {
		c.cores = append(c.cores, NewRing(c.size))
	}
	for i, v := range snap.PerCore {
		c.cores[i].Push(v)
	}
	if c.info == nil && snap.Model != "" {
		c.info = &CPUInfo{Model: snap.Model, Logical: len(snap.PerCore)}
	}
	c.last = snap
}
