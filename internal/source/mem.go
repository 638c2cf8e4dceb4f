package source

import (
	"context"
	"time"
)

// MemSource samples memory and swap usage.
type MemSource struct {
	provider Provider
	size     int

	history map[string]*Ring
	last    *MemSnapshot
}

// NewMemSource creates a memory source keeping historySize samples per field.
func NewMemSource(p Provider, historySize int) *MemSource {
	return &MemSource{
		provider: p,
		size:     historySize,
		history:  make(map[string]*Ring),
	}
}

func (m *MemSource) Kind() Kind { return KindMem }

func (m *MemSource) Sample(ctx context.Context) (Snapshot, error) {
	st, err := m.provider.Memory(ctx)
	if err != nil {
		return nil, err
	}

	snap := &MemSnapshot{
		Time:    time.Now(),
		MemStat: st,
		History: make(map[string][]float64, 6),
	}
	for key, v := range memPercents(st) {
		if r, ok := m.history[key]; ok {
			snap.History[key] = r.With(v)
		} else {
			snap.History[key] = []float64{v}
		}
	}
	return snap, nil
}

func (m *MemSource) Rebuild(context.Context) (Snapshot, error) {
	if m.last == nil {
		return nil, ErrNoSnapshot
	}
	return m.last, nil
}

func (m *MemSource) Commit(s Snapshot) {
	snap, ok := s.(*MemSnapshot)
	if !ok || snap == m.last {
		return
	}
	for key, v := range memPercents(snap.MemStat) {
		r, ok := m.history[key]
		if !ok {
			r = NewRing(m.size)
			m.history[key] = r
		}
		r.Push(v)
	}
	m.last = snap
}

func memPercents(st MemStat) map[string]float64 {
	return map[string]float64{
		MemUsed:      Percent(st.Used, st.Total),
		MemAvailable: Percent(st.Available, st.Total),
		MemCached:    Percent(st.Cached, st.Total),
		MemFree:      Percent(st.Free, st.Total),
		SwapUsed:     Percent(st.SwapUsed, st.SwapTotal),
		SwapFree:     Percent(st.SwapFree, st.SwapTotal),
	}
}
