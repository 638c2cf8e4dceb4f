package source

import (
	"context"
	"sort"
	"sync"
	"time"
)

// minAutoGraph is the smallest graph bound used when auto scaling, in bytes per second.
const minAutoGraph = 10 << 10

// NetConfig holds the network panel settings taken from the config.
type NetConfig struct {
	Download uint64 // fixed graph bound, bytes per second
	Upload   uint64
	Auto     bool // scale graphs to recent traffic instead
	Sync     bool // share one scale between both graphs
}

// ifaceState is the committed view of one interface.
type ifaceState struct {
	seen      bool
	prevRecv  uint64
	prevSent  uint64
	prevTime  time.Time
	startRecv uint64
	startSent uint64

	speedRecv float64
	speedSent float64
	topRecv   float64
	topSent   float64
	histRecv  []float64
	histSent  []float64
}

// netBase is where totals are counted from while reset is on. It lives
// outside ifaceState so a pass staged before a toggle cannot overwrite it.
type netBase struct {
	recv uint64
	sent uint64
}

// NetSource samples interface counters and derives transfer rates.
type NetSource struct {
	provider Provider
	size     int

	mu       sync.Mutex
	cfg      NetConfig
	selected string
	reset    bool
	state    map[string]ifaceState
	bases    map[string]netBase
	names    []string
	last     *NetSnapshot
}

// NewNetSource creates a network source keeping historySize rate samples per direction.
func NewNetSource(p Provider, historySize int, cfg NetConfig) *NetSource {
	return &NetSource{
		provider: p,
		size:     historySize,
		cfg:      cfg,
		state:    make(map[string]ifaceState),
		bases:    make(map[string]netBase),
	}
}

func (n *NetSource) Kind() Kind { return KindNet }

func (n *NetSource) Sample(ctx context.Context) (Snapshot, error) {
	counters, err := n.provider.NetCounters(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	n.mu.Lock()
	defer n.mu.Unlock()

	staged := make(map[string]ifaceState, len(counters))
	names := make([]string, 0, len(counters))
	for _, c := range counters {
		st := n.state[c.Name]
		if !st.seen {
			st = ifaceState{seen: true, startRecv: c.BytesRecv, startSent: c.BytesSent}
		} else {
			dt := now.Sub(st.prevTime).Seconds()
			st.speedRecv = rate(st.prevRecv, c.BytesRecv, dt)
			st.speedSent = rate(st.prevSent, c.BytesSent, dt)
		}
		st.topRecv = max(st.topRecv, st.speedRecv)
		st.topSent = max(st.topSent, st.speedSent)
		st.histRecv = appendBounded(st.histRecv, st.speedRecv, n.size)
		st.histSent = appendBounded(st.histSent, st.speedSent, n.size)
		st.prevRecv, st.prevSent, st.prevTime = c.BytesRecv, c.BytesSent, now

		staged[c.Name] = st
		names = append(names, c.Name)
	}
	sort.Strings(names)

	snap := n.view(staged, names, now)
	snap.staged = staged
	return snap, nil
}

func (n *NetSource) Rebuild(context.Context) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == nil {
		return nil, ErrNoSnapshot
	}
	return n.view(n.state, n.names, n.last.Time), nil
}

func (n *NetSource) Commit(s Snapshot) {
	snap, ok := s.(*NetSnapshot)
	if !ok {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if snap.staged != nil {
		n.state = snap.staged
		n.names = snap.Interfaces
	}
	n.last = snap
}

// Cycle selects the interface delta places away, wrapping, and returns its name.
func (n *NetSource) Cycle(delta int) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.names) == 0 {
		return n.selected
	}
	i := sort.SearchStrings(n.names, n.selected)
	if i >= len(n.names) || n.names[i] != n.selected {
		i = 0
	}
	i = ((i+delta)%len(n.names) + len(n.names)) % len(n.names)
	n.selected = n.names[i]
	return n.selected
}

// ToggleReset switches totals between counting from start and counting
// from now, and reports the new state.
func (n *NetSource) ToggleReset() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset = !n.reset
	n.bases = make(map[string]netBase, len(n.state))
	if n.reset {
		for name, st := range n.state {
			n.bases[name] = netBase{recv: st.prevRecv, sent: st.prevSent}
		}
	}
	return n.reset
}

// ToggleAuto switches graph auto scaling and reports the new state.
func (n *NetSource) ToggleAuto() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cfg.Auto = !n.cfg.Auto
	return n.cfg.Auto
}

// ToggleSync switches shared graph scaling and reports the new state.
func (n *NetSource) ToggleSync() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cfg.Sync = !n.cfg.Sync
	return n.cfg.Sync
}

// Config returns the current settings.
func (n *NetSource) Config() NetConfig {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cfg
}

// view builds a snapshot of the selected interface. Callers hold n.mu.
func (n *NetSource) view(state map[string]ifaceState, names []string, at time.Time) *NetSnapshot {
	snap := &NetSnapshot{
		Time:       at,
		Interfaces: names,
		Reset:      n.reset,
		Auto:       n.cfg.Auto,
		Sync:       n.cfg.Sync,
	}
	n.selected = pickInterface(names, n.selected)
	snap.Interface = n.selected

	st, ok := state[n.selected]
	if !ok {
		return snap
	}
	base := n.bases[n.selected]
	snap.Download = NetDirection{
		Total:   total(st.prevRecv, st.startRecv, base.recv, n.reset),
		Speed:   st.speedRecv,
		Top:     st.topRecv,
		History: st.histRecv,
		Graph:   float64(n.cfg.Download),
	}
	snap.Upload = NetDirection{
		Total:   total(st.prevSent, st.startSent, base.sent, n.reset),
		Speed:   st.speedSent,
		Top:     st.topSent,
		History: st.histSent,
		Graph:   float64(n.cfg.Upload),
	}
	if n.cfg.Auto {
		snap.Download.Graph = max(Max(st.histRecv), minAutoGraph)
		snap.Upload.Graph = max(Max(st.histSent), minAutoGraph)
	}
	if n.cfg.Sync {
		both := max(snap.Download.Graph, snap.Upload.Graph)
		snap.Download.Graph, snap.Upload.Graph = both, both
	}
	return snap
}

// pickInterface keeps current if it still exists, and otherwise prefers
// the first non-loopback interface.
func pickInterface(names []string, current string) string {
	for _, name := range names {
		if name == current {
			return current
		}
	}
	for _, name := range names {
		if name != "lo" && name != "lo0" {
			return name
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

func total(counter, start, base uint64, reset bool) uint64 {
	from := start
	if reset && base > 0 {
		from = base
	}
	if counter < from {
		return 0
	}
	return counter - from
}

// rate returns bytes per second between two counter readings. A counter
// that went backwards was reset and yields zero.
func rate(prev, cur uint64, seconds float64) float64 {
	if seconds <= 0 || cur < prev {
		return 0
	}
	return float64(cur-prev) / seconds
}

// appendBounded returns a new slice of hist plus v, keeping at most size values.
func appendBounded(hist []float64, v float64, size int) []float64 {
	if size <= 0 {
		size = 1
	}
	start := 0
	if len(hist)+1 > size {
		start = len(hist) + 1 - size
	}
	out := make([]float64, 0, len(hist)-start+1)
	out = append(out, hist[start:]...)
	return append(out, v)
}
