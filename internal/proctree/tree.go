package proctree

import (
	"cmp"
	"context"
	"sort"
	"strings"
	"sync"
)

// checkEvery is how many records are processed between cancellation checks.
const checkEvery = 128

// Sibling group keys for the lazy sort incumbents. Tree children use their
// parent pid.
const (
	groupRoots int64 = -1
	groupFlat  int64 = -2
)

// Row is one line of the rendered process list.
type Row struct {
	*Record

	Depth       int
	Prefix      string // tree guide characters for this row
	HasChildren bool
	Collapsed   bool

	// CPU and Mem are the values shown: the row's own, or the subtree totals
	// when collapsed. CPU follows the sort mode, lazy or instantaneous.
	CPU        float64
	Mem        uint64
	MemPercent float32
}

// View is the built, immutable process list for one snapshot.
type View struct {
	Rows    []Row
	Options Options
	Total   int // records in the snapshot, before filtering

	byPid map[int32]*Record
	rowOf map[int32]int
	tops  map[int64]int32
}

// Index returns the row index of pid in the view.
func (v *View) Index(pid int32) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.rowOf[pid]
	return i, ok
}

// Lookup returns the record for pid, whether or not it is visible.
func (v *View) Lookup(pid int32) (*Record, bool) {
	if v == nil {
		return nil, false
	}
	r, ok := v.byPid[pid]
	return r, ok
}

// Pids returns the set of pids in the snapshot.
func (v *View) Pids() map[int32]struct{} {
	out := make(map[int32]struct{}, len(v.byPid))
	for pid := range v.byPid {
		out[pid] = struct{}{}
	}
	return out
}

type node struct {
	rec      *Record
	parent   *node
	children []*node

	kept    bool // survives the filter
	cpuSum  float64
	lazySum float64
	memSum  uint64
	memPct  float32
}

// Builder turns flat records into Views. It remembers the top process of each
// sibling group between builds so SortCPULazy can hold its ordering; that
// memory only advances when a view is committed.
type Builder struct {
	mu   sync.Mutex
	tops map[int64]int32
}

// NewBuilder returns a builder with no lazy sort history.
func NewBuilder() *Builder {
	return &Builder{tops: make(map[int64]int32)}
}

// Commit adopts the lazy sort ordering of v. Views that are discarded,
// for example because their collection pass was cancelled, are never committed.
func (b *Builder) Commit(v *View) {
	if v == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tops = v.tops
}

func (b *Builder) incumbents() map[int64]int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tops
}

type buildState struct {
	ctx       context.Context
	opts      Options
	filter    string
	collapsed map[int32]bool
	prev      map[int64]int32
	tops      map[int64]int32
	n         int
}

// tick counts one unit of work and reports cancellation every checkEvery units.
func (s *buildState) tick() error {
	s.n++
	if s.n%checkEvery == 0 {
		return s.ctx.Err()
	}
	return nil
}

// Build links records into a forest and lays out the rows for opts. The
// result depends only on the record set, not on its order. Build returns
// ctx.Err() without a view if ctx is cancelled part way through.
func (b *Builder) Build(ctx context.Context, records []Record, opts Options, collapse *Collapse) (*View, error) {
	st := &buildState{
		ctx:       ctx,
		opts:      opts,
		filter:    strings.ToLower(strings.TrimSpace(opts.Filter)),
		collapsed: collapse.copy(),
		prev:      b.incumbents(),
		tops:      make(map[int64]int32),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nodes := make([]*node, 0, len(records))
	index := make(map[int32]*node, len(records))
	for i := range records {
		if err := st.tick(); err != nil {
			return nil, err
		}
		rec := &records[i]
		if _, dup := index[rec.Pid]; dup {
			continue
		}
		n := &node{rec: rec}
		index[rec.Pid] = n
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].rec.Pid < nodes[j].rec.Pid })

	roots, err := st.link(nodes, index)
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		st.summarize(r)
	}

	v := &View{
		Options: opts,
		Total:   len(nodes),
		byPid:   make(map[int32]*Record, len(nodes)),
		rowOf:   make(map[int32]int),
		tops:    st.tops,
	}
	for _, n := range nodes {
		v.byPid[n.rec.Pid] = n.rec
	}

	if opts.Tree {
		err = st.emitTree(v, roots, groupRoots, 0, "")
	} else {
		err = st.emitFlat(v, nodes)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// link attaches each node to its parent. Nodes whose parent is missing, or
// which sit on a parent cycle, become roots.
func (s *buildState) link(nodes []*node, index map[int32]*node) ([]*node, error) {
	var roots []*node
	for _, n := range nodes {
		if err := s.tick(); err != nil {
			return nil, err
		}
		p, ok := index[n.rec.Ppid]
		if !ok || p == n {
			roots = append(roots, n)
			continue
		}
		n.parent = p
		p.children = append(p.children, n)
	}

	reached := make(map[*node]bool, len(nodes))
	var mark func(n *node)
	mark = func(n *node) {
		reached[n] = true
		for _, c := range n.children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}
	if len(reached) == len(nodes) {
		return roots, nil
	}
	for _, n := range nodes {
		if reached[n] {
			continue
		}
		siblings := n.parent.children
		for i, c := range siblings {
			if c == n {
				n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
		n.parent = nil
		roots = append(roots, n)
		mark(n)
	}
	return roots, nil
}

// summarize computes subtree totals and filter survival bottom up.
func (s *buildState) summarize(n *node) {
	n.cpuSum = n.rec.CPU
	n.lazySum = n.rec.LazyCPU
	n.memSum = n.rec.Mem
	n.memPct = n.rec.MemPercent
	n.kept = n.rec.matches(s.filter)
	for _, c := range n.children {
		s.summarize(c)
		n.cpuSum += c.cpuSum
		n.lazySum += c.lazySum
		n.memSum += c.memSum
		n.memPct += c.memPct
		if c.kept {
			n.kept = true
		}
	}
}

// collapsedHere reports whether n's children are hidden. While filtering,
// the path to every match stays open.
func (s *buildState) collapsedHere(n *node) bool {
	return s.filter == "" && len(n.children) > 0 && s.collapsed[n.rec.Pid]
}

func (s *buildState) row(n *node, depth int, prefix string, flat bool) Row {
	r := Row{
		Record:      n.rec,
		Depth:       depth,
		Prefix:      prefix,
		HasChildren: !flat && len(n.children) > 0,
		Collapsed:   !flat && s.collapsedHere(n),
		CPU:         n.rec.CPU,
		Mem:         n.rec.Mem,
		MemPercent:  n.rec.MemPercent,
	}
	if s.opts.Sort == SortCPULazy {
		r.CPU = n.rec.LazyCPU
	}
	if r.Collapsed {
		r.CPU = n.cpuSum
		if s.opts.Sort == SortCPULazy {
			r.CPU = n.lazySum
		}
		r.Mem = n.memSum
		r.MemPercent = n.memPct
	}
	return r
}

func (s *buildState) emitTree(v *View, group []*node, key int64, depth int, prefix string) error {
	var kept []*node
	for _, n := range group {
		if n.kept {
			kept = append(kept, n)
		}
	}
	s.order(kept, key)

	for i, n := range kept {
		if err := s.tick(); err != nil {
			return err
		}
		last := i == len(kept)-1
		guide, next := "├─", "│ "
		if last {
			guide, next = "└─", "  "
		}
		own := prefix + guide
		if depth == 0 {
			own, next = "", ""
		}
		r := s.row(n, depth, own, false)
		v.rowOf[n.rec.Pid] = len(v.Rows)
		v.Rows = append(v.Rows, r)

		if r.Collapsed {
			continue
		}
		if err := s.emitTree(v, n.children, int64(n.rec.Pid), depth+1, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

func (s *buildState) emitFlat(v *View, nodes []*node) error {
	var kept []*node
	for _, n := range nodes {
		if err := s.tick(); err != nil {
			return err
		}
		if n.kept {
			kept = append(kept, n)
		}
	}
	s.order(kept, groupFlat)
	for _, n := range kept {
		r := s.row(n, 0, "", true)
		v.rowOf[n.rec.Pid] = len(v.Rows)
		v.Rows = append(v.Rows, r)
	}
	return nil
}

// order sorts one sibling group in place and applies the lazy hold on first place.
func (s *buildState) order(group []*node, key int64) {
	if len(group) == 0 {
		return
	}
	flat := key == groupFlat
	sort.SliceStable(group, func(i, j int) bool {
		return s.less(group[i], group[j], flat)
	})

	if s.opts.Sort != SortCPULazy || s.opts.Reverse {
		return
	}
	if prev, ok := s.prev[key]; ok && group[0].rec.Pid != prev {
		for i := 1; i < len(group); i++ {
			if group[i].rec.Pid != prev {
				continue
			}
			lead := s.lazyValue(group[0], flat) - s.lazyValue(group[i], flat)
			if lead < s.opts.LazyMargin {
				inc := group[i]
				copy(group[1:i+1], group[:i])
				group[0] = inc
			}
			break
		}
	}
	s.tops[key] = group[0].rec.Pid
}

func (s *buildState) lazyValue(n *node, flat bool) float64 {
	if !flat && s.collapsedHere(n) {
		return n.lazySum
	}
	return n.rec.LazyCPU
}

// less orders by the sort key, then by pid. Reverse flips the key
// comparison only, so ties stay in pid order.
func (s *buildState) less(a, b *node, flat bool) bool {
	c := s.compare(a, b, flat)
	if c == 0 {
		return a.rec.Pid < b.rec.Pid
	}
	if s.opts.Sort.descending() {
		c = -c
	}
	if s.opts.Reverse {
		c = -c
	}
	return c < 0
}

// compare returns the ascending comparison of a and b for the sort key.
func (s *buildState) compare(a, b *node, flat bool) int {
	ar, br := a.rec, b.rec
	switch s.opts.Sort {
	case SortPid:
		return cmp.Compare(ar.Pid, br.Pid)
	case SortProgram:
		return strings.Compare(strings.ToLower(ar.Name), strings.ToLower(br.Name))
	case SortArgs:
		return strings.Compare(strings.ToLower(ar.Args), strings.ToLower(br.Args))
	case SortUser:
		return strings.Compare(strings.ToLower(ar.User), strings.ToLower(br.User))
	case SortThreads:
		return cmp.Compare(ar.Threads, br.Threads)
	case SortMem:
		am, bm := ar.Mem, br.Mem
		if !flat && s.collapsedHere(a) {
			am = a.memSum
		}
		if !flat && s.collapsedHere(b) {
			bm = b.memSum
		}
		return cmp.Compare(am, bm)
	case SortCPULazy:
		return cmp.Compare(s.lazyValue(a, flat), s.lazyValue(b, flat))
	case SortCPUResponsive:
		ac, bc := ar.CPU, br.CPU
		if !flat && s.collapsedHere(a) {
			ac = a.cpuSum
		}
		if !flat && s.collapsedHere(b) {
			bc = b.cpuSum
		}
		return cmp.Compare(ac, bc)
	}
	return 0
}
