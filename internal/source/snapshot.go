package source

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/rtop/internal/proctree"
)

// ErrNoSnapshot is returned by Rebuild before the first successful sample.
var ErrNoSnapshot = errors.New("no snapshot sampled yet")

// Snapshot is the immutable result of one sampling pass for one kind.
type Snapshot interface {
	Kind() Kind
}

// Source produces snapshots of one kind. Sample queries the OS; Rebuild
// recomputes from the last committed data without touching the OS, picking
// up changed display settings. Neither changes the source's state: Commit
// adopts a snapshot once its pass completes, and a snapshot that is never
// committed leaves the source as it was. All three are called only from the
// collector goroutine.
type Source interface {
	Kind() Kind
	Sample(ctx context.Context) (Snapshot, error)
	Rebuild(ctx context.Context) (Snapshot, error)
	Commit(Snapshot)
}

// CPUSnapshot is aggregate and per-core utilization with graph history.
type CPUSnapshot struct {
	Time    time.Time
	Total   float64
	PerCore []float64

	History     []float64
	CoreHistory [][]float64

	Load   [3]float64
	Uptime time.Duration
	Model  string
}

func (*CPUSnapshot) Kind() Kind { return KindCPU }

// MemSnapshot holds memory and swap usage. History is keyed by field name
// and holds percent-of-total values.
type MemSnapshot struct {
	Time time.Time
	MemStat

	History map[string][]float64
}

func (*MemSnapshot) Kind() Kind { return KindMem }

// Memory history keys.
const (
	MemUsed      = "used"
	MemAvailable = "available"
	MemCached    = "cached"
	MemFree      = "free"
	SwapUsed     = "swap_used"
	SwapFree     = "swap_free"
)

// Percent returns part as a percentage of total.
func Percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// NetDirection is one direction of traffic on the selected interface.
type NetDirection struct {
	Total   uint64  // bytes since start or since the last reset
	Speed   float64 // bytes per second over the last interval
	Top     float64 // highest Speed seen
	Graph   float64 // graph upper bound, bytes per second
	History []float64
}

// NetSnapshot is traffic on the selected interface.
type NetSnapshot struct {
	Time       time.Time
	Interfaces []string
	Interface  string
	Download   NetDirection
	Upload     NetDirection
	Reset      bool
	Auto       bool
	Sync       bool

	staged map[string]ifaceState
}

func (*NetSnapshot) Kind() Kind { return KindNet }

// ProcDetail is the pinned process shown in the detail panel.
type ProcDetail struct {
	Record     proctree.Record
	CPUHistory []float64
	MemHistory []float64
}

// ProcSnapshot is the built process list.
type ProcSnapshot struct {
	Time   time.Time
	View   *proctree.View
	Detail *ProcDetail

	fresh   bool
	records []proctree.Record
	prev    map[int32]procSample
}

func (*ProcSnapshot) Kind() Kind { return KindProc }

// Store holds the published snapshot of each kind. Each is replaced whole;
// readers never see a partial update.
type Store struct {
	cpu  atomic.Pointer[CPUSnapshot]
	mem  atomic.Pointer[MemSnapshot]
	net  atomic.Pointer[NetSnapshot]
	proc atomic.Pointer[ProcSnapshot]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Publish replaces the stored snapshot of snap's kind.
func (s *Store) Publish(snap Snapshot) {
	switch v := snap.(type) {
	case *CPUSnapshot:
		s.cpu.Store(v)
	case *MemSnapshot:
		s.mem.Store(v)
	case *NetSnapshot:
		s.net.Store(v)
	case *ProcSnapshot:
		s.proc.Store(v)
	}
}

// Get returns the published snapshot of kind k, or nil.
func (s *Store) Get(k Kind) Snapshot {
	switch k {
	case KindCPU:
		if v := s.cpu.Load(); v != nil {
			return v
		}
	case KindMem:
		if v := s.mem.Load(); v != nil {
			return v
		}
	case KindNet:
		if v := s.net.Load(); v != nil {
			return v
		}
	case KindProc:
		if v := s.proc.Load(); v != nil {
			return v
		}
	}
	return nil
}

func (s *Store) CPU() *CPUSnapshot   { return s.cpu.Load() }
func (s *Store) Mem() *MemSnapshot   { return s.mem.Load() }
func (s *Store) Net() *NetSnapshot   { return s.net.Load() }
func (s *Store) Proc() *ProcSnapshot { return s.proc.Load() }
