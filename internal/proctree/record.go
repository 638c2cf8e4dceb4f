// Package proctree builds the process list shown in the process panel: a
// forest linked by parent pid, sorted, filtered and collapsed per the user's
// settings, with selection tracked by pid across rebuilds.
package proctree

import (
	"fmt"
	"strings"
)

// Record is one process as sampled from the OS.
type Record struct {
	Pid     int32
	Ppid    int32
	Name    string
	Args    string // full command line
	User    string
	Threads int32

	CPU     float64 // instantaneous percent
	LazyCPU float64 // smoothed percent

	Mem        uint64 // resident bytes
	MemPercent float32

	Status     string
	CreateTime int64 // unix milliseconds
}

// SortKey selects the process ordering.
type SortKey int

const (
	SortPid SortKey = iota
	SortProgram
	SortArgs
	SortThreads
	SortUser
	SortMem
	SortCPULazy
	SortCPUResponsive
)

var sortNames = []string{
	"pid",
	"program",
	"arguments",
	"threads",
	"user",
	"memory",
	"cpu lazy",
	"cpu responsive",
}

// SortNames lists the accepted sort key names in cycling order.
func SortNames() []string {
	return append([]string(nil), sortNames...)
}

// ParseSortKey maps a config name such as "cpu lazy" to a SortKey.
func ParseSortKey(name string) (SortKey, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sortNames {
		if n == name {
			return SortKey(i), true
		}
	}
	return SortCPULazy, false
}

func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortNames) {
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
	return sortNames[k]
}

// Next returns the key after k, wrapping around.
func (k SortKey) Next() SortKey {
	return SortKey((int(k) + 1) % len(sortNames))
}

// Prev returns the key before k, wrapping around.
func (k SortKey) Prev() SortKey {
	return SortKey((int(k) + len(sortNames) - 1) % len(sortNames))
}

// descending reports whether the key's natural order is largest first.
func (k SortKey) descending() bool {
	switch k {
	case SortThreads, SortMem, SortCPULazy, SortCPUResponsive:
		return true
	}
	return false
}

// Options controls how a View is built.
type Options struct {
	Sort    SortKey
	Reverse bool
	Tree    bool
	Filter  string

	// LazyMargin is the number of percentage points a challenger must lead
	// the current top process by before it takes first place under SortCPULazy.
	// Zero disables the hold.
	LazyMargin float64
}

// matches reports whether the record's command matches the lowercased filter.
func (r *Record) matches(filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), filter) ||
		strings.Contains(strings.ToLower(r.Args), filter)
}
