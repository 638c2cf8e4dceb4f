// Package source samples the operating system into immutable snapshots, one
// kind per dashboard panel.
package source

import "strings"

// Kind identifies one data source.
type Kind int

const (
	KindCPU Kind = iota
	KindMem
	KindNet
	KindProc

	numKinds
)

// NumKinds is the number of source kinds.
const NumKinds = int(numKinds)

// Order is the fixed order sources are sampled in within one pass.
var Order = []Kind{KindCPU, KindMem, KindNet, KindProc}

func (k Kind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindMem:
		return "mem"
	case KindNet:
		return "net"
	case KindProc:
		return "proc"
	}
	return "unknown"
}

// Set is a set of kinds.
type Set uint8

// All contains every kind.
const All Set = 1<<numKinds - 1

// SetOf builds a set from kinds.
func SetOf(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is in the set.
func (s Set) Has(k Kind) bool {
	return s&(1<<k) != 0
}

// Union returns the kinds in either set.
func (s Set) Union(o Set) Set {
	return s | o
}

// Empty reports whether the set has no kinds.
func (s Set) Empty() bool {
	return s&All == 0
}

// Kinds returns the members in sampling order.
func (s Set) Kinds() []Kind {
	var out []Kind
	for _, k := range Order {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, numKinds)
	for _, k := range s.Kinds() {
		names = append(names, k.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
