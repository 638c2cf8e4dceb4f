package proctree

import "sync"

// Collapse holds the per-pid collapsed flags. It outlives snapshots and is
// shared by the main loop, which toggles flags, and the collector, which
// reads them while building and prunes them after sampling.
type Collapse struct {
	mu sync.Mutex
	m  map[int32]bool
}

// NewCollapse returns an empty collapse set.
func NewCollapse() *Collapse {
	return &Collapse{m: make(map[int32]bool)}
}

// Toggle flips the flag for pid and returns the new state.
func (c *Collapse) Toggle(pid int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m[pid] {
		delete(c.m, pid)
		return false
	}
	c.m[pid] = true
	return true
}

// Set marks pid collapsed or expanded.
func (c *Collapse) Set(pid int32, collapsed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if collapsed {
		c.m[pid] = true
	} else {
		delete(c.m, pid)
	}
}

// Collapsed reports whether pid is collapsed.
func (c *Collapse) Collapsed(pid int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[pid]
}

// Len returns the number of collapsed pids.
func (c *Collapse) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Prune drops flags for pids not in alive.
func (c *Collapse) Prune(alive map[int32]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for pid := range c.m {
		if _, ok := alive[pid]; !ok {
			delete(c.m, pid)
		}
	}
}

// copy returns the current flags for use during one build.
func (c *Collapse) copy() map[int32]bool {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int32]bool, len(c.m))
	for pid, v := range c.m {
		out[pid] = v
	}
	return out
}
