// Package draw composites named, z-ordered text buffers into single
// terminal writes so a frame is never shown half-drawn.
package draw

import (
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/rileyhilliard/rtop/internal/term"
)

// buffer is one renderer's output fragment.
type buffer struct {
	z       int
	seq     uint64 // creation order, breaks z ties
	content string
}

// Compositor owns the named buffers. It is safe for concurrent use by the
// collector goroutine (renderers) and the main loop.
type Compositor struct {
	mu      sync.Mutex
	out     io.Writer
	buffers map[string]*buffer
	nextSeq uint64
}

// New creates a compositor writing to out.
func New(out io.Writer) *Compositor {
	return &Compositor{
		out:     out,
		buffers: make(map[string]*buffer),
	}
}

// Buffer creates or overwrites the named buffer. The z-order of an existing
// buffer is updated to z.
func (c *Compositor) Buffer(name, content string, z int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.get(name, z)
	b.z = z
	b.content = content
}

// Append adds content to the end of the named buffer, creating it at z if needed.
// An existing buffer keeps its z-order.
func (c *Compositor) Append(name, content string, z int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.get(name, z)
	b.content += content
}

// get returns the named buffer, creating it. Must be called with c.mu held.
func (c *Compositor) get(name string, z int) *buffer {
	b, ok := c.buffers[name]
	if !ok {
		b = &buffer{z: z, seq: c.nextSeq}
		c.nextSeq++
		c.buffers[name] = b
	}
	return b
}

// Content returns the named buffer's payload.
func (c *Compositor) Content(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[name]
	if !ok {
		return "", false
	}
	return b.content, true
}

// Names returns the current buffer names in draw order.
func (c *Compositor) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ordered(nil)
}

// Out concatenates the named buffers in z-order (lowest first) and writes
// them in one call. With no names every buffer is written. Unknown names
// are skipped.
func (c *Compositor) Out(names ...string) error {
	c.mu.Lock()
	var sb strings.Builder
	for _, name := range c.ordered(names) {
		sb.WriteString(c.buffers[name].content)
	}
	c.mu.Unlock()

	if sb.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(c.out, sb.String())
	return err
}

// ordered sorts the requested buffer names (or all) by z then creation.
// Must be called with c.mu held.
func (c *Compositor) ordered(names []string) []string {
	var picked []string
	if len(names) == 0 {
		picked = make([]string, 0, len(c.buffers))
		for name := range c.buffers {
			picked = append(picked, name)
		}
	} else {
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			if _, ok := c.buffers[name]; ok && !seen[name] {
				seen[name] = true
				picked = append(picked, name)
			}
		}
	}
	sort.Slice(picked, func(i, j int) bool {
		a, b := c.buffers[picked[i]], c.buffers[picked[j]]
		if a.z != b.z {
			return a.z < b.z
		}
		return a.seq < b.seq
	})
	return picked
}

// Now writes content immediately, bypassing the buffers.
func (c *Compositor) Now(content ...string) error {
	_, err := io.WriteString(c.out, strings.Join(content, ""))
	return err
}

// Clear removes the named buffers, or all of them when no names are given.
// With saved set, the saved cursor position is restored first so a transient
// overlay torn down mid-frame leaves no stray cursor.
func (c *Compositor) Clear(saved bool, names ...string) error {
	c.mu.Lock()
	if len(names) == 0 {
		c.buffers = make(map[string]*buffer)
	} else {
		for _, name := range names {
			delete(c.buffers, name)
		}
	}
	c.mu.Unlock()

	if saved {
		return c.Now(term.RestoreCursor)
	}
	return nil
}
