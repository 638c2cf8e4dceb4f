package source

// Ring is a fixed-size circular buffer of samples used for graph history.
// It is owned by a single source and only touched on commit; snapshots get
// copies.
type Ring struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewRing creates a ring holding up to size values.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{
		data: make([]float64, size),
		size: size,
	}
}

// Push adds a value, overwriting the oldest when full.
func (r *Ring) Push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// Len returns the number of stored values.
func (r *Ring) Len() int { return r.count }

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return r.size }

// Last returns the last count values in chronological order (oldest first).
func (r *Ring) Last(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head is the next write position, so the newest value is at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}

// All returns every stored value, oldest first.
func (r *Ring) All() []float64 {
	return r.Last(r.count)
}

// With returns the values the ring would hold after pushing value, without
// modifying it.
func (r *Ring) With(value float64) []float64 {
	out := r.Last(r.size - 1)
	return append(out, value)
}

// Reset empties the ring.
func (r *Ring) Reset() {
	r.head = 0
	r.count = 0
}

// Max returns the largest value in vals, or 0 for none.
func Max(vals []float64) float64 {
	var m float64
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}
