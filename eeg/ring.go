package eeg

import "sync"

// PairRing is a fixed-capacity ring of (left, right) calibrated value pairs.
// The producer appends, the consumer takes snapshots; the only shared state
// between arrival and analysis. The lock bounds just the copy, so appends are
// never blocked for longer than one memmove.
type PairRing struct {
	mu    sync.Mutex
	buf   [][2]float64
	start int
	n     int
}

// NewPairRing makes a ring holding at most capacity pairs; older entries are
// overwritten once it fills.
func NewPairRing(capacity int) *PairRing {
	if capacity <= 0 {
		panic("ring capacity must be positive")
	}
	return &PairRing{buf: make([][2]float64, capacity)}
}

func (r *PairRing) Append(left, right float64) {
	r.mu.Lock()
	i := (r.start + r.n) % len(r.buf)
	r.buf[i] = [2]float64{left, right}
	if r.n < len(r.buf) {
		r.n++
	} else {
		r.start = (r.start + 1) % len(r.buf)
	}
	r.mu.Unlock()
}

// Len reports how many pairs are currently buffered.
func (r *PairRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Tail copies out the most recent n pairs in arrival order. If fewer are
// buffered, it returns what exists.
func (r *PairRing) Tail(n int) [][2]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > r.n {
		n = r.n
	}
	out := make([][2]float64, n)
	first := (r.start + r.n - n) % len(r.buf)
	for i := 0; i < n; i++ {
		out[i] = r.buf[(first+i)%len(r.buf)]
	}
	return out
}

// Reset empties the ring.
func (r *PairRing) Reset() {
	r.mu.Lock()
	r.start, r.n = 0, 0
	r.mu.Unlock()
}

// Column extracts one channel's values from a snapshot.
func Column(pairs [][2]float64, ch Channel) []float64 {
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		out[i] = p[ch]
	}
	return out
}
