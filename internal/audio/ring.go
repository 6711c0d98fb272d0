package audio

import "sync"

// sampleRing is a thread-safe circular buffer of mono samples. The provider's
// pump goroutine writes, the frame reads the most recent window.
type sampleRing struct {
	buf  []float64
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

func newSampleRing(size int) *sampleRing {
	return &sampleRing{
		buf:  make([]float64, size),
		size: size,
	}
}

// Write appends samples, overwriting the oldest ones when full.
func (r *sampleRing) Write(p []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(p) > r.size {
		p = p[len(p)-r.size:]
	}
	for _, s := range p {
		r.buf[r.w] = s
		r.w = (r.w + 1) % r.size
	}
	r.len += len(p)
	if r.len > r.size {
		r.len = r.size
	}
}

// Latest fills dst with the most recent samples, right-aligned. Missing
// history at the front is silence. It returns how many real samples were copied.
func (r *sampleRing) Latest(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(dst)
	if n > r.len {
		n = r.len
	}
	pad := len(dst) - n
	for i := range pad {
		dst[i] = 0
	}
	start := (r.w - n + r.size) % r.size
	for i := range n {
		dst[pad+i] = r.buf[(start+i)%r.size]
	}
	return n
}

// Clear drops all buffered samples.
func (r *sampleRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w = 0
	r.len = 0
}
