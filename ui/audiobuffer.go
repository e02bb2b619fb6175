package ui

import (
	"io"
	"sync"
)

// SampleRing is a thread-safe FIFO of int16 samples that oto pulls from
// as little-endian bytes. The emulation goroutine pushes a frame at a
// time; Read blocks while empty. Pushing into a full ring drops the
// oldest samples so the producer never stalls.
type SampleRing struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf    []int16
	head   int // next sample to read
	count  int
	closed bool
}

// NewSampleRing creates a ring holding up to capacity samples.
func NewSampleRing(capacity int) *SampleRing {
	r := &SampleRing{buf: make([]int16, capacity)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Push appends samples, overwriting the oldest on overflow.
func (r *SampleRing) Push(samples []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || len(samples) == 0 {
		return
	}
	size := len(r.buf)
	if len(samples) > size {
		samples = samples[len(samples)-size:]
	}
	if drop := r.count + len(samples) - size; drop > 0 {
		r.head = (r.head + drop) % size
		r.count -= drop
	}

	tail := (r.head + r.count) % size
	n := copy(r.buf[tail:], samples)
	copy(r.buf, samples[n:])
	r.count += len(samples)

	r.cond.Signal()
}

// Read implements io.Reader, emitting whole samples as little-endian
// bytes. It blocks until samples are available and returns io.EOF once
// closed and drained.
func (r *SampleRing) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.count == 0 {
		if r.closed {
			return 0, io.EOF
		}
		r.cond.Wait()
	}

	n := min(len(p)/2, r.count)
	size := len(r.buf)
	for i := 0; i < n; i++ {
		s := r.buf[(r.head+i)%size]
		p[2*i] = byte(s)
		p[2*i+1] = byte(s >> 8)
	}
	r.head = (r.head + n) % size
	r.count -= n
	return 2 * n, nil
}

// Buffered returns the number of buffered bytes.
func (r *SampleRing) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return 2 * r.count
}

// Clear discards everything buffered.
func (r *SampleRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.count = 0
}

// Close wakes any blocked reader. Later reads drain what is left and
// then return io.EOF.
func (r *SampleRing) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.cond.Broadcast()
}
