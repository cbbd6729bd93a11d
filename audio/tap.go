package audio

import "sync"

// tap keeps the most recent output samples for observers. The render side
// never waits: if a reader holds the lock the block is skipped.
type tap struct {
	mu       sync.Mutex
	buf      []float64
	position int
}

func newTap(size int) *tap {
	return &tap{buf: make([]float64, size)}
}

func (t *tap) write(samples []float64) {
	if !t.mu.TryLock() {
		return
	}
	defer t.mu.Unlock()
	for _, x := range samples {
		t.buf[t.position%len(t.buf)] = x
		t.position++
	}
}

// snapshot copies the newest samples into dst, oldest first, and returns
// how many were copied.
func (t *tap) snapshot(dst []float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := min(len(dst), len(t.buf), t.position)
	start := t.position - n
	for i := 0; i < n; i++ {
		dst[i] = t.buf[(start+i)%len(t.buf)]
	}
	return n
}
