package audio

import (
	"sync/atomic"
)

// event is a trigger handed from the control side to the render callback.
type event struct {
	velocity float64
	seq      uint64 // accepted trigger count, for logging
}

// eventBuffer is a lock-free spsc queue. Producers on the control side must
// serialise their pushes.
type eventBuffer struct {
	events      []event
	read, write atomic.Uint32
}

func newEventBuffer(size int) *eventBuffer {
	if size <= 0 || size&(size-1) != 0 {
		panic("event buffer size must be a power of 2")
	}
	return &eventBuffer{events: make([]event, size)}
}

// push appends ev and reports whether there was room. It never blocks, so a
// stalled render callback cannot stall the control side.
func (b *eventBuffer) push(ev event) bool {
	write := b.write.Load()
	if write-b.read.Load() == uint32(len(b.events)) {
		return false
	}
	b.events[write%uint32(len(b.events))] = ev
	b.write.Store(write + 1)
	return true
}

func (b *eventBuffer) iter(f func(event)) {
	read := b.read.Load()
	write := b.write.Load()
	for read != write {
		f(b.events[read%uint32(len(b.events))])
		read++
	}
	b.read.Store(read)
}

// drop discards pending events. Only safe while no render callback runs.
func (b *eventBuffer) drop() {
	b.read.Store(b.write.Load())
}
