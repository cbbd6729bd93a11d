package audio

import (
	"sort"
	"sync"
	"time"
)

// Clock schedules the periodic sequencer callback and timestamps triggers.
type Clock interface {
	Now() time.Time
	// Every calls fn every d until cancel is called. The first call happens
	// one period after registration.
	Every(d time.Duration, fn func()) (cancel func())
}

type systemClock struct{}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// ManualClock is a Clock that only moves when Advance is called. Offline
// rendering advances it by the duration of each rendered block.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
	nextID int
}

type manualTimer struct {
	id     int
	next   time.Time
	period time.Duration
	fn     func()
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Every(d time.Duration, fn func()) func() {
	if d <= 0 {
		panic("manual clock: non-positive period")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{id: c.nextID, next: c.now.Add(d), period: d, fn: fn}
	c.timers = append(c.timers, t)
	return func() { c.remove(t.id) }
}

func (c *ManualClock) remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.timers {
		if t.id == id {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d, firing every callback that falls due
// in time order. Callbacks run without the clock's lock held, so they may
// register or cancel timers.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		t := c.due(end)
		if t == nil {
			c.now = end
			c.mu.Unlock()
			return
		}
		c.now = t.next
		t.next = t.next.Add(t.period)
		fn := t.fn
		c.mu.Unlock()
		fn()
	}
}

func (c *ManualClock) due(end time.Time) *manualTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].next.Before(c.timers[j].next)
	})
	if t := c.timers[0]; !t.next.After(end) {
		return t
	}
	return nil
}
