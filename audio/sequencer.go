package audio

import (
	"sync"
	"sync/atomic"
	"time"
)

// NumSteps is the length of the step sequence.
const NumSteps = 8

// Sequencer is an 8 step cyclic state machine. It owns a single periodic
// clock registration while running.
//
// The play callback runs with the sequencer lock held so that no step plays
// after Stop returns. It must not call back into the sequencer's mutators.
type Sequencer struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	cancel   func()
	gen      uint64 // bumped on every stop or reschedule; stale ticks are dropped

	step    atomic.Int32
	running atomic.Bool

	play func(step int)
}

// NewSequencer returns a stopped sequencer at step 0. play is called with
// the new step index every time a step plays.
func NewSequencer(clock Clock, bpm float64, play func(step int)) *Sequencer {
	return &Sequencer{
		clock:    clock,
		interval: StepInterval(bpm),
		play:     play,
	}
}

// StepInterval returns the time between steps at the given tempo.
func StepInterval(bpm float64) time.Duration {
	return time.Duration(float64(time.Minute) / bpm)
}

// Start plays the current step and begins the clock. Starting a running
// sequencer does nothing.
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return
	}
	s.running.Store(true)
	s.play(int(s.step.Load()))
	s.schedule()
}

// Stop cancels the clock. The step index is kept.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	s.unschedule()
}

// Advance moves to the next step and plays it, whether or not the sequencer
// is running.
func (s *Sequencer) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
}

// SetInterval changes the step interval. A running clock is cancelled and
// rescheduled, so the next step comes one full interval after the change.
func (s *Sequencer) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == s.interval {
		return
	}
	s.interval = d
	if s.running.Load() {
		s.unschedule()
		s.schedule()
	}
}

func (s *Sequencer) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Step returns the current step index. It is safe to call from the play
// callback.
func (s *Sequencer) Step() int { return int(s.step.Load()) }

func (s *Sequencer) Running() bool { return s.running.Load() }

func (s *Sequencer) advance() {
	next := (s.step.Load() + 1) % NumSteps
	s.step.Store(next)
	s.play(int(next))
}

func (s *Sequencer) schedule() {
	gen := s.gen
	s.cancel = s.clock.Every(s.interval, func() { s.tick(gen) })
}

func (s *Sequencer) unschedule() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Sequencer) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.running.Load() {
		return
	}
	s.advance()
}
