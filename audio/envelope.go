package audio

import "math"

type envelopeState int

const (
	stateIdle envelopeState = iota
	stateAttack
	stateDecay
)

func (s envelopeState) String() string {
	switch s {
	case stateAttack:
		return "attack"
	case stateDecay:
		return "decay"
	default:
		return "idle"
	}
}

const (
	// decayFloor is the fraction of the peak left at the end of the decay
	// segment.
	decayFloor = 0.001
	// tailTime is how long after attack+decay the value is forced to zero.
	tailTime = 0.010
)

// envelope is a one-shot attack/decay generator. Its value stays in [0, 1]:
// it rises linearly from 0 to peak, then falls exponentially, reaching
// decayFloor*peak after the decay time and exactly 0 tailTime later.
type envelope struct {
	sampleRate float64

	attack int // samples
	decay  int
	tail   int

	decayRate float64
	peak      float64

	pos   int    // samples since the last trigger
	start uint64 // render position of the last trigger

	val   float64
	state envelopeState
}

func newEnvelope(sampleRate float64) *envelope {
	return &envelope{sampleRate: sampleRate}
}

// trigger restarts the envelope at render position at. Attack and decay are
// in seconds; a zero attack jumps straight to peak.
func (e *envelope) trigger(at uint64, peak, attack, decay float64) {
	e.peak = math.Max(0, math.Min(1, peak))
	e.attack = int(math.Round(attack * e.sampleRate))
	e.decay = max(1, int(math.Round(decay*e.sampleRate)))
	e.tail = int(math.Round(tailTime * e.sampleRate))
	e.decayRate = math.Pow(decayFloor, 1/float64(e.decay))
	e.start = at
	e.pos = 0
	if e.attack > 0 {
		e.val = 0
		e.state = stateAttack
	} else {
		e.val = e.peak
		e.state = stateDecay
	}
}

// next returns the current value and advances one sample.
func (e *envelope) next() float64 {
	v := e.val
	e.step()
	return v
}

func (e *envelope) step() {
	switch e.state {
	case stateIdle:
		return
	case stateAttack:
		e.pos++
		if e.pos >= e.attack {
			e.val = e.peak
			e.state = stateDecay
		} else {
			e.val = e.peak * float64(e.pos) / float64(e.attack)
		}
	case stateDecay:
		e.pos++
		e.val *= e.decayRate
		if e.pos >= e.attack+e.decay+e.tail {
			e.val = 0
			e.state = stateIdle
		}
	}
}

// reset returns the envelope to idle at zero.
func (e *envelope) reset() {
	e.val = 0
	e.pos = 0
	e.state = stateIdle
}
