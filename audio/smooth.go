package audio

import "math"

// smoothingTime is the time constant of parameter ramps in seconds.
const smoothingTime = 0.010

// smoother is a one-pole ramp toward a target value. It moves 63% of the
// remaining distance every smoothingTime.
type smoother struct {
	value  float64
	target float64
	coeff  float64
}

func newSmoother(sampleRate, init float64) smoother {
	return smoother{
		value:  init,
		target: init,
		coeff:  1 - math.Exp(-1/(smoothingTime*sampleRate)),
	}
}

func (s *smoother) set(target float64) { s.target = target }

func (s *smoother) next() float64 {
	d := s.target - s.value
	if math.Abs(d) < 1e-9 {
		s.value = s.target
	} else {
		s.value += d * s.coeff
	}
	return s.value
}
