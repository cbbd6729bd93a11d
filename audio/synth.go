package audio

import (
	"math"
	"math/rand"
)

// BaseFreq is the oscillator pitch at an octave offset of zero (C3).
const BaseFreq = 130.81

const (
	minCutoff = 20.0
	maxCutoff = 20000.0

	// maxQ is the filter quality factor at full resonance, in dB of peak gain.
	maxQ = 20.0
	// maxFMDepth is the frequency deviation applied to VCO2 at full FM amount.
	maxFMDepth = 500.0
	// minPitch is the lowest frequency a pitch envelope may push a VCO to.
	minPitch = 1.0
)

// OscFrequency returns the frequency of an oscillator at the given octave
// offset.
func OscFrequency(octaves float64) float64 {
	return BaseFreq * math.Pow(2, octaves)
}

type waveform int

const (
	waveSquare waveform = iota
	waveTriangle
)

type osc struct {
	wave    waveform
	phase   float64 // [0, 1)
	wrapped bool    // phase wrapped during the last tick
	running bool

	// sync resets this oscillator's phase whenever the source wraps.
	sync   *osc
	syncOn bool
}

func (o *osc) tick(freq, sampleRate float64) float64 {
	if !o.running {
		o.wrapped = false
		return 0
	}
	if o.syncOn && o.sync != nil && o.sync.wrapped {
		o.phase = 0
	}
	var out float64
	switch o.wave {
	case waveTriangle:
		out = 4*math.Abs(o.phase-0.5) - 1
	default:
		if o.phase < 0.5 {
			out = 1
		} else {
			out = -1
		}
	}
	o.phase += freq / sampleRate
	o.wrapped = o.phase >= 1
	if o.phase >= 1 || o.phase < 0 {
		o.phase -= math.Floor(o.phase)
	}
	return out
}

// noise is a white noise source. A stopped source is never restarted; the
// engine allocates a new one instead.
type noise struct {
	rng     *rand.Rand
	running bool
}

func newNoise(seed int64) *noise {
	return &noise{rng: rand.New(rand.NewSource(seed))}
}

func (n *noise) tick() float64 {
	if !n.running {
		return 0
	}
	return 2*n.rng.Float64() - 1
}

type filterMode int

const (
	filterHighpass filterMode = iota
	filterLowpass
)

// filter is a resonant biquad in transposed direct form II. Coefficients
// follow https://www.w3.org/2011/audio/audio-eq-cookbook.html with the
// quality factor given as resonance peak in dB.
type filter struct {
	b0, b1, b2, a1, a2 float64

	// state
	z1, z2 float64

	mode  filterMode
	freq  float64
	q     float64
	valid bool
}

func (f *filter) process(in float64) float64 {
	out := f.b0*in + f.z1
	f.z1 = f.b1*in - f.a1*out + f.z2
	f.z2 = f.b2*in - f.a2*out
	return out
}

func (f *filter) calculateCoefficients(mode filterMode, freq, q, sampleRate float64) {
	if f.valid && mode == f.mode && freq == f.freq && q == f.q {
		return
	}
	f.mode, f.freq, f.q, f.valid = mode, freq, q, true

	// keep the design below Nyquist for low sample rates
	freq = math.Min(freq, 0.45*sampleRate)
	omega := 2 * math.Pi * freq / sampleRate
	cos := math.Cos(omega)
	sin := math.Sin(omega)
	alpha := sin / (2 * math.Pow(10, q/20))

	var b0, b1, b2 float64
	switch mode {
	case filterHighpass:
		b0 = (1 + cos) / 2
		b1 = -(1 + cos)
		b2 = b0
	default:
		b0 = (1 - cos) / 2
		b1 = 1 - cos
		b2 = b0
	}
	a0 := 1 + alpha
	a1 := -2 * cos
	a2 := 1 - alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

func (f *filter) reset() {
	f.z1, f.z2 = 0, 0
}

func clampCutoff(freq float64) float64 {
	return math.Max(minCutoff, math.Min(maxCutoff, freq))
}

// filterModDepth returns how far the filter envelope moves the cutoff at
// full velocity; amount is in [-1, 1].
func filterModDepth(base, amount float64) float64 {
	return math.Min(base*4, maxCutoff-base) * amount
}

// pitchRatio returns the relative frequency jump of a pitch envelope for the
// given amount in [-1, 1], floored so the jump never drops below minPitch.
func pitchRatio(base, amount, velocity float64) float64 {
	r := 2 * amount * velocity
	if base > 0 && base*(1+r) < minPitch {
		r = minPitch/base - 1
	}
	return r
}
