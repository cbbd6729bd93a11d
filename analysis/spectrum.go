// Package analysis measures rendered audio: level and dominant pitch.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
)

// Spectrum returns the magnitude spectrum of samples after a Hann window,
// from DC up to Nyquist.
func Spectrum(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}
	windowed := make([]float64, n)
	for i, x := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
		windowed[i] = x * w
	}
	bins := fft.FFTReal(windowed)
	mags := make([]float64, n/2+1)
	for i := range mags {
		mags[i] = cmplx.Abs(bins[i]) / float64(n)
	}
	return mags
}

// DominantFrequency returns the frequency in Hz of the strongest spectral
// peak, refined by parabolic interpolation of the log magnitudes around it.
// It returns 0 for silence.
func DominantFrequency(samples []float64, sampleRate float64) float64 {
	mags := Spectrum(samples)
	if len(mags) < 3 {
		return 0
	}
	peak := 1
	for i := 2; i < len(mags)-1; i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if mags[peak] == 0 {
		return 0
	}
	offset := 0.0
	if mags[peak-1] > 0 && mags[peak+1] > 0 {
		a, b, c := math.Log(mags[peak-1]), math.Log(mags[peak]), math.Log(mags[peak+1])
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}
	return (float64(peak) + offset) * sampleRate / float64(len(samples))
}

func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, x := range samples {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func Peak(samples []float64) float64 {
	var peak float64
	for _, x := range samples {
		peak = math.Max(peak, math.Abs(x))
	}
	return peak
}
