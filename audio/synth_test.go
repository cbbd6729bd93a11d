package audio

import (
	"math"
	"testing"
)

func TestOscFrequency(t *testing.T) {
	for _, tc := range []struct {
		octaves float64
		want    float64
	}{
		{0, BaseFreq},
		{1, BaseFreq * 2},
		{-1, BaseFreq / 2},
		{5, BaseFreq * 32},
		{-5, BaseFreq / 32},
	} {
		if got := OscFrequency(tc.octaves); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("OscFrequency(%v): want %v, got %v", tc.octaves, tc.want, got)
		}
	}
}

func TestOscSquare(t *testing.T) {
	o := osc{running: true}
	// four samples per cycle
	var got []float64
	for n := 0; n < 8; n++ {
		got = append(got, o.tick(1, 4))
	}
	want := []float64{1, 1, -1, -1, 1, 1, -1, -1}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("wrong square output:\nwant: %v\ngot:  %v", want, got)
		}
	}
}

func TestOscStopped(t *testing.T) {
	o := osc{}
	if got := o.tick(440, 44100); got != 0 {
		t.Errorf("want silence from a stopped oscillator, got %v", got)
	}
}

func TestHardSync(t *testing.T) {
	master := osc{running: true}
	slave := osc{running: true, sync: &master, syncOn: true}
	for n := 0; n < 3; n++ {
		master.tick(1, 4)
		slave.tick(1.7, 4)
	}
	master.tick(1, 4) // wraps
	slave.tick(1.7, 4)
	if want, got := 1.7/4, slave.phase; math.Abs(want-got) > 1e-12 {
		t.Errorf("want slave phase reset to %v, got %v", want, got)
	}
}

func TestFilterDCResponse(t *testing.T) {
	for _, tc := range []struct {
		mode filterMode
		want float64
	}{
		{filterLowpass, 1},
		{filterHighpass, 0},
	} {
		var f filter
		f.calculateCoefficients(tc.mode, 1000, 0, 44100)
		var out float64
		for n := 0; n < 44100; n++ {
			out = f.process(1)
		}
		if math.Abs(out-tc.want) > 1e-6 {
			t.Errorf("mode %v: want DC response %v, got %v", tc.mode, tc.want, out)
		}
	}
}

func TestFilterModDepth(t *testing.T) {
	if want, got := 4000.0, filterModDepth(1000, 1); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := 5000.0, filterModDepth(15000, 1); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := -2000.0, filterModDepth(1000, -0.5); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := maxCutoff, clampCutoff(15000+filterModDepth(15000, 1)); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestPitchRatio(t *testing.T) {
	if want, got := 1.0, pitchRatio(100, 0.5, 1); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	// a full negative sweep would cross zero Hz
	r := pitchRatio(100, -1, 1)
	if want, got := minPitch, 100*(1+r); math.Abs(want-got) > 1e-9 {
		t.Errorf("want floor at %v Hz, got %v", want, got)
	}
}

func TestSmoother(t *testing.T) {
	s := newSmoother(44100, 0)
	s.set(1)
	first := s.next()
	if first <= 0 || first >= 0.01 {
		t.Errorf("want a small first step, got %v", first)
	}
	// one time constant
	for n := 1; n < 441; n++ {
		s.next()
	}
	if got := s.value; math.Abs(got-(1-math.Exp(-1))) > 0.01 {
		t.Errorf("want about 63%% after one time constant, got %v", got)
	}
	for n := 0; n < 44100; n++ {
		s.next()
	}
	if want, got := 1.0, s.value; want != got {
		t.Errorf("want settled value %v, got %v", want, got)
	}
}
