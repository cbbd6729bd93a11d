package main

import (
	"testing"
	"time"

	"github.com/mrdg/semimod/audio"
	"github.com/rakyll/portmidi"
)

func TestKnobValue(t *testing.T) {
	params := audio.Params()
	tests := []struct {
		param audio.ParamID
		value int64
		want  float64
	}{
		{audio.ParamVolume, 0, 0},
		{audio.ParamVolume, 127, 100},
		{audio.ParamVCO1Frequency, 0, -5},
		{audio.ParamVCO1Frequency, 127, 5},
		{audio.ParamVCFCutoff, 0, 20},
		{audio.ParamVCFCutoff, 127, 20000},
		{audio.ParamVCFCutoff, 200, 20000},
		{audio.ParamVCADecay, -3, 10},
	}
	for _, test := range tests {
		want, got := test.want, knobValue(params[test.param], test.value)
		if diff := want - got; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%v at %d: want %v, got %v", test.param, test.value, want, got)
		}
	}
}

func TestHandleMIDI(t *testing.T) {
	_, o, _ := testEnv(t)
	eng := o.engine

	if err := handleMIDI(eng, portmidi.Event{Status: 0x90, Data1: 36, Data2: 0}); err != nil {
		t.Fatal(err)
	}
	if want, got := uint64(0), eng.TriggerCount(); want != got {
		t.Errorf("note on with zero velocity: want %v triggers, got %v", want, got)
	}
	if err := handleMIDI(eng, portmidi.Event{Status: 0x91, Data1: 36, Data2: 100}); err != nil {
		t.Fatal(err)
	}
	if want, got := uint64(1), eng.TriggerCount(); want != got {
		t.Errorf("want %v triggers, got %v", want, got)
	}

	if err := handleMIDI(eng, portmidi.Event{Status: 0xb0, Data1: 74, Data2: 0}); err != nil {
		t.Fatal(err)
	}
	if want, got := 20.0, eng.Param(audio.ParamVCFCutoff).Float(); want != got {
		t.Errorf("want cutoff %v, got %v", want, got)
	}
	// unbound controllers are ignored
	if err := handleMIDI(eng, portmidi.Event{Status: 0xb0, Data1: 120, Data2: 64}); err != nil {
		t.Fatal(err)
	}

	if err := handleMIDI(eng, portmidi.Event{Status: 0xfa}); err != nil {
		t.Fatal(err)
	}
	if !eng.SequencerRunning() {
		t.Error("start message should start the sequencer")
	}
	o.clock.Advance(500 * time.Millisecond)
	if err := handleMIDI(eng, portmidi.Event{Status: 0xfc}); err != nil {
		t.Fatal(err)
	}
	if eng.SequencerRunning() {
		t.Error("stop message should stop the sequencer")
	}
	if want, got := 1, eng.CurrentStep(); want != got {
		t.Errorf("want step %v, got %v", want, got)
	}
}
