package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mrdg/semimod/audio"
	"github.com/mrdg/semimod/dub"
)

func testEnv(t *testing.T) (*env, *offline, *bytes.Buffer) {
	t.Helper()
	o, err := newOffline(audio.DefaultSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(o.close)
	var out bytes.Buffer
	return newEnv(o.engine, &out), o, &out
}

func TestEvalSet(t *testing.T) {
	tests := []struct {
		input string
		param audio.ParamID
		want  float64
	}{
		{"set vcf_cutoff 1000", audio.ParamVCFCutoff, 1000},
		{"set vco1_frequency -1.5", audio.ParamVCO1Frequency, -1.5},
		{"set vco1_wave triangle", audio.ParamVCO1Wave, 1},
		{"set vcf_mode highpass", audio.ParamVCFMode, 0},
		{"set seq_pitch_mod \"vco2\"", audio.ParamSeqPitchMod, 2},
		{"set hard_sync on", audio.ParamHardSync, 1},
		{"set tempo 90", audio.ParamTempo, 90},
		{"set volume 200", audio.ParamVolume, 100},
	}
	for _, test := range tests {
		env, _, _ := testEnv(t)
		if _, err := env.eval(test.input); err != nil {
			t.Fatalf("%s: %v", test.input, err)
		}
		want, got := test.want, env.engine.Param(test.param).Float()
		if want != got {
			t.Errorf("%s: want %v, got %v", test.input, want, got)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	inputs := []string{
		"",
		"bogus",
		"set",
		"set vcf_cutoff",
		"set nope 1",
		"set vco1_wave sine",
		"set vcf_cutoff fast",
		"steps '9 pitch 1",
		"steps '1 color 1",
		"steps 1 pitch 1",
		"watch 3",
		"preset nope",
		"bounce \"out.wav\" 0",
	}
	env, _, _ := testEnv(t)
	for _, input := range inputs {
		if _, err := env.eval(input); err == nil {
			t.Errorf("%q: expected an error", input)
		}
	}
}

func TestEvalGet(t *testing.T) {
	env, _, _ := testEnv(t)
	tests := map[string]dub.Node{
		"get vcf_mode":   dub.String("lowpass"),
		"get vcf_cutoff": dub.String("5000 Hz"),
		"get hard_sync":  dub.String("false"),
		"get run_stop":   dub.String("false"),
	}
	for input, want := range tests {
		got, err := env.eval(input)
		if err != nil {
			t.Fatalf("%s: %v", input, err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("%s: want %v, got %v", input, want, got)
		}
	}
}

func TestEvalSteps(t *testing.T) {
	env, _, _ := testEnv(t)
	if _, err := env.eval("steps '1,3:4 pitch 0.5"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.eval("steps '* velocity 40"); err != nil {
		t.Fatal(err)
	}
	var pitches, velocities []float64
	for step := 0; step < audio.NumSteps; step++ {
		pitches = append(pitches, env.engine.Param(audio.PitchParam(step)).Float())
		velocities = append(velocities, env.engine.Param(audio.VelocityParam(step)).Float())
	}
	want := []float64{0.5, 0, 0.5, 0.5, 0, 0, 0, 0}
	if !reflect.DeepEqual(want, pitches) {
		t.Errorf("pitches: want %v, got %v", want, pitches)
	}
	want = []float64{40, 40, 40, 40, 40, 40, 40, 40}
	if !reflect.DeepEqual(want, velocities) {
		t.Errorf("velocities: want %v, got %v", want, velocities)
	}
}

func TestEvalTransport(t *testing.T) {
	env, o, _ := testEnv(t)
	if _, err := env.eval("start"); err != nil {
		t.Fatal(err)
	}
	if !env.engine.SequencerRunning() {
		t.Fatal("sequencer should be running")
	}
	o.clock.Advance(1500 * time.Millisecond)
	if want, got := 3, env.engine.CurrentStep(); want != got {
		t.Errorf("want step %v, got %v", want, got)
	}
	if _, err := env.eval("stop"); err != nil {
		t.Fatal(err)
	}
	o.clock.Advance(time.Second)
	if want, got := 3, env.engine.CurrentStep(); want != got {
		t.Errorf("want step %v after stop, got %v", want, got)
	}
	if _, err := env.eval("advance"); err != nil {
		t.Fatal(err)
	}
	if want, got := 4, env.engine.CurrentStep(); want != got {
		t.Errorf("want step %v after advance, got %v", want, got)
	}
}

func TestWatch(t *testing.T) {
	env, _, out := testEnv(t)
	if _, err := env.eval("advance"); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if _, err := env.eval("watch on"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.eval("advance"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), numIcon(3)+" ⬛️") {
		t.Errorf("step 3 not highlighted in %q", out.String())
	}
}

func TestPresetCommand(t *testing.T) {
	env, _, _ := testEnv(t)
	if _, err := env.eval("preset kick"); err != nil {
		t.Fatal(err)
	}
	if want, got := 800.0, env.engine.Param(audio.ParamVCFCutoff).Float(); want != got {
		t.Errorf("want cutoff %v, got %v", want, got)
	}
	got, err := env.eval("presets")
	if err != nil {
		t.Fatal(err)
	}
	if want := dub.String("init kick snare tom zap"); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestRunScript(t *testing.T) {
	env, _, _ := testEnv(t)
	script := `# kick on every other step
preset kick

steps '2,4,6,8 velocity 0
set tempo 140
`
	if err := env.runScript(strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}
	if want, got := 140.0, env.engine.Param(audio.ParamTempo).Float(); want != got {
		t.Errorf("want tempo %v, got %v", want, got)
	}
	if want, got := 0.0, env.engine.Param(audio.VelocityParam(1)).Float(); want != got {
		t.Errorf("want velocity %v, got %v", want, got)
	}

	err := env.runScript(strings.NewReader("set tempo 120\nset tempo fast\n"))
	if err == nil || !strings.HasPrefix(err.Error(), "line 2:") {
		t.Errorf("want an error on line 2, got %v", err)
	}
}
