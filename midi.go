package main

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/mrdg/semimod/audio"
	"github.com/rakyll/portmidi"
)

const (
	midiNoteOn        = 0x90
	midiControlChange = 0xb0
	midiStart         = 0xfa
	midiContinue      = 0xfb
	midiStop          = 0xfc
)

// knobs maps controller numbers to parameters.
var knobs = map[int64]audio.ParamID{
	1:  audio.ParamFMAmount,
	7:  audio.ParamVolume,
	14: audio.ParamVCO1Frequency,
	15: audio.ParamVCO2Frequency,
	16: audio.ParamVCO1Level,
	17: audio.ParamVCO2Level,
	18: audio.ParamNoiseLevel,
	19: audio.ParamVCODecay,
	20: audio.ParamVCFDecay,
	71: audio.ParamVCFResonance,
	74: audio.ParamVCFCutoff,
	75: audio.ParamVCADecay,
}

type midiController struct {
	engine *audio.Engine
	stream *portmidi.Stream
}

func openMIDI(id int, engine *audio.Engine) (*midiController, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("portmidi: %w", err)
	}
	in, err := portmidi.NewInputStream(portmidi.DeviceID(id), 1024)
	if err != nil {
		portmidi.Terminate()
		return nil, fmt.Errorf("portmidi: open device %d: %w", id, err)
	}
	return &midiController{engine: engine, stream: in}, nil
}

// run handles incoming events until ctx is done.
func (mc *midiController) run(ctx context.Context) error {
	defer portmidi.Terminate()
	defer mc.stream.Close()
	events := mc.stream.Listen()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-events:
			if err := mc.handle(event); err != nil {
				log.Printf("midi: %v", err)
			}
		}
	}
}

func (mc *midiController) handle(event portmidi.Event) error {
	return handleMIDI(mc.engine, event)
}

// handleMIDI triggers on note-on, sets parameters from bound knobs and
// follows the realtime start and stop messages.
func handleMIDI(engine *audio.Engine, event portmidi.Event) error {
	switch event.Status {
	case midiStart, midiContinue:
		engine.StartSequencer()
		return nil
	case midiStop:
		engine.StopSequencer()
		return nil
	}
	switch event.Status & 0xf0 {
	case midiNoteOn:
		if event.Data2 > 0 {
			engine.TriggerEnvelopes()
		}
	case midiControlChange:
		id, ok := knobs[event.Data1]
		if !ok {
			return nil
		}
		info := audio.Params()[id]
		return engine.SetParam(id, audio.Float(knobValue(info, event.Data2)))
	}
	return nil
}

// knobValue maps a controller value (0-127) onto a parameter's domain.
// Frequencies and times follow an exponential curve.
func knobValue(info audio.ParamInfo, value int64) float64 {
	x := math.Max(0, math.Min(127, float64(value))) / 127
	switch info.Unit {
	case "Hz", "ms":
		return info.Min * math.Pow(info.Max/info.Min, x)
	default:
		return info.Min + x*(info.Max-info.Min)
	}
}
