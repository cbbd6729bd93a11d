package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/mrdg/semimod/audio"
	wav "github.com/youpy/go-wav"
)

const bounceBlock = 256

// offline is an engine that renders as fast as it is pulled, with a clock
// that advances with the rendered samples.
type offline struct {
	engine  *audio.Engine
	backend *audio.NullBackend
	clock   *audio.ManualClock
}

func newOffline(sampleRate int, opts ...audio.Option) (*offline, error) {
	o := &offline{
		backend: audio.NewNullBackend(),
		clock:   audio.NewManualClock(time.Unix(0, 0)),
	}
	opts = append([]audio.Option{
		audio.WithSampleRate(sampleRate),
		audio.WithClock(o.clock),
		audio.WithLogger(log.New(io.Discard, "", 0)),
	}, opts...)
	o.engine = audio.New(o.backend, opts...)
	if err := o.engine.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return o, nil
}

// copyParams sets every stored parameter of src on the offline engine.
func (o *offline) copyParams(src *audio.Engine) error {
	for _, info := range audio.Params() {
		if info.Kind == audio.KindEvent {
			continue
		}
		if err := o.engine.SetParam(info.ID, src.Param(info.ID)); err != nil {
			return err
		}
	}
	return nil
}

// writeWav renders seconds of audio as 16 bit mono wav to w.
func (o *offline) writeWav(w io.Writer, seconds float64) error {
	sampleRate := o.engine.SampleRate()
	numSamples := int(math.Round(seconds * float64(sampleRate)))
	writer := wav.NewWriter(w, uint32(numSamples), 1, uint32(sampleRate), 16)

	buf := make([]float64, bounceBlock)
	samples := make([]wav.Sample, bounceBlock)
	for pos := 0; pos < numSamples; pos += bounceBlock {
		n := min(bounceBlock, numSamples-pos)
		o.backend.Pull(buf[:n])
		o.clock.Advance(time.Duration(n) * time.Second / time.Duration(sampleRate))
		for i, x := range buf[:n] {
			x = math.Max(-1, math.Min(1, x))
			samples[i].Values[0] = int(math.Round(x * math.MaxInt16))
		}
		if err := writer.WriteSamples(samples[:n]); err != nil {
			return err
		}
	}
	return nil
}

func (o *offline) close() {
	o.engine.Dispose()
}

// bounceFile renders the sound of src to a wav file. The pattern is played
// from the first step if src's sequencer is running, otherwise a single
// trigger is rendered.
func bounceFile(path string, src *audio.Engine, seconds float64) error {
	o, err := newOffline(src.SampleRate())
	if err != nil {
		return err
	}
	defer o.close()
	if err := o.copyParams(src); err != nil {
		return err
	}
	if src.SequencerRunning() {
		o.engine.StartSequencer()
	} else {
		o.engine.TriggerEnvelopes()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := o.writeWav(f, seconds); err != nil {
		f.Close()
		return fmt.Errorf("bounce %s: %w", path, err)
	}
	return f.Close()
}
