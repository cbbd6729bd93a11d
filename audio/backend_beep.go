package audio

import (
	"context"
	"fmt"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// BeepBackend plays through the beep speaker package.
type BeepBackend struct {
	ctrl *beep.Ctrl
}

func NewBeepBackend() *BeepBackend {
	return &BeepBackend{}
}

func (b *BeepBackend) Open(ctx context.Context, sampleRate, bufferSize int, render RenderFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := speaker.Init(beep.SampleRate(sampleRate), bufferSize); err != nil {
		return fmt.Errorf("beep: %w", err)
	}
	b.ctrl = &beep.Ctrl{Streamer: &renderStreamer{render: render}, Paused: true}
	speaker.Play(b.ctrl)
	return nil
}

func (b *BeepBackend) Start() error {
	return b.setPaused(false)
}

func (b *BeepBackend) Stop() error {
	return b.setPaused(true)
}

func (b *BeepBackend) setPaused(paused bool) error {
	if b.ctrl == nil {
		return fmt.Errorf("beep: backend not open")
	}
	speaker.Lock()
	b.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

func (b *BeepBackend) Close() error {
	if b.ctrl == nil {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	b.ctrl = nil
	return nil
}

// renderStreamer adapts a RenderFunc to a stereo beep.Streamer that never
// ends.
type renderStreamer struct {
	render RenderFunc
	buf    []float64
}

func (s *renderStreamer) Stream(samples [][2]float64) (int, bool) {
	if len(s.buf) < len(samples) {
		s.buf = make([]float64, len(samples))
	}
	buf := s.buf[:len(samples)]
	s.render(buf)
	for i, x := range buf {
		y := float64(clampSample(x))
		samples[i][0] = y
		samples[i][1] = y
	}
	return len(samples), true
}

func (s *renderStreamer) Err() error { return nil }

// Streamer exposes the engine output as a beep.Streamer, for mixing the
// engine into other beep pipelines or encoding it with beep's codecs.
func (e *Engine) Streamer() beep.Streamer {
	return &renderStreamer{render: e.Render}
}
