package audio

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// RenderFunc fills out with the next len(out) mono samples.
type RenderFunc func(out []float64)

// Backend is the platform rendering context. Open acquires the device and
// arranges for render to be called from the audio thread once Start is
// called.
type Backend interface {
	Open(ctx context.Context, sampleRate, bufferSize int, render RenderFunc) error
	Start() error
	Stop() error
	Close() error
}

func clampSample(x float64) float32 {
	return float32(math.Max(-1, math.Min(1, x)))
}

// PortAudioBackend plays through the default portaudio output device.
type PortAudioBackend struct {
	stream *portaudio.Stream
	render RenderFunc
	buf    []float64
}

func NewPortAudioBackend() *PortAudioBackend {
	return &PortAudioBackend{}
}

func (s *PortAudioBackend) Open(ctx context.Context, sampleRate, bufferSize int, render RenderFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	s.render = render
	s.buf = make([]float64, bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(sampleRate), bufferSize, s.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("portaudio: open stream: %w", err)
	}
	s.stream = stream
	return nil
}

func (s *PortAudioBackend) Start() error {
	return s.stream.Start()
}

func (s *PortAudioBackend) Stop() error {
	return s.stream.Stop()
}

func (s *PortAudioBackend) Close() error {
	err := s.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

func (s *PortAudioBackend) process(samples [][]float32) {
	n := len(samples[0])
	if len(s.buf) < n {
		s.buf = make([]float64, n)
	}
	buf := s.buf[:n]
	s.render(buf)
	for i, x := range buf {
		y := clampSample(x)
		for ch := range samples {
			samples[ch][i] = y
		}
	}
}

// NullBackend has no device. Audio is only produced when the caller pulls
// it with Pull, which makes it the backend for offline rendering and tests.
type NullBackend struct {
	mu      sync.Mutex
	render  RenderFunc
	running bool

	// OpenErr, if set, is returned by Open.
	OpenErr error
}

func NewNullBackend() *NullBackend {
	return &NullBackend{}
}

func (b *NullBackend) Open(ctx context.Context, sampleRate, bufferSize int, render RenderFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OpenErr != nil {
		return b.OpenErr
	}
	b.render = render
	return nil
}

func (b *NullBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = true
	return nil
}

func (b *NullBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	return nil
}

func (b *NullBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	b.render = nil
	return nil
}

// Pull renders len(out) samples as the device would. It writes silence when
// the backend is stopped or closed.
func (b *NullBackend) Pull(out []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running || b.render == nil {
		clear(out)
		return
	}
	b.render(out)
}
