package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process. It is created on first use and kept
// for the lifetime of the program.
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
)

func otoContext(ctx context.Context, sampleRate, bufferSize int) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()
	if otoCtx != nil {
		if otoRate != sampleRate {
			return nil, fmt.Errorf("oto: context already running at %d Hz", otoRate)
		}
		return otoCtx, nil
	}
	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferSize) * time.Second / time.Duration(sampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	otoCtx, otoRate = c, sampleRate
	return c, nil
}

// OtoBackend plays through an oto player. Oto pulls samples through Read on
// its own goroutine.
type OtoBackend struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	render RenderFunc
	buf    []float64
}

func NewOtoBackend() *OtoBackend {
	return &OtoBackend{}
}

func (b *OtoBackend) Open(ctx context.Context, sampleRate, bufferSize int, render RenderFunc) error {
	c, err := otoContext(ctx, sampleRate, bufferSize)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctx = c
	b.render = render
	b.buf = make([]float64, bufferSize)
	b.player = c.NewPlayer(b)
	b.player.SetBufferSize(bufferSize * 4)
	return nil
}

func (b *OtoBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return fmt.Errorf("oto: backend not open")
	}
	if err := b.ctx.Resume(); err != nil {
		return fmt.Errorf("oto: resume: %w", err)
	}
	b.player.Play()
	return nil
}

// Stop pauses the player and suspends the device context.
func (b *OtoBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return nil
	}
	b.player.Pause()
	if err := b.ctx.Suspend(); err != nil {
		return fmt.Errorf("oto: suspend: %w", err)
	}
	return nil
}

func (b *OtoBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return err
}

// Read implements io.Reader for the oto player, encoding rendered samples as
// little endian float32.
func (b *OtoBackend) Read(p []byte) (int, error) {
	n := len(p) / 4
	if len(b.buf) < n {
		b.buf = make([]float64, n)
	}
	buf := b.buf[:n]
	b.render(buf)
	for i, x := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(clampSample(x)))
	}
	return n * 4, nil
}
