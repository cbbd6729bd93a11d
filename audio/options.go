package audio

import (
	"log"
)

type config struct {
	sampleRate int
	bufferSize int
	tapSize    int
	clock      Clock
	policy     Policy
	logger     *log.Logger
	seed       int64
	topology   Topology
}

func defaultConfig() config {
	return config{
		sampleRate: DefaultSampleRate,
		bufferSize: DefaultBufferSize,
		tapSize:    8192,
		clock:      SystemClock(),
		policy:     ClampPolicy,
		logger:     log.Default(),
		seed:       1,
		topology:   DefaultTopology(),
	}
}

// Option configures an Engine.
type Option func(*config)

func WithSampleRate(sr int) Option {
	return func(c *config) {
		if sr > 0 {
			c.sampleRate = sr
		}
	}
}

func WithBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithTapSize sets how many recent output samples Snapshot can return.
func WithTapSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.tapSize = n
		}
	}
}

// WithClock replaces the wall clock used by the sequencer and the retrigger
// guard.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(c *config) { c.policy = p }
}

func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSeed seeds the noise source.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

func WithTopology(t Topology) Option {
	return func(c *config) { c.topology = t }
}
