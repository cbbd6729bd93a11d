package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrdg/semimod/audio"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	var (
		backendName = flag.String("backend", "portaudio", "audio output: portaudio, oto, beep or null")
		sampleRate  = flag.Int("rate", audio.DefaultSampleRate, "sample rate in Hz")
		bufferSize  = flag.Int("buffer", audio.DefaultBufferSize, "buffer size in frames")
		bpm         = flag.Float64("bpm", 120, "sequencer tempo")
		preset      = flag.String("preset", "", "preset to load at start-up")
		script      = flag.String("run", "", "file with commands to run at start-up")
		strict      = flag.Bool("strict", false, "reject out of range values instead of clamping them")
		midiDevice  = flag.Int("midi", -1, "portmidi input device id, -1 disables MIDI")
		bounce      = flag.String("bounce", "", "render to this wav file and exit")
		seconds     = flag.Float64("seconds", 4, "length of the -bounce output in seconds")
	)
	flag.Parse()

	opts := []audio.Option{
		audio.WithSampleRate(*sampleRate),
		audio.WithBufferSize(*bufferSize),
	}
	if *strict {
		opts = append(opts, audio.WithPolicy(audio.RejectPolicy))
	}

	if *bounce != "" {
		if err := bounceOffline(*bounce, *seconds, *sampleRate, *bpm, *preset, *script, opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := run(ctx, liveOptions{
		backend:    *backendName,
		bpm:        *bpm,
		preset:     *preset,
		script:     *script,
		midiDevice: *midiDevice,
	}, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type liveOptions struct {
	backend    string
	bpm        float64
	preset     string
	script     string
	midiDevice int
}

// run plays through a real backend until the REPL or the piped script ends.
// The engine is disposed on every return path.
func run(ctx context.Context, lo liveOptions, opts []audio.Option) error {
	backend, err := newBackend(lo.backend)
	if err != nil {
		return err
	}
	engine := audio.New(backend, opts...)
	if err := engine.Initialize(ctx); err != nil {
		return err
	}
	defer engine.Dispose()

	env := newEnv(engine, os.Stdout)
	if err := setup(env, lo.bpm, lo.preset, lo.script); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	if lo.midiDevice >= 0 {
		mc, err := openMIDI(lo.midiDevice, engine)
		if err != nil {
			return err
		}
		g.Go(func() error { return mc.run(ctx) })
	}
	g.Go(func() error {
		defer cancel()
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return repl(ctx, env)
		}
		return env.runScript(os.Stdin)
	})
	return g.Wait()
}

func newBackend(name string) (audio.Backend, error) {
	switch name {
	case "portaudio":
		return audio.NewPortAudioBackend(), nil
	case "oto":
		return audio.NewOtoBackend(), nil
	case "beep":
		return audio.NewBeepBackend(), nil
	case "null":
		return audio.NewNullBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
}

// setup applies the start-up flags in order: preset, tempo, then the script.
func setup(env *env, bpm float64, preset, script string) error {
	if preset != "" {
		if err := audio.LoadPreset(preset, env.engine); err != nil {
			return err
		}
	}
	if err := env.engine.SetParam(audio.ParamTempo, audio.Float(bpm)); err != nil {
		return err
	}
	if script == "" {
		return nil
	}
	f, err := os.Open(script)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := env.runScript(f); err != nil {
		return fmt.Errorf("%s: %w", script, err)
	}
	return nil
}

// bounceOffline renders the start-up state to a wav file without opening an
// audio device. A script that starts the sequencer plays the pattern.
func bounceOffline(path string, seconds float64, sampleRate int, bpm float64, preset, script string, opts []audio.Option) error {
	o, err := newOffline(sampleRate, opts...)
	if err != nil {
		return err
	}
	defer o.close()
	if err := setup(newEnv(o.engine, io.Discard), bpm, preset, script); err != nil {
		return err
	}
	if !o.engine.SequencerRunning() {
		o.engine.TriggerEnvelopes()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := o.writeWav(f, seconds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
