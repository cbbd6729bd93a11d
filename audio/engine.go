package audio

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// retriggerGuard is the minimum time between two accepted triggers.
const retriggerGuard = 10 * time.Millisecond

// Engine is the synthesis engine: parameter store, signal graph, envelopes
// and sequencer behind one control surface. Engines are independent of each
// other; create one with New.
type Engine struct {
	cfg     config
	backend Backend
	props   *Props
	seq     *Sequencer
	tap     *tap
	log     *log.Logger

	mu        sync.Mutex // serialises lifecycle transitions
	voice     atomic.Pointer[voice]
	ready     atomic.Bool
	suspended atomic.Bool

	trigMu      sync.Mutex
	lastTrigger time.Time
	accepted    uint64

	onStep atomic.Pointer[func(step int)]
}

// New returns an engine that renders through backend. The engine is inert
// until Initialize succeeds.
func New(backend Backend, opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Engine{
		cfg:     cfg,
		backend: backend,
		props:   newProps(),
		tap:     newTap(cfg.tapSize),
		log:     cfg.logger,
	}
	e.seq = NewSequencer(cfg.clock, e.props.Float(ParamTempo), e.playStep)
	return e
}

// Initialize builds the signal graph, starts the generators and acquires
// the rendering context. A backend failure leaves the engine not ready and
// is returned as an *InitializationError; calling Initialize again retries.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready.Load() {
		return nil
	}
	v := e.voice.Load()
	if v == nil {
		var err error
		v, err = newVoice(float64(e.cfg.sampleRate), e.props, e.cfg.topology, e.cfg.seed)
		if err != nil {
			return &InitializationError{Err: err}
		}
		e.voice.Store(v)
	} else {
		v.start(e.cfg.seed)
	}
	if err := e.backend.Open(ctx, e.cfg.sampleRate, e.cfg.bufferSize, e.Render); err != nil {
		v.stop()
		return &InitializationError{Err: err}
	}
	if err := e.backend.Start(); err != nil {
		v.stop()
		if cerr := e.backend.Close(); cerr != nil {
			e.log.Printf("audio: close backend: %v", cerr)
		}
		return &InitializationError{Err: err}
	}
	e.suspended.Store(false)
	e.ready.Store(true)
	e.log.Printf("audio: engine ready, %d Hz, buffer %d", e.cfg.sampleRate, e.cfg.bufferSize)
	return nil
}

func (e *Engine) IsReady() bool { return e.ready.Load() }

func (e *Engine) SampleRate() int { return e.cfg.sampleRate }

// SetParam validates v against the parameter's domain and stores it. Before
// Initialize it does nothing. Out of range values are clamped with a warning
// or rejected, depending on the engine's policy.
func (e *Engine) SetParam(id ParamID, v Value) error {
	if !id.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownParam, id)
	}
	if !e.ready.Load() {
		return nil
	}
	desc := paramDescs[id]
	nv, clamped, err := desc.normalize(v, e.cfg.policy)
	if err != nil {
		return err
	}
	if clamped {
		e.log.Printf("audio: %s: %v out of range, clamped to %v", desc.name, v, nv)
	}

	switch id {
	case ParamRunStop:
		if nv.Bool() {
			e.StartSequencer()
		} else {
			e.StopSequencer()
		}
		return nil
	case ParamTrigger:
		if nv.Bool() {
			e.TriggerEnvelopes()
		}
		return nil
	case ParamAdvance:
		if nv.Bool() {
			e.AdvanceSequencer()
		}
		return nil
	}

	e.props.set(id, nv)
	switch id {
	case ParamTempo:
		e.seq.SetInterval(StepInterval(nv.Float()))
	case ParamSeqPitchMod:
		e.applyRouting(e.seq.Step())
	}
	return nil
}

// SetParamByName sets a parameter by its schema name. value may be a Value,
// a float, an int or a bool.
func (e *Engine) SetParamByName(name string, value any) error {
	id, err := ParseParamID(name)
	if err != nil {
		return err
	}
	var v Value
	switch x := value.(type) {
	case Value:
		v = x
	case float64:
		v = Float(x)
	case float32:
		v = Float(float64(x))
	case int:
		v = Float(float64(x))
	case int64:
		v = Float(float64(x))
	case bool:
		v = Bool(x)
	default:
		return fmt.Errorf("parameter %s: unsupported value type %T", name, value)
	}
	return e.SetParam(id, v)
}

// Param returns the stored value of a parameter. run_stop reports whether
// the sequencer is running.
func (e *Engine) Param(id ParamID) Value {
	if !id.valid() {
		return Value{}
	}
	if id == ParamRunStop {
		return Value{kind: KindEvent, b: e.seq.Running()}
	}
	return e.props.Get(id)
}

// TriggerEnvelopes fires all envelopes with the current step's velocity.
// Triggers within 10ms of the previous accepted trigger are ignored.
func (e *Engine) TriggerEnvelopes() {
	if !e.ready.Load() {
		return
	}
	e.trigger(e.props.Float(VelocityParam(e.seq.Step())) / 100)
}

func (e *Engine) trigger(velocity float64) bool {
	e.trigMu.Lock()
	defer e.trigMu.Unlock()
	if !e.ready.Load() {
		return false
	}
	now := e.cfg.clock.Now()
	if !e.lastTrigger.IsZero() && now.Sub(e.lastTrigger) < retriggerGuard {
		return false
	}
	ev := event{velocity: velocity, seq: e.accepted + 1}
	if !e.voice.Load().events.push(ev) {
		e.log.Printf("audio: event buffer full, trigger %d dropped", ev.seq)
		return false
	}
	e.lastTrigger = now
	e.accepted++
	return true
}

// TriggerCount returns how many triggers passed the retrigger guard.
func (e *Engine) TriggerCount() uint64 {
	e.trigMu.Lock()
	defer e.trigMu.Unlock()
	return e.accepted
}

func (e *Engine) StartSequencer() {
	if !e.ready.Load() {
		return
	}
	e.seq.Start()
}

// StopSequencer stops the clock. No step notification or trigger from the
// sequencer happens after it returns.
func (e *Engine) StopSequencer() {
	e.seq.Stop()
}

func (e *Engine) AdvanceSequencer() {
	if !e.ready.Load() {
		return
	}
	e.seq.Advance()
}

// SetOnStepChange registers fn to be called with the new step index each
// time a step plays. fn runs on the sequencer's clock goroutine and must not
// start, stop or advance the sequencer itself.
func (e *Engine) SetOnStepChange(fn func(step int)) {
	if fn == nil {
		e.onStep.Store(nil)
		return
	}
	e.onStep.Store(&fn)
}

func (e *Engine) CurrentStep() int { return e.seq.Step() }

func (e *Engine) SequencerRunning() bool { return e.seq.Running() }

func (e *Engine) playStep(step int) {
	e.applyRouting(step)
	e.trigger(e.props.Float(VelocityParam(step)) / 100)
	if fn := e.onStep.Load(); fn != nil {
		(*fn)(step)
	}
}

// applyRouting sets the pitch CV of each oscillator from the given step,
// according to seq_pitch_mod. Oscillators that are not routed get no CV.
func (e *Engine) applyRouting(step int) {
	v := e.voice.Load()
	if v == nil {
		return
	}
	pitch := e.props.Float(PitchParam(step))
	var cv1, cv2 float64
	switch e.props.Get(ParamSeqPitchMod).Index() {
	case 0: // VCO1 & 2
		cv1, cv2 = pitch, pitch
	case 2: // VCO2 only
		cv2 = pitch
	}
	v.setCV(0, cv1)
	v.setCV(1, cv2)
}

// Suspend pauses rendering without tearing anything down.
func (e *Engine) Suspend() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready.Load() || e.suspended.Load() {
		return nil
	}
	e.suspended.Store(true)
	if err := e.backend.Stop(); err != nil {
		return fmt.Errorf("suspend: %w", err)
	}
	return nil
}

func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready.Load() || !e.suspended.Load() {
		return nil
	}
	if err := e.backend.Start(); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	e.suspended.Store(false)
	return nil
}

func (e *Engine) Suspended() bool { return e.suspended.Load() }

// Dispose stops the sequencer and the generators and releases the rendering
// context. It is safe to call more than once; cleanup errors are logged.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready.Load() {
		return
	}
	e.seq.Stop()
	// triggers check ready under trigMu, so none is queued after the drop below
	e.trigMu.Lock()
	e.ready.Store(false)
	e.trigMu.Unlock()
	if !e.suspended.Load() {
		if err := e.backend.Stop(); err != nil {
			e.log.Printf("audio: stop backend: %v", err)
		}
	}
	if err := e.backend.Close(); err != nil {
		e.log.Printf("audio: close backend: %v", err)
	}
	v := e.voice.Load()
	v.stop()
	e.suspended.Store(false)

	e.trigMu.Lock()
	v.events.drop()
	e.lastTrigger = time.Time{}
	e.trigMu.Unlock()
	e.log.Printf("audio: engine disposed")
}

// Render produces the next len(out) samples. Backends call it from the audio
// thread. It writes silence while the engine is not ready or suspended.
func (e *Engine) Render(out []float64) {
	if !e.ready.Load() || e.suspended.Load() {
		clear(out)
		return
	}
	e.voice.Load().process(out)
	e.tap.write(out)
}

// Frequency returns the current frequency of NodeVCO1 or NodeVCO2 in Hz,
// excluding FM.
func (e *Engine) Frequency(n NodeID) float64 {
	v := e.voice.Load()
	if v == nil || !n.isOscillator() {
		return 0
	}
	return v.frequency(int(n - NodeVCO1))
}

// Cutoff returns the filter cutoff used for the last rendered sample.
func (e *Engine) Cutoff() float64 {
	v := e.voice.Load()
	if v == nil {
		return math.NaN()
	}
	return v.currentCutoff()
}

// Snapshot copies the most recent output samples into dst and returns the
// number copied.
func (e *Engine) Snapshot(dst []float64) int {
	return e.tap.snapshot(dst)
}
