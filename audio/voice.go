package audio

import (
	"math"
	"sync/atomic"
)

const (
	blockSize = 16 // parameter updates and triggers are picked up once per block

	DefaultSampleRate = 44100
	DefaultBufferSize = 512

	fastAttack = 0.001
	slowAttack = 0.050
)

// voice is the render side of the engine: the oscillators, noise, filter and
// envelopes wired together by the signal graph. All of its fields except the
// atomics are owned by the render callback.
type voice struct {
	sampleRate float64
	props      *Props
	events     *eventBuffer

	vco1, vco2 osc
	noise      *noise
	vcf        filter
	vcfMode    filterMode

	freq       [2]smoother // Hz, before the pitch envelope
	level      [2]smoother
	noiseLevel smoother
	fmAmount   smoother
	cutoff     smoother
	resonance  smoother
	volume     smoother

	pitchEnv  *envelope
	filterEnv *envelope
	ampEnv    *envelope

	pitchRatio  [2]float64 // pitch envelope jump relative to the base frequency
	filterDepth float64    // filter envelope jump in Hz

	// per sample values read by the graph processors
	oscFreq   [2]float64
	gain      [2]float64
	noiseGain float64
	fmDepth   float64
	amp       float64
	master    float64

	g   *graph
	pos uint64 // rendered samples

	// sequencer pitch CV in octaves, written by the control side
	cv [2]atomic.Uint64

	// last rendered values, read by observers
	freqOut   [2]atomic.Uint64
	cutoffOut atomic.Uint64
	triggers  atomic.Uint64
}

func newVoice(sampleRate float64, props *Props, topology Topology, seed int64) (*voice, error) {
	v := &voice{
		sampleRate: sampleRate,
		props:      props,
		events:     newEventBuffer(64),
		vco1:       osc{running: true},
		vco2:       osc{running: true},
		noise:      newNoise(seed),
		pitchEnv:   newEnvelope(sampleRate),
		filterEnv:  newEnvelope(sampleRate),
		ampEnv:     newEnvelope(sampleRate),
	}
	v.noise.running = true
	for i := range v.freq {
		v.freq[i] = newSmoother(sampleRate, v.targetFrequency(i))
	}
	v.level[0] = newSmoother(sampleRate, props.Float(ParamVCO1Level))
	v.level[1] = newSmoother(sampleRate, props.Float(ParamVCO2Level))
	v.noiseLevel = newSmoother(sampleRate, props.Float(ParamNoiseLevel))
	v.fmAmount = newSmoother(sampleRate, props.Float(ParamFMAmount))
	v.cutoff = newSmoother(sampleRate, props.Float(ParamVCFCutoff))
	v.resonance = newSmoother(sampleRate, props.Float(ParamVCFResonance))
	v.volume = newSmoother(sampleRate, props.Float(ParamVolume))

	var procs [numNodes]processor
	procs[NodeVCO1] = processorFunc(func(_, fm float64) float64 {
		return v.vco1.tick(v.oscFreq[0]+fm, v.sampleRate)
	})
	procs[NodeVCO2] = processorFunc(func(_, fm float64) float64 {
		return v.vco2.tick(v.oscFreq[1]+fm, v.sampleRate)
	})
	procs[NodeNoise] = processorFunc(func(_, _ float64) float64 { return v.noise.tick() })
	procs[NodeVCO1Level] = processorFunc(func(in, _ float64) float64 { return in * v.gain[0] })
	procs[NodeVCO2Level] = processorFunc(func(in, _ float64) float64 { return in * v.gain[1] })
	procs[NodeNoiseLevel] = processorFunc(func(in, _ float64) float64 { return in * v.noiseGain })
	procs[NodeFMDepth] = processorFunc(func(in, _ float64) float64 { return in * v.fmDepth })
	procs[NodeMixer] = processorFunc(func(in, _ float64) float64 { return in })
	procs[NodeFilter] = processorFunc(func(in, _ float64) float64 { return v.vcf.process(in) })
	procs[NodeVCA] = processorFunc(func(in, _ float64) float64 { return in * v.amp })
	procs[NodeMaster] = processorFunc(func(in, _ float64) float64 { return in * v.master })
	procs[NodeOutput] = processorFunc(func(in, _ float64) float64 { return in })

	g, err := newGraph(topology, procs, map[NodeID]*osc{NodeVCO1: &v.vco1, NodeVCO2: &v.vco2})
	if err != nil {
		return nil, err
	}
	v.g = g
	v.applyParams()
	for i := range v.freq {
		v.oscFreq[i] = v.freq[i].value
		v.freqOut[i].Store(math.Float64bits(v.oscFreq[i]))
	}
	v.cutoffOut.Store(math.Float64bits(v.cutoff.value))
	return v, nil
}

func (v *voice) targetFrequency(n int) float64 {
	oct := v.props.Float(ParamVCO1Frequency + ParamID(n))
	cv := math.Float64frombits(v.cv[n].Load())
	return OscFrequency(oct + cv)
}

func (v *voice) setCV(n int, octaves float64) {
	v.cv[n].Store(math.Float64bits(octaves))
}

// applyParams copies the parameter store into the smoothers and switches.
func (v *voice) applyParams() {
	p := v.props
	for i := range v.freq {
		v.freq[i].set(v.targetFrequency(i))
	}
	v.level[0].set(p.Float(ParamVCO1Level))
	v.level[1].set(p.Float(ParamVCO2Level))
	v.noiseLevel.set(p.Float(ParamNoiseLevel))
	v.fmAmount.set(p.Float(ParamFMAmount))
	v.cutoff.set(p.Float(ParamVCFCutoff))
	v.resonance.set(p.Float(ParamVCFResonance))
	v.volume.set(p.Float(ParamVolume))

	v.vco1.wave = waveform(p.Get(ParamVCO1Wave).Index())
	v.vco2.wave = waveform(p.Get(ParamVCO2Wave).Index())
	v.vco2.syncOn = p.Get(ParamHardSync).Bool()
	v.vcfMode = filterMode(p.Get(ParamVCFMode).Index())
}

// trigger starts all three envelopes. Amounts and decay times are sampled at
// trigger time.
func (v *voice) trigger(velocity float64) {
	p := v.props
	for i := range v.pitchRatio {
		amount := p.Float(ParamVCO1EGAmount+ParamID(i)) / 100
		v.pitchRatio[i] = pitchRatio(v.freq[i].value, amount, velocity)
	}
	v.pitchEnv.trigger(v.pos, 1, 0, p.Float(ParamVCODecay)/1000)

	base := v.cutoff.value
	v.filterDepth = filterModDepth(base, p.Float(ParamVCFEGAmount)/100) * velocity
	v.filterEnv.trigger(v.pos, 1, 0, p.Float(ParamVCFDecay)/1000)

	attack := fastAttack
	if p.Get(ParamVCAAttackMode).Index() == 1 {
		attack = slowAttack
	}
	v.ampEnv.trigger(v.pos, velocity, attack, p.Float(ParamVCADecay)/1000)
	v.triggers.Add(1)
}

func (v *voice) process(buf []float64) {
	for n := 0; n < len(buf); n += blockSize {
		v.events.iter(func(ev event) {
			v.trigger(ev.velocity)
		})
		v.applyParams()
		end := min(n+blockSize, len(buf))
		for i := n; i < end; i++ {
			buf[i] = v.tick()
		}
	}
	v.freqOut[0].Store(math.Float64bits(v.oscFreq[0]))
	v.freqOut[1].Store(math.Float64bits(v.oscFreq[1]))
	v.cutoffOut.Store(math.Float64bits(v.vcf.freq))
}

func (v *voice) tick() float64 {
	pe := v.pitchEnv.next()
	for i := range v.oscFreq {
		v.oscFreq[i] = v.freq[i].next() * (1 + v.pitchRatio[i]*pe)
		v.gain[i] = v.level[i].next() / 100
	}
	v.noiseGain = v.noiseLevel.next() / 100
	v.fmDepth = v.fmAmount.next() / 100 * maxFMDepth

	fe := v.filterEnv.next()
	cutoff := clampCutoff(v.cutoff.next() + v.filterDepth*fe)
	q := v.resonance.next() / 100 * maxQ
	v.vcf.calculateCoefficients(v.vcfMode, cutoff, q, v.sampleRate)

	v.amp = v.ampEnv.next()
	v.master = v.volume.next() / 100

	v.pos++
	return v.g.tick()
}

// stop silences the generators. Render output is zero until start.
func (v *voice) stop() {
	v.vco1.running = false
	v.vco2.running = false
	if v.noise != nil && v.noise.running {
		v.noise.running = false
	}
}

// start resumes the oscillators and replaces the noise source if the old
// one was stopped. Envelopes, filter memory and pending triggers from the
// previous run are cleared, so nothing sounds until the next trigger.
func (v *voice) start(seed int64) {
	v.reset()
	v.vco1.running = true
	v.vco2.running = true
	if v.noise == nil || !v.noise.running {
		v.noise = newNoise(seed)
		v.noise.running = true
	}
}

// reset clears everything a previous run left behind. Only safe while no
// render callback runs.
func (v *voice) reset() {
	v.pitchEnv.reset()
	v.filterEnv.reset()
	v.ampEnv.reset()
	v.pitchRatio = [2]float64{}
	v.filterDepth = 0
	v.amp = 0
	v.vcf.reset()
	v.vco1.phase, v.vco2.phase = 0, 0
	v.events.drop()
}

func (v *voice) frequency(n int) float64 {
	return math.Float64frombits(v.freqOut[n].Load())
}

func (v *voice) currentCutoff() float64 {
	return math.Float64frombits(v.cutoffOut.Load())
}
