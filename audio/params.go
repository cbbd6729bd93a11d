package audio

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// ParamID identifies a synthesis parameter. The set is closed: every
// parameter the engine understands has a constant below.
type ParamID int

const (
	ParamVCO1Frequency ParamID = iota
	ParamVCO2Frequency
	ParamVCO1Wave
	ParamVCO2Wave
	ParamVCO1Level
	ParamVCO2Level
	ParamVCO1EGAmount
	ParamVCO2EGAmount
	ParamFMAmount
	ParamHardSync
	ParamVCODecay
	ParamSeqPitchMod
	ParamNoiseLevel
	ParamVCFCutoff
	ParamVCFResonance
	ParamVCFEGAmount
	ParamVCFMode
	ParamVCFDecay
	ParamNoiseVCFMod
	ParamVCADecay
	ParamVCAAttackMode
	ParamVolume
	ParamTempo
	ParamPitch1
	ParamPitch2
	ParamPitch3
	ParamPitch4
	ParamPitch5
	ParamPitch6
	ParamPitch7
	ParamPitch8
	ParamVelocity1
	ParamVelocity2
	ParamVelocity3
	ParamVelocity4
	ParamVelocity5
	ParamVelocity6
	ParamVelocity7
	ParamVelocity8
	ParamRunStop
	ParamTrigger
	ParamAdvance

	numParams
)

// PitchParam returns the pitch parameter of the given step (0-7).
func PitchParam(step int) ParamID { return ParamPitch1 + ParamID(step%NumSteps) }

// VelocityParam returns the velocity parameter of the given step (0-7).
func VelocityParam(step int) ParamID { return ParamVelocity1 + ParamID(step%NumSteps) }

func (id ParamID) valid() bool { return id >= 0 && id < numParams }

func (id ParamID) String() string {
	if !id.valid() {
		return "param(" + strconv.Itoa(int(id)) + ")"
	}
	return paramDescs[id].name
}

// Kind is the value type a parameter accepts.
type Kind int

const (
	KindContinuous Kind = iota
	KindDiscrete
	KindBool
	KindEvent
)

// Value is a tagged parameter value: a float, a bool or a discrete option
// index.
type Value struct {
	kind Kind
	f    float64
	b    bool
	i    int
}

func Float(f float64) Value { return Value{kind: KindContinuous, f: f} }
func Index(i int) Value     { return Value{kind: KindDiscrete, i: i} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

// Float returns the value as a float regardless of its tag; bools map to 0 or 1.
func (v Value) Float() float64 {
	switch v.kind {
	case KindDiscrete:
		return float64(v.i)
	case KindBool, KindEvent:
		if v.b {
			return 1
		}
		return 0
	default:
		return v.f
	}
}

func (v Value) Index() int {
	if v.kind == KindDiscrete {
		return v.i
	}
	return int(math.Round(v.Float()))
}

func (v Value) Bool() bool {
	if v.kind == KindBool || v.kind == KindEvent {
		return v.b
	}
	return v.Float() != 0
}

func (v Value) String() string {
	switch v.kind {
	case KindDiscrete:
		return strconv.Itoa(v.i)
	case KindBool, KindEvent:
		return strconv.FormatBool(v.b)
	default:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
}

// Policy decides what happens to values outside a parameter's domain.
type Policy int

const (
	// ClampPolicy stores the nearest in-range value and logs a warning.
	ClampPolicy Policy = iota
	// RejectPolicy leaves the store untouched and returns an
	// *InvalidParameterError.
	RejectPolicy
)

type paramDesc struct {
	name     string
	kind     Kind
	min, max float64
	def      float64
	unit     string
}

var paramDescs = [numParams]paramDesc{
	ParamVCO1Frequency: {name: "vco1_frequency", kind: KindContinuous, min: -5, max: 5, unit: "oct"},
	ParamVCO2Frequency: {name: "vco2_frequency", kind: KindContinuous, min: -5, max: 5, unit: "oct"},
	ParamVCO1Wave:      {name: "vco1_wave", kind: KindDiscrete, min: 0, max: 1},
	ParamVCO2Wave:      {name: "vco2_wave", kind: KindDiscrete, min: 0, max: 1},
	ParamVCO1Level:     {name: "vco1_level", kind: KindContinuous, min: 0, max: 100, def: 80, unit: "%"},
	ParamVCO2Level:     {name: "vco2_level", kind: KindContinuous, min: 0, max: 100, def: 0, unit: "%"},
	ParamVCO1EGAmount:  {name: "vco1_eg_amount", kind: KindContinuous, min: -100, max: 100, unit: "%"},
	ParamVCO2EGAmount:  {name: "vco2_eg_amount", kind: KindContinuous, min: -100, max: 100, unit: "%"},
	ParamFMAmount:      {name: "fm_amount", kind: KindContinuous, min: 0, max: 100, unit: "%"},
	ParamHardSync:      {name: "hard_sync", kind: KindBool, min: 0, max: 1},
	ParamVCODecay:      {name: "vco_decay", kind: KindContinuous, min: 10, max: 10000, def: 200, unit: "ms"},
	ParamSeqPitchMod:   {name: "seq_pitch_mod", kind: KindDiscrete, min: 0, max: 2},
	ParamNoiseLevel:    {name: "noise_level", kind: KindContinuous, min: 0, max: 100, unit: "%"},
	ParamVCFCutoff:     {name: "vcf_cutoff", kind: KindContinuous, min: minCutoff, max: maxCutoff, def: 5000, unit: "Hz"},
	ParamVCFResonance:  {name: "vcf_resonance", kind: KindContinuous, min: 0, max: 100, unit: "%"},
	ParamVCFEGAmount:   {name: "vcf_eg_amount", kind: KindContinuous, min: -100, max: 100, unit: "%"},
	ParamVCFMode:       {name: "vcf_mode", kind: KindDiscrete, min: 0, max: 1, def: 1},
	ParamVCFDecay:      {name: "vcf_decay", kind: KindContinuous, min: 10, max: 10000, def: 200, unit: "ms"},
	ParamNoiseVCFMod:   {name: "noise_vcf_mod", kind: KindContinuous, min: 0, max: 100, unit: "%"},
	ParamVCADecay:      {name: "vca_decay", kind: KindContinuous, min: 10, max: 10000, def: 300, unit: "ms"},
	ParamVCAAttackMode: {name: "vca_attack_mode", kind: KindDiscrete, min: 0, max: 1},
	ParamVolume:        {name: "volume", kind: KindContinuous, min: 0, max: 100, def: 70, unit: "%"},
	ParamTempo:         {name: "tempo", kind: KindContinuous, min: 10, max: 10000, def: 120, unit: "BPM"},
	ParamRunStop:       {name: "run_stop", kind: KindEvent, min: 0, max: 1},
	ParamTrigger:       {name: "trigger", kind: KindEvent, min: 0, max: 1},
	ParamAdvance:       {name: "advance", kind: KindEvent, min: 0, max: 1},
}

var paramsByName = make(map[string]ParamID, numParams)

func init() {
	for n := 0; n < NumSteps; n++ {
		paramDescs[PitchParam(n)] = paramDesc{
			name: "pitch_" + strconv.Itoa(n+1), kind: KindContinuous, min: -5, max: 5, unit: "oct",
		}
		paramDescs[VelocityParam(n)] = paramDesc{
			name: "velocity_" + strconv.Itoa(n+1), kind: KindContinuous, min: 0, max: 100, def: 100, unit: "%",
		}
	}
	for id := ParamID(0); id < numParams; id++ {
		paramsByName[paramDescs[id].name] = id
	}
}

// ParseParamID looks up a parameter by its schema name.
func ParseParamID(name string) (ParamID, error) {
	if id, ok := paramsByName[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownParam, name)
}

// ParamInfo describes a parameter's domain for control surfaces.
type ParamInfo struct {
	ID       ParamID
	Name     string
	Kind     Kind
	Min, Max float64
	Default  float64
	Unit     string
}

// Params lists every parameter in ID order.
func Params() []ParamInfo {
	infos := make([]ParamInfo, 0, numParams)
	for id := ParamID(0); id < numParams; id++ {
		s := paramDescs[id]
		infos = append(infos, ParamInfo{
			ID: id, Name: s.name, Kind: s.kind, Min: s.min, Max: s.max, Default: s.def, Unit: s.unit,
		})
	}
	return infos
}

func (s paramDesc) defaultValue() Value {
	switch s.kind {
	case KindDiscrete:
		return Index(int(s.def))
	case KindBool:
		return Bool(s.def != 0)
	case KindEvent:
		return Value{kind: KindEvent}
	default:
		return Float(s.def)
	}
}

// normalize converts v to the parameter's kind and checks its domain. The
// returned flag reports whether the value was clamped.
func (s paramDesc) normalize(v Value, policy Policy) (Value, bool, error) {
	f := v.Float()
	if math.IsNaN(f) {
		return Value{}, false, &InvalidParameterError{Name: s.name, Value: f, Min: s.min, Max: s.max}
	}
	if s.kind == KindDiscrete && v.kind == KindContinuous && f != math.Trunc(f) {
		if policy == RejectPolicy {
			return Value{}, false, &InvalidParameterError{Name: s.name, Value: f, Min: s.min, Max: s.max}
		}
		f = math.Round(f)
	}
	clamped := false
	if f < s.min || f > s.max {
		if policy == RejectPolicy {
			return Value{}, false, &InvalidParameterError{Name: s.name, Value: f, Min: s.min, Max: s.max}
		}
		f = math.Max(s.min, math.Min(s.max, f))
		clamped = true
	}
	switch s.kind {
	case KindDiscrete:
		return Index(int(math.Round(f))), clamped, nil
	case KindBool:
		return Bool(f >= 0.5), clamped, nil
	case KindEvent:
		return Value{kind: KindEvent, b: f >= 0.5}, clamped, nil
	default:
		return Float(f), clamped, nil
	}
}

// Props stores the current value of every parameter. Each entry is an
// atomic.Value so the render callback can read it without locks while the
// control side writes.
type Props struct {
	values [numParams]atomic.Value
}

func newProps() *Props {
	p := &Props{}
	for id := ParamID(0); id < numParams; id++ {
		p.values[id].Store(paramDescs[id].defaultValue())
	}
	return p
}

func (p *Props) Get(id ParamID) Value {
	return p.values[id].Load().(Value)
}

func (p *Props) Float(id ParamID) float64 {
	return p.Get(id).Float()
}

func (p *Props) set(id ParamID, v Value) {
	p.values[id].Store(v)
}
