package audio

import (
	"fmt"
	"sort"
)

// Device is anything that accepts parameter updates.
type Device interface {
	SetParam(id ParamID, v Value) error
}

type preset map[ParamID]float64

var presets = map[string]preset{
	"kick": {
		ParamVCO1Frequency: -1,
		ParamVCO1Wave:      1,
		ParamVCO1Level:     100,
		ParamVCO2Level:     0,
		ParamNoiseLevel:    0,
		ParamVCO1EGAmount:  60,
		ParamVCODecay:      60,
		ParamVCFCutoff:     800,
		ParamVCFMode:       1,
		ParamVCFResonance:  10,
		ParamVCFEGAmount:   20,
		ParamVCFDecay:      80,
		ParamVCADecay:      400,
		ParamVCAAttackMode: 0,
		ParamSeqPitchMod:   1,
	},
	"tom": {
		ParamVCO1Frequency: 0,
		ParamVCO2Frequency: 0.5,
		ParamVCO1Wave:      1,
		ParamVCO2Wave:      1,
		ParamVCO1Level:     80,
		ParamVCO2Level:     50,
		ParamVCO1EGAmount:  30,
		ParamVCO2EGAmount:  30,
		ParamVCODecay:      150,
		ParamVCFCutoff:     2000,
		ParamVCFMode:       1,
		ParamVCFDecay:      200,
		ParamVCADecay:      500,
		ParamSeqPitchMod:   0,
	},
	"snare": {
		ParamVCO1Frequency: 0.5,
		ParamVCO1Wave:      1,
		ParamVCO1Level:     40,
		ParamVCO2Level:     0,
		ParamNoiseLevel:    90,
		ParamVCO1EGAmount:  20,
		ParamVCODecay:      40,
		ParamVCFCutoff:     1200,
		ParamVCFMode:       0,
		ParamVCFResonance:  20,
		ParamVCFDecay:      100,
		ParamVCADecay:      180,
		ParamSeqPitchMod:   1,
	},
	"zap": {
		ParamVCO1Frequency: 1,
		ParamVCO2Frequency: 2,
		ParamVCO1Level:     60,
		ParamVCO2Level:     60,
		ParamFMAmount:      40,
		ParamHardSync:      1,
		ParamVCO1EGAmount:  100,
		ParamVCO2EGAmount:  -60,
		ParamVCODecay:      120,
		ParamVCFCutoff:     3000,
		ParamVCFMode:       1,
		ParamVCFResonance:  60,
		ParamVCFEGAmount:   70,
		ParamVCFDecay:      120,
		ParamVCADecay:      250,
		ParamSeqPitchMod:   0,
	},
}

// defaults is the "init" preset: every parameter at its default value.
func defaults() preset {
	p := preset{}
	for id := ParamID(0); id < numParams; id++ {
		if paramDescs[id].kind != KindEvent {
			p[id] = paramDescs[id].def
		}
	}
	return p
}

// PresetNames lists the available presets in alphabetical order.
func PresetNames() []string {
	names := []string{"init"}
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPreset applies a preset to d in parameter order.
func LoadPreset(name string, d Device) error {
	p, ok := presets[name]
	if name == "init" {
		p, ok = defaults(), true
	}
	if !ok {
		return fmt.Errorf("unknown preset: %v", name)
	}
	ids := make([]ParamID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := d.SetParam(id, Float(p[id])); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}
	return nil
}
