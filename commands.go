package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrdg/semimod/analysis"
	"github.com/mrdg/semimod/audio"
	"github.com/mrdg/semimod/dub"
)

type command struct {
	name  string
	run   func(*env, []dub.Node) (dub.Node, error)
	arity int // -n means len(args) must be >= n
}

var commands []command

func init() {
	commands = []command{
		{"set", setCommand, 2},
		{"get", getCommand, 1},
		{"params", paramsCommand, 0},
		{"start", transport((*audio.Engine).StartSequencer), 0},
		{"stop", transport((*audio.Engine).StopSequencer), 0},
		{"trigger", transport((*audio.Engine).TriggerEnvelopes), 0},
		{"advance", transport((*audio.Engine).AdvanceSequencer), 0},
		{"steps", stepsCommand, 3},
		{"show", showCommand, 0},
		{"watch", watchCommand, 1},
		{"preset", presetCommand, 1},
		{"presets", presetsCommand, 0},
		{"probe", probeCommand, 0},
		{"bounce", bounceCommand, 2},
		{"suspend", suspendCommand, 0},
		{"resume", resumeCommand, 0},
		{"help", helpCommand, 0},
	}
}

// options names the choices of discrete parameters.
var options = map[audio.ParamID][]string{
	audio.ParamVCO1Wave:      {"square", "triangle"},
	audio.ParamVCO2Wave:      {"square", "triangle"},
	audio.ParamSeqPitchMod:   {"both", "none", "vco2"},
	audio.ParamVCFMode:       {"highpass", "lowpass"},
	audio.ParamVCAAttackMode: {"fast", "slow"},
}

func paramInfo(name string) (audio.ParamInfo, error) {
	id, err := audio.ParseParamID(name)
	if err != nil {
		return audio.ParamInfo{}, err
	}
	return audio.Params()[id], nil
}

func paramValue(info audio.ParamInfo, arg dub.Node) (audio.Value, error) {
	switch v := arg.(type) {
	case dub.Int:
		return audio.Float(float64(v)), nil
	case dub.Float:
		return audio.Float(float64(v)), nil
	case dub.Bool:
		return audio.Bool(bool(v)), nil
	case dub.Identifier:
		return optionValue(info, string(v))
	case dub.String:
		return optionValue(info, string(v))
	default:
		return audio.Value{}, fmt.Errorf("unsupported value for %s: %v", info.Name, v)
	}
}

func optionValue(info audio.ParamInfo, name string) (audio.Value, error) {
	for i, opt := range options[info.ID] {
		if opt == name {
			return audio.Index(i), nil
		}
	}
	if opts, ok := options[info.ID]; ok {
		return audio.Value{}, fmt.Errorf("%s: unknown option %q, want one of %s",
			info.Name, name, strings.Join(opts, ", "))
	}
	return audio.Value{}, fmt.Errorf("%s: expected a number", info.Name)
}

func formatParam(info audio.ParamInfo, v audio.Value) string {
	if opts, ok := options[info.ID]; ok {
		if i := v.Index(); i >= 0 && i < len(opts) {
			return opts[i]
		}
	}
	if info.Unit == "" {
		return v.String()
	}
	return v.String() + " " + info.Unit
}

func setCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args[:1], &name); err != nil {
		return nil, err
	}
	info, err := paramInfo(name)
	if err != nil {
		return nil, err
	}
	v, err := paramValue(info, args[1])
	if err != nil {
		return nil, err
	}
	return nil, env.engine.SetParam(info.ID, v)
}

func getCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return nil, err
	}
	info, err := paramInfo(name)
	if err != nil {
		return nil, err
	}
	return dub.String(formatParam(info, env.engine.Param(info.ID))), nil
}

func paramsCommand(env *env, args []dub.Node) (dub.Node, error) {
	for _, info := range audio.Params() {
		if info.Kind == audio.KindEvent {
			continue
		}
		value := formatParam(info, env.engine.Param(info.ID))
		fmt.Fprintf(env.out, "%s %s\n", colorize(fmt.Sprintf("%-16s", info.Name), colorBlue), value)
	}
	return nil, nil
}

func transport(f func(*audio.Engine)) func(*env, []dub.Node) (dub.Node, error) {
	return func(env *env, args []dub.Node) (dub.Node, error) {
		if !env.engine.IsReady() {
			return nil, errors.New("engine is not running")
		}
		f(env.engine)
		return nil, nil
	}
}

// stepsCommand sets the pitch or velocity of the matched steps, e.g.
// steps '1,5 pitch 0.5
func stepsCommand(env *env, args []dub.Node) (dub.Node, error) {
	var (
		match dub.MatchExpr
		field string
		value float64
	)
	if err := readArgs(args, &match, &field, &value); err != nil {
		return nil, err
	}
	var param func(int) audio.ParamID
	switch field {
	case "pitch":
		param = audio.PitchParam
	case "velocity":
		param = audio.VelocityParam
	default:
		return nil, fmt.Errorf("unknown step field: %s", field)
	}
	steps, err := dub.EvalMatchExpr(match, audio.NumSteps)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		if err := env.engine.SetParam(param(step), audio.Float(value)); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func showCommand(env *env, args []dub.Node) (dub.Node, error) {
	renderSteps(env.out, env.engine, env.engine.CurrentStep())
	return nil, nil
}

func watchCommand(env *env, args []dub.Node) (dub.Node, error) {
	var on bool
	if err := readArgs(args, &on); err != nil {
		return nil, err
	}
	env.watch.Store(on)
	return nil, nil
}

func presetCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return nil, err
	}
	return nil, audio.LoadPreset(name, env.engine)
}

func presetsCommand(env *env, args []dub.Node) (dub.Node, error) {
	return dub.String(strings.Join(audio.PresetNames(), " ")), nil
}

// probeCommand measures the most recent output.
func probeCommand(env *env, args []dub.Node) (dub.Node, error) {
	buf := make([]float64, 4096)
	n := env.engine.Snapshot(buf)
	buf = buf[:n]
	sr := float64(env.engine.SampleRate())
	return dub.String(fmt.Sprintf(
		"pitch %.1f Hz, rms %.3f, peak %.3f, vco1 %.1f Hz, vco2 %.1f Hz, cutoff %.0f Hz",
		analysis.DominantFrequency(buf, sr), analysis.RMS(buf), analysis.Peak(buf),
		env.engine.Frequency(audio.NodeVCO1), env.engine.Frequency(audio.NodeVCO2),
		env.engine.Cutoff(),
	)), nil
}

func bounceCommand(env *env, args []dub.Node) (dub.Node, error) {
	var (
		file    string
		seconds float64
	)
	if err := readArgs(args, &file, &seconds); err != nil {
		return nil, err
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("length must be positive: %v", seconds)
	}
	if err := bounceFile(file, env.engine, seconds); err != nil {
		return nil, err
	}
	return dub.String("wrote " + file), nil
}

func suspendCommand(env *env, args []dub.Node) (dub.Node, error) {
	return nil, env.engine.Suspend()
}

func resumeCommand(env *env, args []dub.Node) (dub.Node, error) {
	return nil, env.engine.Resume()
}

func helpCommand(env *env, args []dub.Node) (dub.Node, error) {
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.name)
	}
	return dub.String(strings.Join(names, " ")), nil
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch v := arg.(type) {
			case dub.Int:
				*p = float64(v)
			case dub.Float:
				*p = float64(v)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(n)
		case *bool:
			b, ok := arg.(dub.Bool)
			if !ok {
				return fmt.Errorf("argument error: expected on or off")
			}
			*p = bool(b)
		case *dub.MatchExpr:
			m, ok := arg.(dub.MatchExpr)
			if !ok {
				return fmt.Errorf("argument error: expected a step selection")
			}
			*p = m
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
