package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/chzyer/readline"
	"github.com/mrdg/semimod/audio"
	"github.com/mrdg/semimod/dub"
)

type env struct {
	engine *audio.Engine
	out    io.Writer
	watch  atomic.Bool
}

func newEnv(engine *audio.Engine, out io.Writer) *env {
	e := &env{engine: engine, out: out}
	engine.SetOnStepChange(e.stepChanged)
	return e
}

func (e *env) stepChanged(step int) {
	if e.watch.Load() {
		renderSteps(e.out, e.engine, step)
	}
}

func (e *env) eval(input string) (dub.Node, error) {
	command, err := dub.Parse(input)
	if err != nil {
		return nil, err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return nil, fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return nil, fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("unknown command: %s", name)
}

// exec evaluates one line and prints its result. Blank lines and lines
// starting with # are skipped.
func (e *env) exec(line string) error {
	line = strings.TrimSpace(line)
	if len(line) == 0 || strings.HasPrefix(line, "#") {
		return nil
	}
	result, err := e.eval(line)
	if err != nil {
		return err
	}
	if result != nil {
		fmt.Fprintln(e.out, result)
	}
	return nil
}

// runScript executes every line of r and stops at the first error.
func (e *env) runScript(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		if err := e.exec(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}

func repl(ctx context.Context, env *env) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "> ",
		Stdout: env.out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err == io.EOF || errors.Is(err, readline.ErrInterrupt) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			fmt.Fprintln(env.out, err)
			continue
		}
		if err := env.exec(line); err != nil {
			fmt.Fprintln(env.out, err)
		}
	}
}
