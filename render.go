package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrdg/semimod/audio"
)

const spacePerStep = 7

// renderSteps draws the step row with the current step highlighted, followed
// by each step's pitch and velocity.
func renderSteps(w io.Writer, eng *audio.Engine, current int) {
	var icons, pitches, velocities strings.Builder
	for step := 0; step < audio.NumSteps; step++ {
		icon := "⬜️"
		if step == current {
			icon = "⬛️"
		}
		icons.WriteString(pad(numIcon(step+1)+" "+icon, 5))

		pitch := strconv.FormatFloat(eng.Param(audio.PitchParam(step)).Float(), 'f', 2, 64)
		pitches.WriteString(pad(pitch, spacePerStep))

		velocity := strconv.FormatFloat(eng.Param(audio.VelocityParam(step)).Float(), 'f', 0, 64)
		velocities.WriteString(pad(velocity, spacePerStep))
	}

	state := "■"
	if eng.SequencerRunning() {
		state = "▶"
	}
	tempo := eng.Param(audio.ParamTempo).Float()
	fmt.Fprintf(w, "%s ♩ = %s\n", colorize(state, colorGreen), strconv.FormatFloat(tempo, 'f', -1, 64))
	fmt.Fprintf(w, "    %s\n", icons.String())
	fmt.Fprintf(w, "%s %s\n", colorize("oct", colorBlue), colorize(pitches.String(), colorMagenta))
	fmt.Fprintf(w, "%s %s\n", colorize("vel", colorBlue), colorize(velocities.String(), colorMagenta))
}

// pad right-pads s to width runes.
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-n)
}

func numIcon(n int) string {
	// https://www.unicode.org/emoji/charts/full-emoji-list.html#0030_fe0f_20e3
	return string([]byte{48 + byte(n%10), 239, 184, 143, 226, 131, 163})
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
