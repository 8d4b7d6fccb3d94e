// Package statematrix converts between MIDI event timelines and a grid of
// per-note states sampled every sixteenth of a beat.
package statematrix

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnsupported marks a file that cannot be encoded: it failed to parse,
// uses SMPTE timing, or hits an unsupported time signature too early.
var ErrUnsupported = errors.New("unsupported midi file")

// Note is the state of one pitch at one timestep.
// JustTriggered is only ever 1 when Held is 1.
type Note struct {
	Held          uint8
	JustTriggered uint8
}

// State holds one Note per tracked pitch, lowest pitch first.
type State []Note

// Matrix is one song, one State per sixteenth.
type Matrix []State

// sustain returns the state that follows s when nothing happens: every held
// note keeps sounding and nothing is freshly triggered.
func (s State) sustain() State {
	next := make(State, len(s))
	for i, n := range s {
		next[i] = Note{Held: n.Held}
	}
	return next
}

func (s State) note(i int) Note {
	if i < len(s) {
		return s[i]
	}
	return Note{}
}

// Width is the number of pitches per state, 0 for an empty matrix.
func (m Matrix) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

func (m Matrix) String() string {
	return fmt.Sprintf("statematrix(%d x %d x 2)", len(m), m.Width())
}
