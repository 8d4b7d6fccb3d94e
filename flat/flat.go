// Package flat folds state matrices into fixed width pitch-class vectors, the
// representation the predictor reads and writes.
package flat

import (
	"github.com/jsphweid/statecomposer/constants"
	"github.com/jsphweid/statecomposer/statematrix"
	"github.com/jsphweid/statecomposer/util"
	"github.com/pkg/errors"
)

var ErrShapeMismatch = errors.New("vector width mismatch")

// Vector is one timestep, every component in [0, 1].
type Vector = []float64

// Width is the number of components of every Vector of a run.
type Width int

const (
	// Narrow holds the pitch-class activation only.
	Narrow Width = constants.PitchClasses
	// Wide appends the pitch-class just-triggered channel to Narrow.
	Wide Width = 2 * constants.PitchClasses
)

func WidthFor(keepActivated bool) Width {
	if keepActivated {
		return Wide
	}
	return Narrow
}

func (w Width) KeepActivated() bool {
	return w == Wide
}

func CheckWidth(v Vector, w Width) error {
	if len(v) != int(w) {
		return errors.Wrapf(ErrShapeMismatch, "got %d components, want %d", len(v), w)
	}
	return nil
}

// Flatten folds every state onto the 12 pitch classes and scales each
// timestep by its largest component.
func Flatten(m statematrix.Matrix, w Width) []Vector {
	res := make([]Vector, 0, len(m))
	for _, state := range m {
		v := make(Vector, w)
		for i, note := range state {
			v[i%constants.PitchClasses] += float64(util.Max(note.Held, note.JustTriggered))
			if w == Wide {
				v[constants.PitchClasses+i%constants.PitchClasses] += float64(note.JustTriggered)
			}
		}
		normalize(v)
		res = append(res, v)
	}
	return res
}

func normalize(v Vector) {
	peak := util.Max(v...)
	if peak == 0 {
		return
	}
	for i := range v {
		v[i] /= peak
	}
}

// Unflatten maps vectors back to states of width w/2 (Wide) or w (Narrow).
// It only undoes the width: the pitch-class folding is lost, so state index i
// is pitch class i. A component counts as set when it is exactly 1, which is
// what Binarize produces.
func Unflatten(vs []Vector, w Width) (statematrix.Matrix, error) {
	notes := int(w)
	if w == Wide {
		notes = int(w) / 2
	}

	m := make(statematrix.Matrix, 0, len(vs))
	for i, v := range vs {
		if err := CheckWidth(v, w); err != nil {
			return nil, errors.Wrapf(err, "timestep %d", i)
		}
		state := make(statematrix.State, notes)
		for n := range state {
			state[n].Held = bit(v[n])
			if w == Wide {
				state[n].JustTriggered = bit(v[n+notes])
			}
		}
		m = append(m, state)
	}
	return m, nil
}

func bit(x float64) uint8 {
	if x == 1 {
		return 1
	}
	return 0
}

// Binarize is a hard cutoff: components at or above threshold become 1.
func Binarize(v Vector, threshold float64) Vector {
	res := make(Vector, len(v))
	for i, x := range v {
		if x >= threshold {
			res[i] = 1
		}
	}
	return res
}
