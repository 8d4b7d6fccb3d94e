package statematrix

import (
	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/constants"
	"github.com/jsphweid/statecomposer/midi"
	"github.com/pkg/errors"
)

type Encoder struct {
	lowerBound int
	upperBound int
}

func NewEncoder(cfg config.Config) *Encoder {
	return &Encoder{lowerBound: cfg.LowerBound, upperBound: cfg.UpperBound}
}

func (e *Encoder) Span() int {
	return e.upperBound - e.lowerBound
}

// Bounds returns the encoded pitch range [low, high).
func (e *Encoder) Bounds() (int, int) {
	return e.lowerBound, e.upperBound
}

// EncodeFile reads and encodes one file. Every failure is reported as
// ErrUnsupported so callers can skip the file and keep going.
func (e *Encoder) EncodeFile(path string) (Matrix, error) {
	tl, err := midi.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupported, "%s: %v", path, err)
	}
	m, err := e.Encode(tl)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return m, nil
}

// Encode walks every track tick by tick and samples the note states in the
// middle of every sixteenth.
func (e *Encoder) Encode(tl *midi.Timeline) (Matrix, error) {
	sixteenth := int(tl.Resolution) / 4
	if sixteenth == 0 {
		return nil, errors.Wrapf(ErrUnsupported, "resolution %d is too coarse", tl.Resolution)
	}
	midSixteenth := int(tl.Resolution) / 8

	tracks := tl.Tracks
	timeleft := make([]int, len(tracks))
	posns := make([]int, len(tracks))
	done := make([]bool, len(tracks))
	for i, track := range tracks {
		if len(track) == 0 {
			done[i] = true
			continue
		}
		timeleft[i] = int(track[0].Delta)
	}

	state := make(State, e.Span())
	m := Matrix{state}

	for time := 0; ; time++ {
		if time%sixteenth == midSixteenth {
			state = state.sustain()
			m = append(m, state)
		}

		for i, track := range tracks {
			for !done[i] && timeleft[i] == 0 {
				evt := track[posns[i]]
				switch evt.Kind {
				case midi.NoteOn, midi.NoteOff:
					e.apply(state, evt)
				case midi.TimeSignature:
					if evt.Numerator != 2 && evt.Numerator != 4 {
						if len(m) < constants.MinStates {
							return nil, errors.Wrapf(ErrUnsupported, "%d/x time signature after %d states", evt.Numerator, len(m))
						}
						return m, nil
					}
				}

				posns[i]++
				if posns[i] < len(track) {
					timeleft[i] = int(track[posns[i]].Delta)
				} else {
					done[i] = true
				}
			}

			if !done[i] {
				timeleft[i]--
			}
		}

		if allDone(done) {
			break
		}
	}

	return m, nil
}

func (e *Encoder) apply(state State, evt midi.Event) {
	pitch := int(evt.Key)
	if pitch < e.lowerBound || pitch >= e.upperBound {
		return
	}
	if evt.Kind == midi.NoteOff || evt.Velocity == 0 {
		state[pitch-e.lowerBound] = Note{}
		return
	}
	state[pitch-e.lowerBound] = Note{Held: 1, JustTriggered: 1}
}

func allDone(done []bool) bool {
	for _, d := range done {
		if !d {
			return false
		}
	}
	return true
}
