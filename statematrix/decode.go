package statematrix

import (
	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/midi"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type WriteOptions struct {
	LowerBound int
	TickScale  uint32
	Velocity   uint8
}

func WriteOptionsFrom(cfg config.Config) WriteOptions {
	return WriteOptions{
		LowerBound: cfg.LowerBound,
		TickScale:  cfg.TickScale,
		Velocity:   cfg.Velocity,
	}
}

// ToTrack turns a matrix back into note on/off events on channel 0.
// Index i of a state is played as pitch LowerBound+i, whatever the state
// width is. Indices that land above pitch 127 are dropped.
func ToTrack(m Matrix, opts WriteOptions) smf.Track {
	var track smf.Track

	span := m.Width()
	prev := make(State, span)
	lastEvent := 0

	emit := func(step int, msg gomidi.Message) {
		track.Add(uint32(step-lastEvent)*opts.TickScale, msg)
		lastEvent = step
	}

	// one extra all-off state releases whatever is still sounding
	states := append(m[:len(m):len(m)], make(State, span))
	for step, state := range states {
		var offNotes, onNotes []int
		for i := 0; i < span && opts.LowerBound+i <= maxPitch; i++ {
			n, p := state.note(i), prev.note(i)
			switch {
			case p.Held == 1 && n.Held == 0:
				offNotes = append(offNotes, i)
			case p.Held == 1 && n.JustTriggered == 1:
				offNotes = append(offNotes, i)
				onNotes = append(onNotes, i)
			case p.Held != 1 && n.Held == 1:
				onNotes = append(onNotes, i)
			}
		}

		for _, i := range offNotes {
			emit(step, gomidi.NoteOff(0, pitch(opts, i)))
		}
		for _, i := range onNotes {
			emit(step, gomidi.NoteOn(0, pitch(opts, i), opts.Velocity))
		}
		prev = state
	}

	track.Close(1)
	return track
}

// WriteFile writes m as a single track file at path.
func WriteFile(path string, m Matrix, opts WriteOptions, resolution uint16) error {
	return midi.WriteFile(path, ToTrack(m, opts), resolution)
}

const maxPitch = 127

func pitch(opts WriteOptions, i int) uint8 {
	return uint8(opts.LowerBound + i)
}
