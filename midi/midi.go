package midi

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type EventKind uint8

const (
	Other EventKind = iota
	NoteOn
	NoteOff
	TimeSignature
)

// Event is one track event reduced to what the state matrix encoder looks at.
// Events the encoder ignores are kept as Other so deltas stay exact.
type Event struct {
	Delta    uint32
	Kind     EventKind
	Key      uint8
	Velocity uint8

	// only set for TimeSignature
	Numerator uint8
}

type Track []Event

// Timeline is a parsed file: every track keeps its own delta timing.
type Timeline struct {
	// ticks per quarter note
	Resolution uint16
	Tracks     []Track
}

func ReadFile(filepath string) (t *Timeline, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			t = nil
			e = errors.Errorf("Error parsing midi file... %v", r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "Error reading midi file...")
	}

	s, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "Error parsing midi file...")
	}

	return FromSMF(s)
}

func FromSMF(s *smf.SMF) (*Timeline, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v", s.TimeFormat)
	}

	res := &Timeline{Resolution: ticks.Resolution()}
	for _, track := range s.Tracks {
		reduced := make(Track, 0, len(track))
		for _, evt := range track {
			reduced = append(reduced, reduce(evt))
		}
		res.Tracks = append(res.Tracks, reduced)
	}
	return res, nil
}

func reduce(evt smf.Event) Event {
	e := Event{Delta: evt.Delta}
	msg := gomidi.Message(evt.Message)

	var channel, key, velocity uint8
	var num, denom, clocks, demiSemiQuavers uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		e.Kind = NoteOn
		e.Key = key
		e.Velocity = velocity
	case msg.GetNoteEnd(&channel, &key):
		// note on with velocity 0 lands here too
		e.Kind = NoteOff
		e.Key = key
	case evt.Message.GetMetaTimeSig(&num, &denom, &clocks, &demiSemiQuavers):
		e.Kind = TimeSignature
		e.Numerator = num
	}
	return e
}
