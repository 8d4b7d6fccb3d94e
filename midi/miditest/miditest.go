// Package miditest builds small standard MIDI files for tests.
package miditest

import (
	"path/filepath"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Resolution of every file built here. A sixteenth is 2 ticks and the
// encoder starts a new state whenever tick%2 == 1.
const Resolution = 8

// Step is one sixteenth in ticks.
const Step = Resolution / 4

// Song is a track under construction. Times are in sixteenths.
type Song struct {
	track smf.Track
	last  uint32
}

func (s *Song) at(step int) uint32 {
	tick := uint32(step * Step)
	delta := tick - s.last
	s.last = tick
	return delta
}

func (s *Song) On(step int, key uint8) *Song {
	s.track.Add(s.at(step), gomidi.NoteOn(0, key, 100))
	return s
}

func (s *Song) Off(step int, key uint8) *Song {
	s.track.Add(s.at(step), gomidi.NoteOff(0, key))
	return s
}

// Note plays key from step for length sixteenths.
func (s *Song) Note(step, length int, key uint8) *Song {
	return s.On(step, key).Off(step+length, key)
}

func (s *Song) TimeSig(step int, num, denom uint8) *Song {
	s.track.Add(s.at(step), smf.MetaTimeSig(num, denom, 24, 8))
	return s
}

func (s *Song) Track() smf.Track {
	t := append(smf.Track(nil), s.track...)
	t.Close(0)
	return t
}

func (s *Song) SMF() *smf.SMF {
	res := smf.New()
	res.TimeFormat = smf.MetricTicks(Resolution)
	res.Add(s.Track())
	return res
}

// Write stores the song as name inside dir and returns its path.
func (s *Song) Write(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := s.SMF().WriteFile(path); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Scale plays a repeating ascending run of n sixteenth notes starting at low.
func Scale(n int, low uint8, span int) *Song {
	s := &Song{}
	for i := 0; i < n; i++ {
		s.Note(i, 1, low+uint8(i%span))
	}
	return s
}
