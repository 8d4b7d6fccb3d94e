package midi

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Create wraps a single track into a format 0 file with metric timing.
func Create(track smf.Track, resolution uint16) (*smf.SMF, error) {
	res := smf.New()
	res.TimeFormat = smf.MetricTicks(resolution)
	if err := res.Add(track); err != nil {
		return nil, errors.Wrap(err, "adding track")
	}
	return res, nil
}

func WriteFile(path string, track smf.Track, resolution uint16) error {
	s, err := Create(track, resolution)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return errors.Wrapf(err, "creating output dir for %s", path)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Couldn't open file: %s", path)
	}
	defer f.Close()

	if _, err := s.WriteTo(f); err != nil {
		return errors.Wrapf(err, "Write failed for file: %s", path)
	}
	return nil
}
