// Package corpus turns a directory of midi files into flat vector sequences
// and cuts training windows out of them.
package corpus

import (
	"context"
	"os"

	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/statematrix"
	"github.com/jsphweid/statecomposer/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyCorpus        = errors.New("no usable songs in corpus")
	ErrInsufficientLength = errors.New("song shorter than window")
)

type Song struct {
	Path    string
	Vectors []flat.Vector
}

func (s Song) Len() int {
	return len(s.Vectors)
}

type Corpus struct {
	Width flat.Width
	Songs []Song
}

func (c Corpus) TotalStates() int {
	var total int
	for _, s := range c.Songs {
		total += s.Len()
	}
	return total
}

// Stamp identifies one version of a file on disk together with the pitch
// range it was encoded with.
type Stamp struct {
	Size       int64
	ModTime    int64
	LowerBound int
	UpperBound int
}

// Cache stores encoded songs between runs, keyed by path, width and stamp.
type Cache interface {
	Lookup(ctx context.Context, path string, w flat.Width, stamp Stamp) (Song, bool, error)
	Save(ctx context.Context, song Song, w flat.Width, stamp Stamp) error
}

type LoadOptions struct {
	// MaxFiles of 0 loads every file.
	MaxFiles int
	// Prune deletes files that cannot be encoded.
	Prune bool
	Cache Cache
	// Progress is called after every file with the number done so far.
	Progress func(done, total int)
}

// Load encodes every midi file below dir. Unsupported files are skipped, and
// removed when opts.Prune is set; an empty result is ErrEmptyCorpus.
func Load(ctx context.Context, dir string, enc *statematrix.Encoder, w flat.Width, opts LoadOptions) (Corpus, error) {
	logger := log.WithFields(log.Fields{
		"function": "corpus.Load",
		"dir":      dir,
	})

	c := Corpus{Width: w}
	paths, err := util.GatherAllMidiPaths(dir, opts.MaxFiles)
	if err != nil {
		return c, err
	}

	for i, path := range paths {
		song, err := loadSong(ctx, path, enc, w, opts.Cache)
		switch {
		case errors.Is(err, statematrix.ErrUnsupported):
			logger.WithError(err).Warn("Skipping unsupported file")
			if opts.Prune {
				if err := os.Remove(path); err != nil {
					logger.WithError(err).Warnf("Could not remove %s", path)
				}
			}
		case err != nil:
			return c, err
		default:
			c.Songs = append(c.Songs, song)
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}
	}

	logger.Infof("Number of files processed: %d", len(c.Songs))
	logger.Infof("Total number of states: %d", c.TotalStates())
	if len(c.Songs) == 0 {
		return c, errors.Wrap(ErrEmptyCorpus, dir)
	}
	return c, nil
}

func loadSong(ctx context.Context, path string, enc *statematrix.Encoder, w flat.Width, cache Cache) (Song, error) {
	var stamp Stamp
	if cache != nil {
		info, err := os.Stat(path)
		if err != nil {
			return Song{}, errors.Wrapf(statematrix.ErrUnsupported, "%s: %v", path, err)
		}
		low, high := enc.Bounds()
		stamp = Stamp{
			Size:       info.Size(),
			ModTime:    info.ModTime().UnixNano(),
			LowerBound: low,
			UpperBound: high,
		}

		song, ok, err := cache.Lookup(ctx, path, w, stamp)
		if err != nil {
			return Song{}, err
		}
		if ok {
			return song, nil
		}
	}

	m, err := enc.EncodeFile(path)
	if err != nil {
		return Song{}, err
	}
	song := Song{Path: path, Vectors: flat.Flatten(m, w)}

	if cache != nil {
		if err := cache.Save(ctx, song, w, stamp); err != nil {
			return Song{}, err
		}
	}
	return song, nil
}
