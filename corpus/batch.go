package corpus

import (
	"math/rand"

	"github.com/jsphweid/statecomposer/flat"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Batch holds parallel windows and the vector that follows each of them.
// Windows share memory with the corpus and must not be modified.
type Batch struct {
	Windows [][]flat.Vector
	Targets []flat.Vector
}

func (b Batch) Len() int {
	return len(b.Windows)
}

type Batcher struct {
	rng *rand.Rand
}

func NewBatcher(rng *rand.Rand) *Batcher {
	return &Batcher{rng: rng}
}

// longEnough is true when a random start in [1, len-windowLen) exists.
func longEnough(s Song, windowLen int) bool {
	return s.Len() > windowLen+1
}

// Sample draws batchSize random windows of windowLen vectors. A batchSize of
// 0 or less returns every window of every song instead, in song order.
func (b *Batcher) Sample(c Corpus, batchSize, windowLen int) (Batch, error) {
	var usable int
	for _, s := range c.Songs {
		if longEnough(s, windowLen) {
			usable++
		}
	}
	if usable == 0 {
		return Batch{}, errors.Wrapf(ErrEmptyCorpus, "no song longer than %d states", windowLen+1)
	}

	var batch Batch
	if batchSize > 0 {
		batch = b.random(c, batchSize, windowLen)
	} else {
		batch = exhaustive(c, windowLen)
	}
	log.WithField("function", "Batcher.Sample").Debugf("Total training data of size %d generated", batch.Len())
	return batch, nil
}

func (b *Batcher) random(c Corpus, batchSize, windowLen int) Batch {
	batch := Batch{
		Windows: make([][]flat.Vector, 0, batchSize),
		Targets: make([]flat.Vector, 0, batchSize),
	}
	for n := 0; n < batchSize; n++ {
		i := b.rng.Intn(len(c.Songs))
		// scan forward from a short song, Sample made sure one is long enough
		for !longEnough(c.Songs[i], windowLen) {
			logSkip(c.Songs[i], windowLen)
			i = (i + 1) % len(c.Songs)
		}

		song := c.Songs[i].Vectors
		start := 1 + b.rng.Intn(len(song)-windowLen-1)
		batch.Windows = append(batch.Windows, song[start-1 : start-1+windowLen : start-1+windowLen])
		batch.Targets = append(batch.Targets, song[start-1+windowLen])
	}
	return batch
}

func exhaustive(c Corpus, windowLen int) Batch {
	var batch Batch
	for _, s := range c.Songs {
		if !longEnough(s, windowLen) {
			logSkip(s, windowLen)
			continue
		}
		song := s.Vectors
		for i := 0; i < len(song)-windowLen; i++ {
			batch.Windows = append(batch.Windows, song[i : i+windowLen : i+windowLen])
			batch.Targets = append(batch.Targets, song[i+windowLen])
		}
	}
	return batch
}

func logSkip(s Song, windowLen int) {
	log.WithFields(log.Fields{
		"function": "Batcher.Sample",
		"song":     s.Path,
	}).WithError(errors.Wrapf(ErrInsufficientLength, "%d states for a window of %d", s.Len(), windowLen)).Debug("Skipping song")
}
