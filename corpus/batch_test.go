package corpus

import (
	"math/rand"
	"testing"

	"github.com/jsphweid/statecomposer/flat"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numbered builds a song whose vector k is {id, k}.
func numbered(id, n int) Song {
	s := Song{Path: "song"}
	for k := 0; k < n; k++ {
		s.Vectors = append(s.Vectors, flat.Vector{float64(id), float64(k)})
	}
	return s
}

func newBatcher() *Batcher {
	return NewBatcher(rand.New(rand.NewSource(42)))
}

func TestRandomWindowsFollowTheirSong(t *testing.T) {
	c := Corpus{Songs: []Song{numbered(0, 50)}}

	batch, err := newBatcher().Sample(c, 500, 10)
	require.NoError(t, err)
	require.Equal(t, 500, batch.Len())
	require.Len(t, batch.Targets, 500)

	seen := map[int]bool{}
	for i, window := range batch.Windows {
		require.Len(t, window, 10)
		start := int(window[0][1])
		assert.GreaterOrEqual(t, start, 0)
		assert.Less(t, start, 39)
		seen[start] = true

		for k, v := range window {
			assert.Equal(t, float64(start+k), v[1])
		}
		assert.Equal(t, float64(start+10), batch.Targets[i][1])
	}
	// every offset in range should come up in 500 draws
	assert.Len(t, seen, 39)
}

func TestRandomSkipsShortSongsForward(t *testing.T) {
	c := Corpus{Songs: []Song{numbered(0, 11), numbered(1, 5), numbered(2, 30), numbered(3, 12)}}

	batch, err := newBatcher().Sample(c, 200, 10)
	require.NoError(t, err)
	require.Equal(t, 200, batch.Len())

	ids := map[float64]int{}
	for _, window := range batch.Windows {
		ids[window[0][0]]++
	}
	// songs 0 and 1 are too short, draws of them land on song 2
	assert.Zero(t, ids[0])
	assert.Zero(t, ids[1])
	assert.Greater(t, ids[2], ids[3])
}

func TestRandomWrapsAroundCorpusEnd(t *testing.T) {
	c := Corpus{Songs: []Song{numbered(0, 20), numbered(1, 3), numbered(2, 4)}}

	batch, err := newBatcher().Sample(c, 50, 10)
	require.NoError(t, err)
	for _, window := range batch.Windows {
		assert.Equal(t, 0.0, window[0][0])
	}
}

func TestExhaustiveEnumeratesEveryWindow(t *testing.T) {
	lens := []int{50, 11, 12, 3, 25}
	var songs []Song
	for i, n := range lens {
		songs = append(songs, numbered(i, n))
	}
	c := Corpus{Songs: songs}

	for _, batchSize := range []int{0, -1} {
		batch, err := newBatcher().Sample(c, batchSize, 10)
		require.NoError(t, err)

		want := 0
		for _, n := range lens {
			if n > 11 {
				want += n - 10
			}
		}
		assert.Equal(t, want, batch.Len())
		require.Len(t, batch.Targets, want)

		// song order, every offset
		assert.Equal(t, flat.Vector{0, 0}, batch.Windows[0][0])
		assert.Equal(t, flat.Vector{0, 10}, batch.Targets[0])
		assert.Equal(t, flat.Vector{0, 49}, batch.Targets[39])
		assert.Equal(t, flat.Vector{2, 0}, batch.Windows[40][0])
		assert.Equal(t, flat.Vector{4, 24}, batch.Targets[want-1])
	}
}

func TestSampleEmptyCorpus(t *testing.T) {
	for _, c := range []Corpus{{}, {Songs: []Song{numbered(0, 11)}}} {
		_, err := newBatcher().Sample(c, 1, 10)
		assert.True(t, errors.Is(err, ErrEmptyCorpus))

		_, err = newBatcher().Sample(c, 0, 10)
		assert.True(t, errors.Is(err, ErrEmptyCorpus))
	}
}

func TestWindowsCannotGrowIntoCorpus(t *testing.T) {
	c := Corpus{Songs: []Song{numbered(0, 20)}}
	batch, err := newBatcher().Sample(c, 0, 4)
	require.NoError(t, err)

	_ = append(batch.Windows[0], flat.Vector{9, 9})
	assert.Equal(t, flat.Vector{0, 4}, c.Songs[0].Vectors[4])
}
