package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func songOf(n int) corpus.Song {
	return corpus.Song{Vectors: make([]flat.Vector, n)}
}

func TestAnalyzeCorpus(t *testing.T) {
	c := corpus.Corpus{Songs: []corpus.Song{songOf(40), songOf(33), songOf(34), songOf(2)}}

	r := analyzeCorpus(c, 32)

	assert := assert.New(t)
	assert.Equal(4, r.numSongs)
	assert.Equal([]uint32{40, 33, 34, 2}, r.lengths)
	assert.Equal(2, r.numShort)
	assert.Equal(8+2, r.numWindows)
}

func TestDefaultOutPath(t *testing.T) {
	a, b := defaultOutPath(), defaultOutPath()

	assert := assert.New(t)
	assert.True(strings.HasPrefix(a, "generated-"))
	assert.True(strings.HasSuffix(a, ".mid"))
	assert.NotEqual(a, b)
}

func TestCachedStats(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	_, ok, err := cachedStats(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, ok)

	cfg.CachePath = filepath.Join(t.TempDir(), "cache.db")
	s, err := store.NewSQLiteStore(cfg.CachePath)
	require.NoError(t, err)
	stamp := corpus.Stamp{Size: 1, ModTime: 1, LowerBound: cfg.LowerBound, UpperBound: cfg.UpperBound}
	require.NoError(t, s.Save(ctx, songOf(40), flat.Narrow, stamp))
	require.NoError(t, s.Save(ctx, corpus.Song{Path: "b.mid", Vectors: make([]flat.Vector, 5)}, flat.Narrow, stamp))
	// another range is not counted
	other := stamp
	other.UpperBound = 84
	require.NoError(t, s.Save(ctx, songOf(7), flat.Narrow, other))
	require.NoError(t, s.Close())

	st, ok, err := cachedStats(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, store.Stats{Songs: 2, Timesteps: 45}, st)
}
