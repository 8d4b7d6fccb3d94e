package generate

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/midi"
	"github.com/jsphweid/statecomposer/predictor"
	"github.com/jsphweid/statecomposer/statematrix"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.NTimesteps = 4
	cfg.CompositionSize = 10
	return cfg
}

func song(n int, w flat.Width) corpus.Song {
	s := corpus.Song{Path: "song.mid"}
	for k := 0; k < n; k++ {
		v := make(flat.Vector, w)
		v[k%12] = 1
		s.Vectors = append(s.Vectors, v)
	}
	return s
}

func testCorpus(w flat.Width) corpus.Corpus {
	return corpus.Corpus{Width: w, Songs: []corpus.Song{song(40, w)}}
}

func batcher() *corpus.Batcher {
	return corpus.NewBatcher(rand.New(rand.NewSource(1)))
}

func constant(w flat.Width, value float64) predictor.Func {
	return predictor.Func{W: w, F: func(window []flat.Vector) flat.Vector {
		v := make(flat.Vector, w)
		for i := range v {
			v[i] = value
		}
		return v
	}}
}

func TestRunDropsSeed(t *testing.T) {
	d, err := New(testConfig(), constant(flat.Narrow, 0.9), batcher())
	require.NoError(t, err)

	res, err := d.Run(context.Background(), testCorpus(flat.Narrow))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Len(res.Seed, 4)
	assert.Len(res.Generated, 10)
	assert.Len(res.Matrix, 10)
	for _, state := range res.Matrix {
		assert.Len(state, 12)
	}
}

func TestRunThresholdIsInclusive(t *testing.T) {
	cfg := testConfig()
	cfg.Threshold = 0.25

	for _, tc := range []struct {
		value float64
		want  float64
	}{{0.25, 1}, {0.2499, 0}} {
		d, err := New(cfg, constant(flat.Narrow, tc.value), batcher())
		require.NoError(t, err)

		res, err := d.Run(context.Background(), testCorpus(flat.Narrow))
		require.NoError(t, err)
		for _, v := range res.Generated {
			for _, x := range v {
				assert.Equal(t, tc.want, x)
			}
		}
	}
}

func TestRunSlidesWindowOverComposition(t *testing.T) {
	var windows [][]flat.Vector
	counter := 0
	p := predictor.Func{W: flat.Narrow, F: func(window []flat.Vector) flat.Vector {
		windows = append(windows, append([]flat.Vector(nil), window...))
		v := make(flat.Vector, flat.Narrow)
		v[counter%12] = 0.7
		counter++
		return v
	}}

	d, err := New(testConfig(), p, batcher())
	require.NoError(t, err)
	res, err := d.Run(context.Background(), testCorpus(flat.Narrow))
	require.NoError(t, err)

	full := append(append([]flat.Vector(nil), res.Seed...), res.Generated...)
	require.Len(t, windows, 10)
	for step, window := range windows {
		assert.Equal(t, full[step:step+4], window, "step %d", step)
	}
	for i, v := range res.Generated {
		want := make(flat.Vector, flat.Narrow)
		want[i%12] = 1
		assert.Equal(t, want, v)
	}
}

func TestRunWideUnflattensBothChannels(t *testing.T) {
	cfg := testConfig()
	cfg.KeepActivated = true
	p := predictor.Func{W: flat.Wide, F: func(window []flat.Vector) flat.Vector {
		v := make(flat.Vector, flat.Wide)
		v[2], v[14] = 1, 0.8
		v[5] = 0.6
		return v
	}}

	d, err := New(cfg, p, batcher())
	require.NoError(t, err)
	res, err := d.Run(context.Background(), testCorpus(flat.Wide))
	require.NoError(t, err)

	for _, state := range res.Matrix {
		require.Len(t, state, 12)
		assert.Equal(t, statematrix.Note{Held: 1, JustTriggered: 1}, state[2])
		assert.Equal(t, statematrix.Note{Held: 1}, state[5])
	}
}

func TestRunWrongPredictionWidthIsFatal(t *testing.T) {
	calls := 0
	p := predictor.Func{W: flat.Narrow, F: func(window []flat.Vector) flat.Vector {
		calls++
		if calls == 3 {
			return make(flat.Vector, 24)
		}
		return make(flat.Vector, 12)
	}}

	d, err := New(testConfig(), p, batcher())
	require.NoError(t, err)

	_, err = d.Run(context.Background(), testCorpus(flat.Narrow))
	assert.True(t, errors.Is(err, flat.ErrShapeMismatch))
	assert.Equal(t, 3, calls)
}

type failing struct{}

func (failing) Predict(ctx context.Context, window []flat.Vector) (flat.Vector, error) {
	return nil, errors.New("model unavailable")
}

func (failing) Width() flat.Width { return flat.Narrow }

func TestRunPredictorErrorIsFatal(t *testing.T) {
	d, err := New(testConfig(), failing{}, batcher())
	require.NoError(t, err)

	_, err = d.Run(context.Background(), testCorpus(flat.Narrow))
	assert.ErrorContains(t, err, "model unavailable")
}

func TestNewRejectsPredictorWidth(t *testing.T) {
	_, err := New(testConfig(), constant(flat.Wide, 1), batcher())
	assert.True(t, errors.Is(err, flat.ErrShapeMismatch))
}

func TestRunRejectsCorpusWidth(t *testing.T) {
	d, err := New(testConfig(), constant(flat.Narrow, 1), batcher())
	require.NoError(t, err)

	_, err = d.Run(context.Background(), testCorpus(flat.Wide))
	assert.True(t, errors.Is(err, flat.ErrShapeMismatch))
}

func TestRunEmptyCorpus(t *testing.T) {
	d, err := New(testConfig(), constant(flat.Narrow, 1), batcher())
	require.NoError(t, err)

	c := corpus.Corpus{Width: flat.Narrow, Songs: []corpus.Song{song(5, flat.Narrow)}}
	_, err = d.Run(context.Background(), c)
	assert.True(t, errors.Is(err, corpus.ErrEmptyCorpus))
}

func TestComposeWritesMidi(t *testing.T) {
	cfg := testConfig()
	p := predictor.Func{W: flat.Narrow, F: func(window []flat.Vector) flat.Vector {
		v := make(flat.Vector, flat.Narrow)
		v[0] = 1
		return v
	}}
	d, err := New(cfg, p, batcher())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "generated.mid")
	_, err = d.Compose(context.Background(), testCorpus(flat.Narrow), path, statematrix.WriteOptionsFrom(cfg), cfg.Resolution)
	require.NoError(t, err)

	tl, err := midi.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, tl.Tracks, 1)

	// one sustained C for the whole composition
	var kinds []midi.EventKind
	for _, e := range tl.Tracks[0] {
		if e.Kind != midi.Other {
			kinds = append(kinds, e.Kind)
		}
	}
	assert.Equal(t, []midi.EventKind{midi.NoteOn, midi.NoteOff}, kinds)
	assert.Equal(t, uint8(60), tl.Tracks[0][0].Key)
	assert.Equal(t, uint32(10*55), tl.Tracks[0][1].Delta)
}
