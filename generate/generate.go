// Package generate drives a predictor autoregressively: it seeds a window from
// the corpus, repeatedly predicts and binarizes the next vector, and slides
// the window over what it produced.
package generate

import (
	"context"

	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/predictor"
	"github.com/jsphweid/statecomposer/statematrix"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Driver struct {
	predictor predictor.Predictor
	batcher   *corpus.Batcher

	width           flat.Width
	nTimesteps      int
	compositionSize int
	threshold       float64
}

func New(cfg config.Config, p predictor.Predictor, b *corpus.Batcher) (*Driver, error) {
	w := flat.WidthFor(cfg.KeepActivated)
	if p.Width() != w {
		return nil, errors.Wrapf(flat.ErrShapeMismatch, "predictor outputs %d components, encoding uses %d", p.Width(), w)
	}
	return &Driver{
		predictor:       p,
		batcher:         b,
		width:           w,
		nTimesteps:      cfg.NTimesteps,
		compositionSize: cfg.CompositionSize,
		threshold:       cfg.Threshold,
	}, nil
}

type Result struct {
	// Seed is the corpus window the composition started from.
	Seed []flat.Vector
	// Generated holds the binarized predictions, seed excluded.
	Generated []flat.Vector
	Matrix    statematrix.Matrix
}

// Run generates compositionSize timesteps. Any predictor failure or a
// prediction of the wrong width ends the run.
func (d *Driver) Run(ctx context.Context, c corpus.Corpus) (Result, error) {
	logger := log.WithFields(log.Fields{
		"function": "Driver.Run",
	})
	if c.Width != d.width {
		return Result{}, errors.Wrapf(flat.ErrShapeMismatch, "corpus encoded with width %d, driver uses %d", c.Width, d.width)
	}

	composition, err := d.seed(c)
	if err != nil {
		return Result{}, err
	}
	for i, v := range composition {
		logger.Debugf("seed %d: %v", i, v)
	}

	for step := 0; step < d.compositionSize; step++ {
		window := composition[len(composition)-d.nTimesteps:]
		next, err := d.step(ctx, window)
		if err != nil {
			return Result{}, errors.Wrapf(err, "step %d", step)
		}
		composition = append(composition, next)
	}

	res := Result{
		Seed:      composition[:d.nTimesteps:d.nTimesteps],
		Generated: composition[d.nTimesteps:],
	}
	res.Matrix, err = flat.Unflatten(res.Generated, d.width)
	if err != nil {
		return Result{}, err
	}
	logger.Infof("Generated %d timesteps", len(res.Generated))
	return res, nil
}

// seed copies one random corpus window into a fresh composition buffer.
func (d *Driver) seed(c corpus.Corpus) ([]flat.Vector, error) {
	batch, err := d.batcher.Sample(c, 1, d.nTimesteps)
	if err != nil {
		return nil, errors.Wrap(err, "seeding")
	}
	composition := make([]flat.Vector, 0, d.nTimesteps+d.compositionSize)
	return append(composition, batch.Windows[0]...), nil
}

func (d *Driver) step(ctx context.Context, window []flat.Vector) (flat.Vector, error) {
	pred, err := d.predictor.Predict(ctx, window)
	if err != nil {
		return nil, err
	}
	if err := flat.CheckWidth(pred, d.width); err != nil {
		return nil, err
	}
	return flat.Binarize(pred, d.threshold), nil
}

// Compose runs the driver and writes the result as a midi file at path.
func (d *Driver) Compose(ctx context.Context, c corpus.Corpus, path string, opts statematrix.WriteOptions, resolution uint16) (Result, error) {
	res, err := d.Run(ctx, c)
	if err != nil {
		return res, err
	}
	if err := statematrix.WriteFile(path, res.Matrix, opts, resolution); err != nil {
		return res, err
	}
	log.WithField("function", "Driver.Compose").Infof("Wrote %s", path)
	return res, nil
}
