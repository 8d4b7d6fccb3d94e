// Package predictor provides the next-state capability the generation driver
// samples from: a local feed-forward network or a remote HTTP service.
package predictor

import (
	"context"

	"github.com/jsphweid/statecomposer/flat"
	"github.com/pkg/errors"
)

// Predictor maps a window of flat vectors to the next vector. It must not
// modify the window.
type Predictor interface {
	Predict(ctx context.Context, window []flat.Vector) (flat.Vector, error)
	Width() flat.Width
}

// Func adapts a plain function to Predictor.
type Func struct {
	W flat.Width
	F func(window []flat.Vector) flat.Vector
}

func (f Func) Predict(ctx context.Context, window []flat.Vector) (flat.Vector, error) {
	return f.F(window), nil
}

func (f Func) Width() flat.Width {
	return f.W
}

// CheckWindow verifies a window has n vectors of width w.
func CheckWindow(window []flat.Vector, n int, w flat.Width) error {
	if len(window) != n {
		return errors.Wrapf(flat.ErrShapeMismatch, "window of %d timesteps, want %d", len(window), n)
	}
	for i, v := range window {
		if err := flat.CheckWidth(v, w); err != nil {
			return errors.Wrapf(err, "window timestep %d", i)
		}
	}
	return nil
}
