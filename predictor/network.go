package predictor

import (
	"context"
	"sync"

	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/util"
	"github.com/pkg/errors"
	"github.com/schollz/gobrain"
	log "github.com/sirupsen/logrus"
)

// Network is a feed-forward net that reads a whole window at once, one input
// per component of every vector, and outputs one vector.
type Network struct {
	FF         *gobrain.FeedForward
	W          flat.Width
	NTimesteps int

	// Update writes into the net's activation buffers
	mu sync.Mutex
}

func NewNetwork(w flat.Width, nTimesteps, hidden int) *Network {
	ff := &gobrain.FeedForward{}
	ff.Init(nTimesteps*int(w), hidden, int(w))
	return &Network{FF: ff, W: w, NTimesteps: nTimesteps}
}

func (n *Network) Width() flat.Width {
	return n.W
}

func (n *Network) Predict(ctx context.Context, window []flat.Vector) (flat.Vector, error) {
	if err := CheckWindow(window, n.NTimesteps, n.W); err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.FF.Update(concat(window))
	return append(flat.Vector(nil), out...), nil
}

func concat(window []flat.Vector) []float64 {
	var res []float64
	for _, v := range window {
		res = append(res, v...)
	}
	return res
}

type TrainOptions struct {
	Epochs int
	// BatchSize is the number of pairs trained between two checks of the
	// context; 0 trains the whole batch at once.
	BatchSize    int
	LearningRate float64
	Momentum     float64
}

// Train runs back propagation over every pair of the batch, minibatch by
// minibatch, and returns the error of the last epoch. The network is only
// locked while a minibatch trains, so predictions can interleave.
func (n *Network) Train(ctx context.Context, batch corpus.Batch, opts TrainOptions) (float64, error) {
	logger := log.WithFields(log.Fields{
		"function": "Network.Train",
	})
	if batch.Len() == 0 {
		return 0, errors.Wrap(corpus.ErrEmptyCorpus, "empty training batch")
	}

	patterns := make([][][]float64, 0, batch.Len())
	for i, window := range batch.Windows {
		if err := CheckWindow(window, n.NTimesteps, n.W); err != nil {
			return 0, errors.Wrapf(err, "training pair %d", i)
		}
		if err := flat.CheckWidth(batch.Targets[i], n.W); err != nil {
			return 0, errors.Wrapf(err, "training target %d", i)
		}
		patterns = append(patterns, [][]float64{concat(window), batch.Targets[i]})
	}

	size := opts.BatchSize
	if size <= 0 || size > len(patterns) {
		size = len(patterns)
	}
	logger.Debugf("Training on %d pairs in minibatches of %d for %d epochs", len(patterns), size, opts.Epochs)

	var loss float64
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		loss = 0
		for start := 0; start < len(patterns); start += size {
			if err := ctx.Err(); err != nil {
				return loss, errors.Wrapf(err, "epoch %d", epoch)
			}
			end := util.Min(start+size, len(patterns))
			loss += n.trainMinibatch(patterns[start:end], opts)
		}
	}
	return loss, nil
}

func (n *Network) trainMinibatch(patterns [][][]float64, opts TrainOptions) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	var loss float64
	for _, e := range n.FF.Train(patterns, 1, opts.LearningRate, opts.Momentum, false) {
		loss += e
	}
	return loss
}

func (n *Network) Save(path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return util.CreateBinary(path, n)
}

func LoadNetwork(path string) (*Network, error) {
	n, err := util.ReadBinary[*Network](path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading weights %s", path)
	}
	if n == nil || n.FF == nil {
		return nil, errors.Errorf("no network in %s", path)
	}
	return n, nil
}
