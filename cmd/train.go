package cmd

import (
	"context"
	"math/rand"
	"time"

	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/predictor"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var resume bool

func init() {
	trainCmd.Flags().BoolVar(&resume, "resume", false, "Continue from the saved weights")
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Trains the network",
	Long: `Trains the next-state network on every window of the corpus and saves the
weights after each refresh round.`,
	Run: func(cmd *cobra.Command, args []string) {
		train(cmd.Context())
	},
}

func openNetwork(cfg config.Config) *predictor.Network {
	w := flat.WidthFor(cfg.KeepActivated)
	if resume {
		n, err := predictor.LoadNetwork(cfg.WeightsPath)
		cobra.CheckErr(err)
		if n.Width() != w || n.NTimesteps != cfg.NTimesteps {
			cobra.CheckErr("saved network does not match the configured width and window")
		}
		return n
	}
	return predictor.NewNetwork(w, cfg.NTimesteps, cfg.Hidden)
}

// Train runs cfg.Refresh rounds over the corpus, saving after every round.
func Train(ctx context.Context, cfg config.Config, c corpus.Corpus, n *predictor.Network) error {
	batcher := corpus.NewBatcher(rand.New(rand.NewSource(time.Now().UnixNano())))
	opts := predictor.TrainOptions{
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		Momentum:     cfg.Momentum,
	}

	for i := 0; i < cfg.Refresh; i++ {
		logger := log.WithFields(log.Fields{"function": "Train", "round": i})

		// every window of the corpus
		batch, err := batcher.Sample(c, 0, cfg.NTimesteps)
		if err != nil {
			return err
		}
		logger.Infof("Total training data of size %d generated", batch.Len())

		loss, err := n.Train(ctx, batch, opts)
		if err != nil {
			return err
		}
		logger.Infof("Loss %.5f", loss)

		if err := n.Save(cfg.WeightsPath); err != nil {
			return err
		}
	}
	return nil
}

func train(ctx context.Context) {
	cfg := loadConfig()
	c := loadCorpus(ctx, cfg)
	n := openNetwork(cfg)
	cobra.CheckErr(Train(ctx, cfg, c, n))
	log.Infof("Saved weights to %s", cfg.WeightsPath)
}
