package cmd

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/generate"
	"github.com/jsphweid/statecomposer/predictor"
	"github.com/jsphweid/statecomposer/statematrix"
	"github.com/spf13/cobra"
)

var (
	outPath      string
	predictorURL string
	seed         int64
)

func init() {
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output midi file (default: generated-<uuid>.mid)")
	generateCmd.Flags().StringVar(&predictorURL, "predictor-url", "", "Use a remote predictor instead of the saved weights")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for picking the seed window (0 for time based)")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Composes a midi file",
	Long: `Seeds a window from the corpus, lets the predictor extend it one sixteenth at
a time and writes the result as a midi file.`,
	Run: func(cmd *cobra.Command, args []string) {
		generateSong(cmd.Context())
	},
}

func defaultOutPath() string {
	return "generated-" + uuid.New().String() + ".mid"
}

func openPredictor(cfg config.Config) predictor.Predictor {
	w := flat.WidthFor(cfg.KeepActivated)
	if predictorURL != "" {
		return predictor.NewHTTPPredictor(predictorURL, w)
	}
	n, err := predictor.LoadNetwork(cfg.WeightsPath)
	cobra.CheckErr(err)
	return n
}

// Generate composes one song from c with p and writes it to path.
func Generate(ctx context.Context, cfg config.Config, c corpus.Corpus, p predictor.Predictor, rng *rand.Rand, path string) (generate.Result, error) {
	d, err := generate.New(cfg, p, corpus.NewBatcher(rng))
	if err != nil {
		return generate.Result{}, err
	}
	return d.Compose(ctx, c, path, statematrix.WriteOptionsFrom(cfg), cfg.Resolution)
}

func generateSong(ctx context.Context) {
	cfg := loadConfig()
	c := loadCorpus(ctx, cfg)
	p := openPredictor(cfg)

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if outPath == "" {
		outPath = defaultOutPath()
	}
	_, err := Generate(ctx, cfg, c, p, rand.New(rand.NewSource(seed)), outPath)
	cobra.CheckErr(err)
}
