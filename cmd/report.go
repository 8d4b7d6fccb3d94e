package cmd

import (
	"context"
	"fmt"

	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/store"
	"github.com/jsphweid/statecomposer/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a corpus report",
	Long:  `Loads the corpus and reports how many songs and training windows it holds.`,
	Run: func(cmd *cobra.Command, args []string) {
		report(cmd.Context())
	},
}

type corpusReport struct {
	numSongs   int
	lengths    []uint32
	numWindows int
	numShort   int
}

func analyzeCorpus(c corpus.Corpus, windowLen int) corpusReport {
	var r corpusReport
	r.numSongs = len(c.Songs)
	for _, s := range c.Songs {
		r.lengths = append(r.lengths, uint32(s.Len()))
		if s.Len() > windowLen+1 {
			r.numWindows += s.Len() - windowLen
		} else {
			r.numShort++
		}
	}
	return r
}

// cachedStats reads what the corpus cache holds for the configured encoding.
// It reports false when no cache is configured.
func cachedStats(ctx context.Context, cfg config.Config) (store.Stats, bool, error) {
	if cfg.CachePath == "" {
		return store.Stats{}, false, nil
	}
	s, err := store.NewSQLiteStore(cfg.CachePath)
	if err != nil {
		return store.Stats{}, false, err
	}
	defer s.Close()

	st, err := s.Stats(ctx, flat.WidthFor(cfg.KeepActivated), cfg.LowerBound, cfg.UpperBound)
	if err != nil {
		return store.Stats{}, false, err
	}
	return st, true, nil
}

func report(ctx context.Context) {
	cfg := loadConfig()
	c := loadCorpus(ctx, cfg)
	r := analyzeCorpus(c, cfg.NTimesteps)

	fmt.Printf("songs: %v\n", r.numSongs)
	fmt.Printf("total states: %v\n", util.Sum(r.lengths))
	if r.numSongs > 0 {
		fmt.Printf("shortest: %v, longest: %v\n", util.Min(r.lengths...), util.Max(r.lengths...))
	}
	fmt.Printf("songs too short for a window of %v: %v\n", cfg.NTimesteps, r.numShort)
	fmt.Printf("training windows: %v\n", r.numWindows)

	st, ok, err := cachedStats(ctx, cfg)
	cobra.CheckErr(err)
	if ok {
		fmt.Printf("cached songs: %v, cached timesteps: %v\n", st.Songs, st.Timesteps)
	}
}
