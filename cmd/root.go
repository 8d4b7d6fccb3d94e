package cmd

import (
	"context"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/statecomposer/config"
	"github.com/jsphweid/statecomposer/corpus"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/statematrix"
	"github.com/jsphweid/statecomposer/store"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	corpusDir  string
	cachePath  string
	maxFiles   int
	prune      bool
)

var rootCmd = &cobra.Command{
	Use:   "statecomposer",
	Short: "Learns from midi files and composes new ones",
	Long: `Encodes a directory of midi files as sixteenth-note state matrices, trains a
next-state network on them and composes new midi by sampling it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&corpusDir, "corpus", "", "Midi corpus directory (default: $MIDI_CORPUS_PATH or ./batch_test)")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "SQLite corpus cache (default: $COMPOSER_CACHE_PATH, none when empty)")
	rootCmd.PersistentFlags().IntVar(&maxFiles, "max-files", 0, "Load at most this many files (0 for all)")
	rootCmd.PersistentFlags().BoolVar(&prune, "prune", false, "Delete corpus files that cannot be encoded")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	cobra.CheckErr(err)
	if corpusDir != "" {
		cfg.CorpusDir = corpusDir
	}
	if cachePath != "" {
		cfg.CachePath = cachePath
	}
	return cfg
}

// progressLogger reports corpus loading at most once per quiet period.
func progressLogger() func(done, total int) {
	debounced := debounce.New(500 * time.Millisecond)
	return func(done, total int) {
		debounced(func() {
			log.Infof("Processing %v of %v midi files", done, total)
		})
	}
}

func loadCorpus(ctx context.Context, cfg config.Config) corpus.Corpus {
	opts := corpus.LoadOptions{
		MaxFiles: maxFiles,
		Prune:    prune,
		Progress: progressLogger(),
	}
	if cfg.CachePath != "" {
		s, err := store.NewSQLiteStore(cfg.CachePath)
		cobra.CheckErr(err)
		defer s.Close()
		opts.Cache = s
	}

	enc := statematrix.NewEncoder(cfg)
	c, err := corpus.Load(ctx, cfg.CorpusDir, enc, flat.WidthFor(cfg.KeepActivated), opts)
	cobra.CheckErr(err)
	return c
}
