// Package config holds the settings shared by the encoder, the flattener and
// the generation driver. A Config is passed by value and never mutated after
// it has been validated.
package config

import (
	"os"

	"github.com/jsphweid/statecomposer/constants"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LowerBound      int     `yaml:"lower_bound"`
	UpperBound      int     `yaml:"upper_bound"`
	Threshold       float64 `yaml:"threshold"`
	NTimesteps      int     `yaml:"n_timesteps"`
	CompositionSize int     `yaml:"composition_size"`
	TickScale       uint32  `yaml:"tick_scale"`
	Resolution      uint16  `yaml:"resolution"`
	Velocity        uint8   `yaml:"velocity"`
	KeepActivated   bool    `yaml:"keep_activated"`

	// training
	BatchSize    int     `yaml:"batch_size"`
	Refresh      int     `yaml:"refresh"`
	Epochs       int     `yaml:"epochs"`
	Hidden       int     `yaml:"hidden"`
	LearningRate float64 `yaml:"learning_rate"`
	Momentum     float64 `yaml:"momentum"`

	CorpusDir   string `yaml:"corpus_dir"`
	WeightsPath string `yaml:"weights_path"`
	CachePath   string `yaml:"cache_path"`
}

func Default() Config {
	return Config{
		LowerBound:      constants.LowerBound,
		UpperBound:      constants.UpperBound,
		Threshold:       constants.Threshold,
		NTimesteps:      constants.NTimesteps,
		CompositionSize: constants.CompositionSize,
		TickScale:       constants.TickScale,
		Resolution:      constants.Resolution,
		Velocity:        constants.Velocity,
		KeepActivated:   false,
		BatchSize:       128,
		Refresh:         10,
		Epochs:          1000,
		Hidden:          96,
		LearningRate:    0.1,
		Momentum:        0.3,
		CorpusDir:       constants.GetCorpusDir(),
		WeightsPath:     constants.GetWeightsPath(),
		CachePath:       constants.GetCachePath(),
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Span() int {
	return c.UpperBound - c.LowerBound
}

func (c Config) Validate() error {
	switch {
	case c.LowerBound < 0 || c.UpperBound > 128:
		return errors.Errorf("pitch range [%d, %d) is outside 0..127", c.LowerBound, c.UpperBound)
	case c.Span() <= 0:
		return errors.Errorf("empty pitch range [%d, %d)", c.LowerBound, c.UpperBound)
	case c.NTimesteps <= 0:
		return errors.Errorf("n_timesteps must be positive, got %d", c.NTimesteps)
	case c.CompositionSize < 0:
		return errors.Errorf("composition_size must not be negative, got %d", c.CompositionSize)
	case c.TickScale == 0:
		return errors.New("tick_scale must be positive")
	case c.Resolution == 0:
		return errors.New("resolution must be positive")
	case c.Velocity == 0 || c.Velocity > 127:
		return errors.Errorf("velocity must be in 1..127, got %d", c.Velocity)
	}
	return nil
}
