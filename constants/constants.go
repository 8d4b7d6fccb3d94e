package constants

import "os"

func GetCorpusDir() string {
	path := os.Getenv("MIDI_CORPUS_PATH")
	if path != "" {
		return path
	}
	return "./batch_test"
}

func GetWeightsPath() string {
	path := os.Getenv("COMPOSER_WEIGHTS_PATH")
	if path != "" {
		return path
	}
	return "./weights.gob"
}

// NOTE: empty means the corpus is re-encoded on every run
func GetCachePath() string {
	return os.Getenv("COMPOSER_CACHE_PATH")
}

// pitch range kept by the encoder, [LowerBound, UpperBound)
const LowerBound = 60
const UpperBound = 72

const Threshold = 0.5

const NTimesteps = 32
const CompositionSize = 256

// 220 ticks per quarter is what the writer stamps into generated files,
// so a TickScale of 55 makes one state exactly one sixteenth
const Resolution = 220
const TickScale = 55
const Velocity = 40

// a file that hits an unsupported time signature before this many states is discarded
const MinStates = 17

const PitchClasses = 12
