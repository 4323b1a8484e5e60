package config

import (
	_ "embed"

	"github.com/vovakirdan/melee-gym/internal/melee"
)

//go:embed defaults/meleegym.yaml
var defaultYAML []byte

// Default returns the default configuration.
func Default() Config {
	return Config{
		EnvironmentName: "Melee Gym Environment",
		DolphinPath:     "/path/to/dolphin",
		MeleeISO:        "/path/to/melee.iso",
		Stage:           melee.StageFinalDestination,
		OnlineDelay:     0,
		BlockingInput:   true,
		PollingMode:     false,
		Headless:        true,
		SaveReplays:     false,
		EnvVars:         nil,
		Overclock:       nil,
		NumEpisodes:     100,
		LearningRate:    1e-5,
	}
}

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return defaultYAML
}
