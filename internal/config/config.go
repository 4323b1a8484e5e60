// Package config provides JSON and YAML configuration loading for the
// environment session. A Config is built once, from defaults or a document,
// and is read-only afterwards.
package config

import (
	"github.com/vovakirdan/melee-gym/internal/emulator"
	"github.com/vovakirdan/melee-gym/internal/melee"
)

// Config holds every environment parameter.
// Document keys match the json/yaml tags; unknown keys are rejected.
type Config struct {
	EnvironmentName string      `json:"environment_name" yaml:"environment_name"`
	DolphinPath     string      `json:"dolphin_path" yaml:"dolphin_path"` // directory holding the emulator executable
	MeleeISO        string      `json:"melee_iso" yaml:"melee_iso"`
	Stage           melee.Stage `json:"stage" yaml:"stage"`

	OnlineDelay   int  `json:"online_delay" yaml:"online_delay"`     // frames of delay for online matches
	BlockingInput bool `json:"blocking_input" yaml:"blocking_input"` // emulator waits for bot input
	PollingMode   bool `json:"polling_mode" yaml:"polling_mode"`
	Headless      bool `json:"headless" yaml:"headless"`
	SaveReplays   bool `json:"save_replays" yaml:"save_replays"`

	EnvVars   []string `json:"env_vars" yaml:"env_vars"`
	Overclock *float64 `json:"overclock" yaml:"overclock"`

	NumEpisodes  int     `json:"num_episodes" yaml:"num_episodes"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
}

// ConsoleOptions maps the configuration onto emulator process parameters.
// Headless mode forces rendering and audio off and enables EXI inputs and
// fast-forward.
func (c Config) ConsoleOptions() emulator.Options {
	opts := emulator.Options{
		DolphinPath:   c.DolphinPath,
		OnlineDelay:   c.OnlineDelay,
		BlockingInput: c.BlockingInput,
		PollingMode:   c.PollingMode,
		SaveReplays:   c.SaveReplays,
		Render:        true,
	}
	if c.Overclock != nil {
		oc := *c.Overclock
		opts.Overclock = &oc
	}

	if c.Headless {
		opts.Render = false
		opts.DisableAudio = true
		opts.UseEXIInputs = true
		opts.EnableFFW = true
	}
	return opts
}

// RunOptions returns the per-launch process parameters.
func (c Config) RunOptions() emulator.RunOptions {
	var env []string
	if c.EnvVars != nil {
		env = append([]string(nil), c.EnvVars...)
	}
	return emulator.RunOptions{
		ISOPath: c.MeleeISO,
		EnvVars: env,
	}
}

// WithEnvOverrides returns a copy of the configuration with paths replaced
// by DOLPHIN_PATH and MELEE_ISO when lookup finds them.
func (c Config) WithEnvOverrides(lookup func(string) (string, bool)) Config {
	if v, ok := lookup("DOLPHIN_PATH"); ok && v != "" {
		c.DolphinPath = v
	}
	if v, ok := lookup("MELEE_ISO"); ok && v != "" {
		c.MeleeISO = v
	}
	if c.EnvVars != nil {
		c.EnvVars = append([]string(nil), c.EnvVars...)
	}
	return c
}
