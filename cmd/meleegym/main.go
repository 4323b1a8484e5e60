// meleegym runs reinforcement-learning episodes against a fighting-game
// console and keeps a record of every episode played.
//
// Usage:
//
//	meleegym run                 - Play episodes headless or in the live monitor
//	meleegym episodes [env]      - List recorded episodes
//	meleegym config              - Print the effective configuration
//	meleegym backends            - List available console backends
//
// Global flags:
//
//	--config <path>    - JSON or YAML configuration file
//	--db <path>        - Episode database (default: ~/.meleegym/episodes.db)
//	--seed <value>     - Seed for simulated consoles and agents
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/melee-gym/internal/config"

	// Import backends to register them
	_ "github.com/vovakirdan/melee-gym/internal/emulator/sim"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meleegym",
	Short: "Melee Gym - RL episodes against a fighting-game console",
	Long: `Melee Gym drives a fighting-game console as a reinforcement-learning
environment: it boots the console, navigates the menus into a match and
steps one frame per action until the match ends.

Available commands:
  run       - Play episodes with a built-in agent
  episodes  - View recorded episodes
  config    - Print the effective configuration
  backends  - Show available console backends

Environment:
  DOLPHIN_PATH and MELEE_ISO override the configured paths. A .env file in
  the working directory is loaded first if present.

Examples:
  meleegym run --episodes 3
  meleegym run --watch --agent random
  meleegym run --player 1=cpu:MARTH:7 --player 2=ai:FOX
  meleegym episodes --interactive
  meleegym config --config ./meleegym.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is normal
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to JSON or YAML config (default: search ~/.meleegym, ./meleegym.json)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.meleegym/episodes.db", "Path to episode database")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Seed for simulated consoles and agents (0 = time based)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(backendsCmd)
}

// newLogger returns the process logger at the level given by --log-level.
func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "meleegym",
		Level:           level,
	})
	return logger, nil
}

// loadConfig loads the configuration named by --config and applies the
// environment overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	return cfg.WithEnvOverrides(os.LookupEnv), nil
}
