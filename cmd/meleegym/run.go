package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/melee-gym/internal/agent"
	"github.com/vovakirdan/melee-gym/internal/embed"
	"github.com/vovakirdan/melee-gym/internal/emulator"
	"github.com/vovakirdan/melee-gym/internal/gym"
	"github.com/vovakirdan/melee-gym/internal/melee"
	"github.com/vovakirdan/melee-gym/internal/platform/tui"
	"github.com/vovakirdan/melee-gym/internal/player"
	"github.com/vovakirdan/melee-gym/internal/storage"
)

var (
	flagBackend     string
	flagPlayers     []string
	flagAgent       string
	flagEpisodes    int
	flagWatch       bool
	flagFPS         int
	flagNoRecord    bool
	flagNoAutostart bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play episodes",
	Long: `Boot the console, navigate into a match and drive every AI port with
a built-in agent until the match ends. Repeats for the requested number of
episodes and records each one in the episode database.

Players are given as PORT=SPEC, one flag per port:
  human                   - rejected, a person cannot be driven frame by frame
  cpu[:CHARACTER[:LEVEL]] - console-controlled opponent (default FOX, level 9)
  ai[:CHARACTER]          - driven by the agent (default FOX)

Agents:
  noop    - neutral controller every frame
  random  - random sticks and button presses

Examples:
  meleegym run
  meleegym run --episodes 10 --agent random --seed 42
  meleegym run --player 1=cpu:MARTH:7 --player 2=ai:FALCO
  meleegym run --watch --fps 120`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagBackend, "backend", "sim", "Console backend (see 'meleegym backends')")
	runCmd.Flags().StringArrayVar(&flagPlayers, "player", []string{"1=cpu:FOX:9", "2=ai:FOX"}, "Port assignment PORT=SPEC, repeatable")
	runCmd.Flags().StringVar(&flagAgent, "agent", "noop", "Agent driving the AI ports: noop, random")
	runCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Episodes to play (0 = num_episodes from config)")
	runCmd.Flags().BoolVar(&flagWatch, "watch", false, "Show the live monitor instead of logging")
	runCmd.Flags().IntVar(&flagFPS, "fps", tui.DefaultTickRate, "Monitor step rate (frames per second)")
	runCmd.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not record episodes in the database")
	runCmd.Flags().BoolVar(&flagNoAutostart, "no-autostart", false, "Wait in character select instead of starting the match")
}

func runRun(cmd *cobra.Command, args []string) {
	if err := runSession(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runSession builds the session from flags and config and plays it. Every
// resource it opens is released before it returns.
func runSession() error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	players, err := parsePlayers(flagPlayers)
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	a, err := agent.New(flagAgent, seed)
	if err != nil {
		return err
	}

	opts := cfg.ConsoleOptions()
	opts.Seed = seed
	console, err := emulator.Create(flagBackend, opts)
	if err != nil {
		return fmt.Errorf("creating console: %w (run 'meleegym backends' to list them)", err)
	}

	envOpts := []gym.Option{
		gym.WithLogger(logger),
		gym.WithAutostart(!flagNoAutostart),
	}
	if !flagNoRecord {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return fmt.Errorf("opening episode database: %w", err)
		}
		defer store.Close()
		envOpts = append(envOpts, gym.WithRecorder(store))
	}

	env, err := gym.New(cfg, console, embed.NewFlat(melee.SortedPorts(players)), players, envOpts...)
	if err != nil {
		return fmt.Errorf("creating environment: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	episodes := flagEpisodes
	if episodes <= 0 {
		episodes = cfg.NumEpisodes
	}

	logger.Info("session ready",
		"environment", cfg.EnvironmentName,
		"backend", flagBackend,
		"players", player.Describe(players),
		"agent", flagAgent,
		"episodes", episodes,
		"seed", seed,
	)

	var completed int
	if flagWatch {
		completed, err = tui.RunMonitor(ctx, env, a, episodes, flagFPS)
	} else {
		completed, err = playEpisodes(ctx, env, a, episodes, logger)
	}
	if closeErr := env.Close(); closeErr != nil {
		logger.Warn("close failed", "error", closeErr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Printf("Completed %d of %d episodes.\n", completed, episodes)
	return nil
}

// parsePlayers builds the port assignment from PORT=SPEC flags.
func parsePlayers(specs []string) (map[melee.Port]player.Player, error) {
	players := make(map[melee.Port]player.Player, len(specs))
	for _, spec := range specs {
		port, p, err := player.ParseAssignment(spec)
		if err != nil {
			return nil, err
		}
		if _, dup := players[port]; dup {
			return nil, fmt.Errorf("port %d assigned twice", port)
		}
		players[port] = p
	}
	return players, nil
}

// playEpisodes runs episodes back to back without a UI and returns how many
// reached the end of the match.
func playEpisodes(ctx context.Context, env *gym.Env, a agent.Agent, episodes int, logger *log.Logger) (int, error) {
	ports := env.Ports()
	completed := 0
	for completed < episodes {
		obs, err := env.Reset(ctx)
		if err != nil {
			return completed, err
		}

		frames := 0
		for {
			res, err := env.Step(ctx, a.Act(obs, ports))
			if err != nil {
				return completed, err
			}
			frames++
			if res.Done {
				break
			}
			obs = res.Observation
		}

		completed++
		logger.Info("episode finished",
			"n", completed,
			"episode", env.Episode(),
			"frames", frames,
		)
	}
	return completed, nil
}
