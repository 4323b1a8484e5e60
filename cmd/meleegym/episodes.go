package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/melee-gym/internal/platform/tui"
	"github.com/vovakirdan/melee-gym/internal/storage"
)

var (
	flagLimit       int
	flagInteractive bool
	flagClear       bool
)

var episodesCmd = &cobra.Command{
	Use:   "episodes [environment]",
	Short: "Show recorded episodes",
	Long: `Display the most recent episodes and aggregate statistics. Without an
environment name, episodes from every environment are listed.

Examples:
  meleegym episodes
  meleegym episodes "Melee Gym Environment" --limit 50
  meleegym episodes --interactive
  meleegym episodes "Melee Gym Environment" --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runEpisodes,
}

func init() {
	episodesCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of episodes to list")
	episodesCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse episodes in a full-screen table")
	episodesCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the listed environment's episodes")
}

func runEpisodes(cmd *cobra.Command, args []string) {
	environment := ""
	if len(args) == 1 {
		environment = args[0]
	}
	if err := showEpisodes(environment); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// showEpisodes lists, browses or clears the episodes of one environment,
// or of all of them when environment is empty.
func showEpisodes(environment string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening episode database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearEpisodes(environment); err != nil {
			return fmt.Errorf("clearing episodes: %w", err)
		}
		if environment == "" {
			fmt.Println("Cleared all episodes.")
		} else {
			fmt.Printf("Cleared episodes for %s.\n", environment)
		}
		return nil
	}

	if flagInteractive {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		return tui.RunEpisodes(store, width, height)
	}

	episodes, err := store.RecentEpisodes(environment, flagLimit)
	if err != nil {
		return fmt.Errorf("retrieving episodes: %w", err)
	}

	title := "all environments"
	if environment != "" {
		title = environment
	}
	fmt.Printf("Recent Episodes - %s\n", title)
	fmt.Println()

	if len(episodes) == 0 {
		fmt.Println("No episodes recorded yet.")
		fmt.Println()
		fmt.Println("Run 'meleegym run' to play the first one!")
		return nil
	}

	// Print header
	fmt.Printf("  %-16s  %-9s  %-8s  %-8s  %s\n", "Started", "Outcome", "Frames", "Time", "Players")
	fmt.Printf("  %-16s  %-9s  %-8s  %-8s  %s\n", "-------", "-------", "------", "----", "-------")

	for _, ep := range episodes {
		fmt.Printf("  %-16s  %-9s  %-8d  %-8s  %s\n",
			ep.StartedAt.Local().Format("2006-01-02 15:04"),
			ep.Outcome,
			ep.MatchFrames,
			ep.Duration().Round(time.Second),
			ep.Players,
		)
	}

	if environment == "" {
		return nil
	}
	stats, err := store.GetEpisodeStats(environment)
	if err == nil && stats.Episodes > 0 {
		fmt.Println()
		fmt.Printf("Total: %d episodes, %d completed, avg %.0f match frames\n",
			stats.Episodes, stats.Completed, stats.AvgMatchFrames)
	}
	return nil
}
