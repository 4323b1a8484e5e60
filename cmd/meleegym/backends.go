package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/melee-gym/internal/emulator"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List available console backends",
	Long:  `Shows the console backends compiled into this binary.`,
	Run:   runBackends,
}

func runBackends(cmd *cobra.Command, args []string) {
	backends := emulator.List()

	if len(backends) == 0 {
		fmt.Println("No backends available.")
		return
	}

	fmt.Println("Available backends:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, b := range backends {
		maxNameLen = max(maxNameLen, len(b.Name))
	}

	fmt.Printf("  %-*s  %s\n", maxNameLen, "Name", "Description")
	fmt.Printf("  %-*s  %s\n", maxNameLen, "----", "-----------")

	for _, b := range backends {
		fmt.Printf("  %-*s  %s\n", maxNameLen, b.Name, b.Description)
	}

	fmt.Println()
	fmt.Println("Run 'meleegym run --backend <name>' to use one.")
}
