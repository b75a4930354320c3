package main

import (
	"fmt"
	"io"

	"github.com/DonovanMods/me3-manager/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and toggle mods interactively",
	Long: `Open the interactive terminal UI. With --game the game's mod list opens
directly; otherwise pick a game first.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Log lines would tear the full-screen display
	service, err := initServiceWithLogger(newLogger(io.Discard))
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	return tui.Run(service, gameID)
}
