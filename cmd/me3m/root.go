package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DonovanMods/me3-manager/internal/core"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user cancels an operation (e.g. prompt declined).
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.3.0"

	// Global flags
	configDir  string
	gameID     string
	verbose    bool
	jsonOutput bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "me3m",
	Short: "me3m - Mod manager for Mod Engine 3",
	Long: `me3m manages the mods Mod Engine 3 loads for Elden Ring and Nightreign.

It enables and disables mods in the ME3 profile, registers DLLs that live
elsewhere, installs mods into the game's mods folder and launches the game.

Use subcommands for operations. Run 'me3m --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		color.NoColor = !colorEnabled()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/me3m)")
	rootCmd.PersistentFlags().StringVarP(&gameID, "game", "g", "", "game ID to operate on (default: configured default game)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (list, info, game list, config show)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
// NO_COLOR: if set (any value), color is disabled per https://no-color.org
func colorEnabled() bool {
	if noColor {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		}
		os.Exit(1)
	}
}

// newLogger returns the text logger commands hand to the service
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// initService creates and initializes the core service
func initService() (*core.Service, error) {
	return initServiceWithLogger(newLogger(os.Stderr))
}

func initServiceWithLogger(logger *slog.Logger) (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	return core.NewService(cfg)
}

// getServiceConfig returns the service configuration with defaults
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{ConfigDir: configDir}
	if cfg.ConfigDir != "" {
		return cfg, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
	}
	cfg.ConfigDir = filepath.Join(home, ".config", "me3m")
	return cfg, nil
}

// requireGame resolves the game to operate on: --game, then the configured default
func requireGame(svc *core.Service) (string, error) {
	if gameID != "" {
		return gameID, nil
	}
	if def := svc.DefaultGameID(); def != "" {
		svc.Logger().Debug("using default game", "game", def)
		return def, nil
	}
	return "", fmt.Errorf("no game specified; use --game or -g flag, or set a default with 'me3m game set-default <game-id>'")
}

// gameManager returns the mod state manager for the selected game
func gameManager(svc *core.Service) (*core.Manager, error) {
	id, err := requireGame(svc)
	if err != nil {
		return nil, err
	}
	return svc.Manager(id)
}
