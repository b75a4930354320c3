package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/launcher"

	"github.com/spf13/cobra"
)

var launchQuiet bool

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch the game through me3",
	Long: `Launch the game with its ME3 profile and stream me3's output until the
game exits. Ctrl+C stops the game.

With a custom executable set ('me3m game set-exe'), me3 is started with
--exe and --skip-steam-init; otherwise ME3 detects the game itself.

Examples:
  me3m launch
  me3m launch --game nightreign --quiet`,
	Args: cobra.NoArgs,
	RunE: runLaunch,
}

func init() {
	launchCmd.Flags().BoolVarP(&launchQuiet, "quiet", "q", false, "do not print me3 output")

	rootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}
	game := m.Game()

	if _, err := os.Stat(game.ProfilePath); err != nil {
		return fmt.Errorf("profile %s: %w", game.ProfilePath, err)
	}

	exe, err := service.GameExecutable(game.ID)
	if err != nil {
		return err
	}

	opts := launcher.Options{
		Me3Path:     service.Config().Me3Path,
		ProfilePath: game.ProfilePath,
		GameCLIID:   game.CLIID,
		ExePath:     exe,
		Flatpak:     launcher.InFlatpak(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !launcher.Installed(ctx, opts.Me3Path, opts.Flatpak) {
		return fmt.Errorf("me3 not found at %q; install Mod Engine 3 or set me3_path in config.yaml", opts.Me3Path)
	}

	proc, err := launcher.Start(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", colorGreen("Launching"), game.Name)
	if verbose {
		fmt.Fprintf(out, "%s\n", colorFaint(strings.Join(proc.Args(), " ")))
	}

	if !launchQuiet {
		lines, unfollow := proc.Follow(64)
		defer unfollow()
		for line := range lines {
			if !colorEnabled() {
				line = launcher.StripANSI(line)
			}
			fmt.Fprintln(out, line)
		}
	}

	err = proc.Wait()
	if ctx.Err() != nil {
		fmt.Fprintln(out, "Stopped.")
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("me3 exited with code %d", exitErr.ExitCode())
	}
	return err
}
