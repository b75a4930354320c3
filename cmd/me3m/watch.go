package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/DonovanMods/me3-manager/internal/watch"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow changes to the mods folder and profile",
	Long: `Watch the game's mods folder and ME3 profile and print each change as it
happens. Profile edits made outside me3m are reloaded. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stderr)
	service, err := initServiceWithLogger(logger)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}

	events, unsubscribe := m.Subscribe(32)
	defer unsubscribe()

	w, err := watch.New(m, logger, watch.DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", m.Game().ModsDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.GameID != m.Game().ID {
				continue
			}
			fmt.Fprintf(out, "%s %-18s %s\n", colorFaint(time.Now().Format("15:04:05")), ev.Type, ev.Path)
			if verbose {
				enabled := len(m.EnabledPaths())
				fmt.Fprintf(out, "         %d mod(s) enabled\n", enabled)
			}
		}
	}
}
