package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop profile entries whose files are gone",
	Long: `Remove entries from the ME3 profile that point at files or folders that no
longer exist.

Example:
  me3m prune --game nightreign`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}

	gone, err := m.Prune()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(gone) == 0 {
		fmt.Fprintln(out, "Profile is clean.")
		return nil
	}
	for _, path := range gone {
		fmt.Fprintf(out, "%s %s\n", colorYellow("Pruned"), path)
	}
	return nil
}
