package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeYes bool

var removeCmd = &cobra.Command{
	Use:   "remove <mod>",
	Short: "Remove a mod",
	Long: `Remove a mod. It is disabled first. A mod in the mods folder is deleted
from disk together with its config folder; an external mod is only
unregistered and a DLL shipped inside a package is only dropped from the
profile. Their files are left alone.

Examples:
  me3m remove ersc
  me3m remove convergence --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip confirmation prompt")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}

	mod, err := m.Find(args[0])
	if err != nil {
		return err
	}

	forget := mod.External || mod.Missing || m.IsNested(mod.Path)
	label := fmt.Sprintf("Delete %s from the mods folder", mod.Name)
	if forget {
		label = fmt.Sprintf("Forget %s", mod.Name)
	}
	if err := confirm(label, removeYes); err != nil {
		return err
	}

	if err := m.Remove(mod.Path); err != nil {
		return err
	}

	if forget {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorYellow("Forgot"), mod.Name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorRed("Removed"), mod.Name)
	}
	return nil
}
