package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var regulationNone bool

var regulationCmd = &cobra.Command{
	Use:   "regulation [package]",
	Short: "Choose which package's regulation.bin the game loads",
	Long: `The game loads a single regulation.bin. Name a package mod to make its
regulation.bin the active one; every other package's is disabled. With
--none all package regulation files are disabled. Without arguments the
current state is shown.

Examples:
  me3m regulation
  me3m regulation convergence
  me3m regulation --none`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegulation,
}

func init() {
	regulationCmd.Flags().BoolVar(&regulationNone, "none", false, "disable every package's regulation.bin")

	rootCmd.AddCommand(regulationCmd)
}

func runRegulation(cmd *cobra.Command, args []string) error {
	if regulationNone && len(args) > 0 {
		return fmt.Errorf("--none cannot be combined with a package name")
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case regulationNone:
		if err := m.DisableRegulations(); err != nil {
			return err
		}
		fmt.Fprintln(out, "All package regulation files disabled.")

	case len(args) == 1:
		mod, err := m.Find(args[0])
		if err != nil {
			return err
		}
		if err := m.SetRegulation(mod.Path); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s regulation.bin from %s\n", colorGreen("Using"), mod.Name)

	default:
		found := false
		for _, mod := range m.List() {
			if !mod.HasRegulation {
				continue
			}
			found = true
			state := colorFaint("disabled")
			if mod.RegulationActive {
				state = colorGreen("active")
			}
			fmt.Fprintf(out, "%-30s %s\n", mod.Name, state)
		}
		if !found {
			fmt.Fprintln(out, "No package ships a regulation.bin.")
		}
	}
	return nil
}
