package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var addEnable bool

var addCmd = &cobra.Command{
	Use:   "add <path-to-dll>",
	Short: "Register a DLL mod that lives outside the mods folder",
	Long: `Register an external native mod. The DLL stays where it is; ME3 loads it
from that path once it is enabled.

Examples:
  me3m add ~/mods/seamless/ersc.dll
  me3m add ~/mods/fps_unlock.dll --enable`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVarP(&addEnable, "enable", "e", false, "enable the mod after registering it")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}

	if err := m.AddExternal(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorGreen("Registered"), path)

	if addEnable {
		if err := m.Enable(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorGreen("Enabled"), filepath.Base(path))
	}
	return nil
}
