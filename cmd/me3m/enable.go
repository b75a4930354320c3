package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <mod>...",
	Short: "Enable mods in the ME3 profile",
	Long: `Enable one or more mods. A mod may be named by its display name, its file
or folder name, or its path.

Examples:
  me3m enable ersc
  me3m enable ersc.dll convergence --game eldenring`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEnable,
}

var disableCmd = &cobra.Command{
	Use:   "disable <mod>...",
	Short: "Disable mods in the ME3 profile",
	Long: `Disable one or more mods. Files stay where they are.

Examples:
  me3m disable ersc
  me3m disable /opt/mods/seamless.dll`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDisable,
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func runEnable(cmd *cobra.Command, args []string) error {
	return setEnabled(cmd, args, true)
}

func runDisable(cmd *cobra.Command, args []string) error {
	return setEnabled(cmd, args, false)
}

func setEnabled(cmd *cobra.Command, refs []string, enable bool) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, ref := range refs {
		path, err := resolveModPath(m, ref)
		if err != nil {
			return err
		}

		if enable {
			if err := m.Enable(path); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", colorGreen("Enabled"), ref)
		} else {
			if err := m.Disable(path); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", colorYellow("Disabled"), ref)
		}
	}
	return nil
}
