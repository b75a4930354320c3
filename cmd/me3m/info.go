package main

import (
	"context"
	"fmt"

	"github.com/DonovanMods/me3-manager/internal/launcher"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the Mod Engine 3 installation",
	Long:  `Run 'me3 info' and show the version, folders and Steam status it reports.`,
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	info, err := launcher.GetInfo(context.Background(), service.Config().Me3Path, launcher.InFlatpak())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, info)
	}

	fields := []struct{ label, value string }{
		{"Version", info.Version},
		{"Commit", info.CommitID},
		{"Installation prefix", info.InstallPrefix},
		{"Profile directory", info.ProfileDir},
		{"Logs directory", info.LogsDir},
		{"Steam status", info.SteamStatus},
		{"Steam path", info.SteamPath},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(out, "%-20s %s\n", f.label+":", f.value)
	}

	if info.ProfileDir != "" && info.ProfileDir != service.Config().ProfileRoot {
		fmt.Fprintf(out, "\n%s me3 uses %s but profile_root is %s\n",
			colorYellow("Warning:"), info.ProfileDir, service.Config().ProfileRoot)
	}
	return nil
}
