package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/DonovanMods/me3-manager/internal/core"
	"github.com/DonovanMods/me3-manager/internal/domain"
	"github.com/DonovanMods/me3-manager/internal/linker"

	"github.com/spf13/cobra"
)

var (
	installName    string
	installReplace bool
	installEnable  bool
	installLink    string
)

var installCmd = &cobra.Command{
	Use:   "install <path>",
	Short: "Install a mod into the game's mods folder",
	Long: `Install a DLL, a package folder, or an archive (.zip, .7z, .rar) into the
game's mods folder. Archives are unpacked and every mod found inside is
installed. Unpacking .7z and .rar archives needs the 7z tool.

Examples:
  me3m install ~/Downloads/ersc.zip --enable
  me3m install ~/mods/convergence --link symlink
  me3m install ~/mods/fps_unlock.dll --name fps --replace`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installName, "name", "", "name in the mods folder (default: source name)")
	installCmd.Flags().BoolVar(&installReplace, "replace", false, "overwrite a mod installed under the same name")
	installCmd.Flags().BoolVarP(&installEnable, "enable", "e", false, "enable the installed mods")
	installCmd.Flags().StringVar(&installLink, "link", "", "how to place the mod: copy, symlink or hardlink (default: config)")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}

	opts := core.InstallOptions{
		Name:    installName,
		Replace: installReplace,
		Enable:  installEnable,
	}
	if installLink != "" {
		method := domain.ParseLinkMethod(installLink)
		if method.String() != installLink {
			return fmt.Errorf("unknown link method %q; use copy, symlink or hardlink", installLink)
		}
		opts.Linker = linker.New(method)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mods, err := m.Install(ctx, args[0], opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		rows := make([]modJSON, 0, len(mods))
		for _, mod := range mods {
			rows = append(rows, toModJSON(mod))
		}
		return printJSON(out, rows)
	}

	for _, mod := range mods {
		state := ""
		if mod.Enabled {
			state = " (enabled)"
		}
		fmt.Fprintf(out, "%s %s %s%s\n", colorGreen("Installed"), mod.Kind, mod.Name, state)
	}
	return nil
}
