package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/spf13/cobra"
	"github.com/vaughan0/go-ini"
)

var configClear bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Mod config file commands",
	Long: `Commands for the config files native mods read their settings from.
By default a mod's config is <mods folder>/<mod name>/config.ini.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path <mod>",
	Short: "Print where a mod's config file is",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigPath,
}

var configSetPathCmd = &cobra.Command{
	Use:   "set-path <mod> [config-file]",
	Short: "Point a mod at a different config file",
	Long: `Save a custom config file location for a mod. Use --clear to go back to
the default location.

Examples:
  me3m config set-path ersc ~/mods/seamless/ersc_settings.ini
  me3m config set-path ersc --clear`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSetPath,
}

var configShowCmd = &cobra.Command{
	Use:   "show <mod>",
	Short: "Show a mod's config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit <mod>",
	Short: "Open a mod's config file in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigEdit,
}

func init() {
	configSetPathCmd.Flags().BoolVar(&configClear, "clear", false, "restore the default config location")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	m, err := gameManager(service)
	if err != nil {
		return err
	}

	path, err := resolveModPath(m, args[0])
	if err != nil {
		return err
	}
	cfgPath, err := m.ConfigPath(path)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cfgPath)
	return nil
}

func runConfigSetPath(cmd *cobra.Command, args []string) error {
	if configClear == (len(args) == 2) {
		return fmt.Errorf("give either a config file or --clear")
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	m, err := gameManager(service)
	if err != nil {
		return err
	}

	path, err := resolveModPath(m, args[0])
	if err != nil {
		return err
	}

	cfgPath := ""
	if !configClear {
		if cfgPath, err = filepath.Abs(args[1]); err != nil {
			return fmt.Errorf("resolving %s: %w", args[1], err)
		}
	}

	if err := m.SetConfigPath(path, cfgPath); err != nil {
		return err
	}

	current, err := m.ConfigPath(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s config is now %s\n", filepath.Base(path), current)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	m, err := gameManager(service)
	if err != nil {
		return err
	}

	path, err := resolveModPath(m, args[0])
	if err != nil {
		return err
	}
	text, err := m.ReadConfig(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cfgPath, _ := m.ConfigPath(path)
	if !strings.EqualFold(filepath.Ext(cfgPath), ".ini") {
		fmt.Fprint(out, text)
		return nil
	}

	file, err := ini.Load(strings.NewReader(text))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s is not valid INI: %v\n", colorYellow("Warning:"), cfgPath, err)
		fmt.Fprint(out, text)
		return nil
	}

	if jsonOutput {
		return printJSON(out, file)
	}
	fmt.Fprint(out, formatINI(file))
	return nil
}

// formatINI renders an INI file with sections and keys in a stable order
func formatINI(file ini.File) string {
	var b strings.Builder

	sections := make([]string, 0, len(file))
	for name := range file {
		sections = append(sections, name)
	}
	slices.Sort(sections)

	for i, name := range sections {
		section := file[name]
		if len(section) == 0 {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteString("\n")
		}
		if name != "" {
			fmt.Fprintf(&b, "[%s]\n", colorGreen(name))
		}

		keys := make([]string, 0, len(section))
		for k := range section {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s = %s\n", k, section[k])
		}
	}
	return b.String()
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	m, err := gameManager(service)
	if err != nil {
		return err
	}

	path, err := resolveModPath(m, args[0])
	if err != nil {
		return err
	}
	cfgPath, err := m.ConfigPath(path)
	if err != nil {
		return err
	}

	if _, err := m.ReadConfig(path); errors.Is(err, domain.ErrNotFound) {
		if err := m.WriteConfig(path, ""); err != nil {
			return err
		}
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	fields := strings.Fields(editor)
	c := exec.Command(fields[0], append(fields[1:], cfgPath)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("running %s: %w", fields[0], err)
	}
	return nil
}
