package main

import (
	"fmt"

	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	listEnabled  bool
	listExternal bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List mods",
	Long: `List the mods in the game's mods folder, registered external mods and
any profile entries whose files are gone.

Examples:
  me3m list --game eldenring
  me3m list --enabled
  me3m list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listEnabled, "enabled", false, "only show enabled mods")
	listCmd.Flags().BoolVar(&listExternal, "external", false, "only show external mods")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	m, err := gameManager(service)
	if err != nil {
		return err
	}

	var mods []domain.Mod
	for _, mod := range m.List() {
		if listEnabled && !mod.Enabled {
			continue
		}
		if listExternal && !mod.External {
			continue
		}
		mods = append(mods, mod)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		rows := make([]modJSON, 0, len(mods))
		for _, mod := range mods {
			rows = append(rows, toModJSON(mod))
		}
		return printJSON(out, rows)
	}

	if verbose {
		game := m.Game()
		fmt.Fprintf(out, "Mods for %s\nFolder:  %s\nProfile: %s\n\n", game.Name, game.ModsDir, game.ProfilePath)
	}

	if len(mods) == 0 {
		fmt.Fprintln(out, "No mods found.")
		return nil
	}

	fmt.Fprintln(out, modTable(mods))

	if verbose {
		fmt.Fprintf(out, "\nTotal: %d mod(s)\n", len(mods))
	}
	return nil
}

func modTable(mods []domain.Mod) string {
	rows := make([][]string, 0, len(mods))
	for _, mod := range mods {
		rows = append(rows, []string{
			mod.Name,
			mod.Kind.String(),
			yesNo(mod.Enabled),
			modSource(mod),
			regulationState(mod),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "KIND", "ENABLED", "SOURCE", "REGULATION").
		Rows(rows...)

	if colorEnabled() {
		header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)
		faint := cell.Foreground(lipgloss.Color("241"))
		missing := cell.Foreground(lipgloss.Color("196"))
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case mods[row].Missing:
				return missing
			case !mods[row].Enabled:
				return faint
			default:
				return cell
			}
		})
	} else {
		cell := lipgloss.NewStyle().Padding(0, 1)
		t = t.StyleFunc(func(row, col int) lipgloss.Style { return cell })
	}

	return t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func modSource(mod domain.Mod) string {
	switch {
	case mod.Missing:
		return "missing"
	case mod.External:
		return "external"
	case mod.Parent != "":
		return "in " + mod.Parent
	default:
		return "mods folder"
	}
}

func regulationState(mod domain.Mod) string {
	switch {
	case mod.RegulationActive:
		return "active"
	case mod.HasRegulation:
		return "disabled"
	default:
		return "-"
	}
}
