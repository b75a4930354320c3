package main

import (
	"fmt"

	"github.com/DonovanMods/me3-manager/internal/storage/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	gameAddName    string
	gameAddCLIID   string
	gameAddModsDir string
	gameAddProfile string
	gameAddExe     string
	gameExeClear   bool
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Game management commands",
	Long:  `Commands for the games me3m manages. Elden Ring and Nightreign are built in.`,
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured games",
	Args:  cobra.NoArgs,
	RunE:  runGameList,
}

var gameSetDefaultCmd = &cobra.Command{
	Use:   "set-default <game-id>",
	Short: "Set the default game",
	Long: `Set the default game so you don't have to specify --game for every command.

Example:
  me3m game set-default nightreign`,
	Args: cobra.ExactArgs(1),
	RunE: runGameSetDefault,
}

var gameClearDefaultCmd = &cobra.Command{
	Use:   "clear-default",
	Short: "Clear the default game setting",
	Args:  cobra.NoArgs,
	RunE:  runGameClearDefault,
}

var gameSetExeCmd = &cobra.Command{
	Use:   "set-exe <game-id> [executable]",
	Short: "Launch a game through a custom executable",
	Long: `Save a custom game executable. me3 is then started with --exe and
--skip-steam-init instead of detecting the game through Steam.

Examples:
  me3m game set-exe eldenring ~/Games/ELDEN RING/Game/eldenring.exe
  me3m game set-exe eldenring --clear`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGameSetExe,
}

var gameAddCmd = &cobra.Command{
	Use:   "add <game-id>",
	Short: "Add or update a game in games.yaml",
	Long: `Add a game ME3 supports that is not built in, or override fields of a
built-in game. Relative paths are resolved against the ME3 profile folder.

Example:
  me3m game add sekiro --name Sekiro --cli-id sekiro`,
	Args: cobra.ExactArgs(1),
	RunE: runGameAdd,
}

var gameRemoveCmd = &cobra.Command{
	Use:   "remove <game-id>",
	Short: "Remove a game from games.yaml",
	Args:  cobra.ExactArgs(1),
	RunE:  runGameRemove,
}

func init() {
	gameSetExeCmd.Flags().BoolVar(&gameExeClear, "clear", false, "let ME3 find the game again")

	gameAddCmd.Flags().StringVar(&gameAddName, "name", "", "display name")
	gameAddCmd.Flags().StringVar(&gameAddCLIID, "cli-id", "", "value me3 expects for --game")
	gameAddCmd.Flags().StringVar(&gameAddModsDir, "mods-dir", "", "mods folder (default: <id>-mods)")
	gameAddCmd.Flags().StringVar(&gameAddProfile, "profile", "", "ME3 profile file (default: <id>-default.me3)")
	gameAddCmd.Flags().StringVar(&gameAddExe, "exe", "", "custom game executable")

	gameCmd.AddCommand(gameListCmd)
	gameCmd.AddCommand(gameSetDefaultCmd)
	gameCmd.AddCommand(gameClearDefaultCmd)
	gameCmd.AddCommand(gameSetExeCmd)
	gameCmd.AddCommand(gameAddCmd)
	gameCmd.AddCommand(gameRemoveCmd)
	rootCmd.AddCommand(gameCmd)
}

type gameJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CLIID      string `json:"cli_id"`
	ModsDir    string `json:"mods_dir"`
	Profile    string `json:"profile"`
	Executable string `json:"executable,omitempty"`
	Default    bool   `json:"default"`
}

func runGameList(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	var games []gameJSON
	for _, g := range service.ListGames() {
		exe, err := service.GameExecutable(g.ID)
		if err != nil {
			return err
		}
		games = append(games, gameJSON{
			ID:         g.ID,
			Name:       g.Name,
			CLIID:      g.CLIID,
			ModsDir:    g.ModsDir,
			Profile:    g.ProfilePath,
			Executable: exe,
			Default:    g.ID == service.DefaultGameID(),
		})
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, games)
	}

	rows := make([][]string, 0, len(games))
	for _, g := range games {
		id := g.ID
		if g.Default {
			id += " *"
		}
		exe := g.Executable
		if exe == "" {
			exe = "(steam)"
		}
		rows = append(rows, []string{id, g.Name, g.ModsDir, exe})
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "MODS FOLDER", "EXECUTABLE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style { return cell })
	fmt.Fprintln(out, t.Render())
	return nil
}

func runGameSetDefault(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	game, err := service.GetGame(args[0])
	if err != nil {
		return err
	}
	if err := service.SetDefaultGame(game.ID); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Default game set to: %s (%s)\n", game.Name, game.ID)
	return nil
}

func runGameClearDefault(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	old := service.DefaultGameID()
	if old == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No default game was set")
		return nil
	}
	if err := service.UpdateConfig(func(c *config.Config) { c.DefaultGame = "" }); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared default game (was: %s)\n", old)
	return nil
}

func runGameSetExe(cmd *cobra.Command, args []string) error {
	if gameExeClear == (len(args) == 2) {
		return fmt.Errorf("give either an executable or --clear")
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}

	exe := ""
	if !gameExeClear {
		exe = args[1]
	}
	if err := service.SetGameExecutable(args[0], exe); err != nil {
		return err
	}

	if exe == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s will be found by ME3\n", args[0])
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s will launch %s\n", args[0], exe)
	}
	return nil
}

func runGameAdd(cmd *cobra.Command, args []string) error {
	svcCfg, err := getServiceConfig()
	if err != nil {
		return err
	}

	cfg := config.GameConfig{
		Name:       gameAddName,
		CLIID:      gameAddCLIID,
		ModsDir:    gameAddModsDir,
		Profile:    gameAddProfile,
		Executable: gameAddExe,
	}
	if _, builtin := config.BuiltinGames()[args[0]]; !builtin && cfg.CLIID == "" {
		cfg.CLIID = args[0]
	}

	if err := config.SaveGame(svcCfg.ConfigDir, args[0], cfg); err != nil {
		return fmt.Errorf("saving game: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved game %s\n", args[0])
	return nil
}

func runGameRemove(cmd *cobra.Command, args []string) error {
	svcCfg, err := getServiceConfig()
	if err != nil {
		return err
	}

	if err := config.DeleteGame(svcCfg.ConfigDir, args[0]); err != nil {
		return fmt.Errorf("removing game %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed game %s from games.yaml\n", args[0])
	return nil
}
