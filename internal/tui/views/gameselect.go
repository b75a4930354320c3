package views

import (
	"fmt"

	"github.com/DonovanMods/me3-manager/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// GameSelectedMsg is sent when a game is selected
type GameSelectedMsg struct {
	Game *domain.Game
}

// GameSelect is the game selection view model
type GameSelect struct {
	games    []*domain.Game
	keys     Keys
	selected int
	width    int
	height   int
}

// NewGameSelect creates a new game selection view
func NewGameSelect(games []*domain.Game, keys Keys) GameSelect {
	return GameSelect{
		games:  games,
		keys:   keys,
		width:  80,
		height: 24,
	}
}

// Selected returns the currently selected index
func (g GameSelect) Selected() int {
	return g.selected
}

// SelectedGame returns the currently selected game
func (g GameSelect) SelectedGame() *domain.Game {
	if len(g.games) == 0 || g.selected >= len(g.games) {
		return nil
	}
	return g.games[g.selected]
}

// Init implements tea.Model
func (g GameSelect) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (g GameSelect) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return g.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
		return g, nil
	}

	return g, nil
}

func (g GameSelect) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(g.games) == 0 {
		return g, nil
	}

	switch {
	case g.keys.IsUp(msg):
		g.selected = wrap(g.selected-1, len(g.games))
	case g.keys.IsDown(msg):
		g.selected = wrap(g.selected+1, len(g.games))
	case g.keys.IsHome(msg):
		g.selected = 0
	case g.keys.IsEnd(msg):
		g.selected = len(g.games) - 1
	case g.keys.IsConfirm(msg), g.keys.IsToggle(msg):
		game := g.SelectedGame()
		return g, func() tea.Msg {
			return GameSelectedMsg{Game: game}
		}
	}

	return g, nil
}

// View implements tea.Model
func (g GameSelect) View() string {
	if len(g.games) == 0 {
		return g.renderEmpty()
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	output := titleStyle.Render("Select a Game") + "\n\n"

	for i, game := range g.games {
		cursor := "  "
		style := itemStyle

		if i == g.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		output += style.Render(fmt.Sprintf("%s%s", cursor, game.Name)) + "\n"

		if i == g.selected {
			output += detailStyle.Render(fmt.Sprintf("ID: %s", game.ID)) + "\n"
			output += detailStyle.Render(fmt.Sprintf("Mods: %s", game.ModsDir)) + "\n"
			output += detailStyle.Render(fmt.Sprintf("Profile: %s", game.ProfilePath)) + "\n"
			if game.ExePath != "" {
				output += detailStyle.Render(fmt.Sprintf("Executable: %s", game.ExePath)) + "\n"
			}
			output += "\n"
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	output += helpStyle.Render("enter: select  s: settings")

	return output
}

func (g GameSelect) renderEmpty() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	return style.Render(`No games configured.

Games are read from games.yaml in the config directory, for example:
  games:
    sekiro:
      name: Sekiro
      cli_id: sekiro
`)
}
