package views

import (
	"fmt"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ToggleModMsg is sent to enable or disable a mod
type ToggleModMsg struct {
	Mod domain.Mod
}

// RemoveModMsg is sent to remove a mod
type RemoveModMsg struct {
	Mod domain.Mod
}

// SetRegulationMsg is sent to make a package's regulation.bin the active one
type SetRegulationMsg struct {
	Mod domain.Mod
}

// Mods lists a game's mods with their enabled state
type Mods struct {
	game      *domain.Game
	mods      []domain.Mod
	visible   []domain.Mod
	keys      Keys
	filter    textinput.Model
	filtering bool
	selected  int
	width     int
	height    int
}

// NewMods creates the mod list view for a game
func NewMods(game *domain.Game, mods []domain.Mod, keys Keys) Mods {
	ti := textinput.New()
	ti.Placeholder = "Filter mods..."
	ti.CharLimit = 100
	ti.Width = 40

	m := Mods{
		game:   game,
		keys:   keys,
		filter: ti,
		width:  80,
		height: 24,
	}
	return m.SetMods(mods)
}

// SetMods replaces the listed mods, keeping the cursor on the same mod when it is still listed
func (m Mods) SetMods(mods []domain.Mod) Mods {
	var current string
	if mod := m.SelectedMod(); mod != nil {
		current = mod.Path
	}

	m.mods = mods
	m.applyFilter()

	m.selected = 0
	for i, mod := range m.visible {
		if mod.Path == current {
			m.selected = i
			break
		}
	}
	return m
}

func (m *Mods) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		m.visible = m.mods
		return
	}

	m.visible = nil
	for _, mod := range m.mods {
		if strings.Contains(strings.ToLower(mod.Name), query) {
			m.visible = append(m.visible, mod)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

// Game returns the game whose mods are listed
func (m Mods) Game() *domain.Game {
	return m.game
}

// Selected returns the currently selected index
func (m Mods) Selected() int {
	return m.selected
}

// ModCount returns the number of listed mods after filtering
func (m Mods) ModCount() int {
	return len(m.visible)
}

// Filtering reports whether key presses go to the filter input
func (m Mods) Filtering() bool {
	return m.filtering
}

// SelectedMod returns the currently selected mod
func (m Mods) SelectedMod() *domain.Mod {
	if len(m.visible) == 0 || m.selected >= len(m.visible) {
		return nil
	}
	return &m.visible[m.selected]
}

// Init implements tea.Model
func (m Mods) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Mods) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Mods) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.keys.IsCancel(msg):
		m.filter.SetValue("")
		fallthrough
	case m.keys.IsConfirm(msg):
		m.filtering = false
		m.filter.Blur()
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Mods) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.keys.IsSearch(msg):
		m.filtering = true
		return m, m.filter.Focus()
	case m.keys.IsCancel(msg):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.applyFilter()
			return m, nil
		}
		return m, func() tea.Msg { return BackMsg{} }
	}

	if len(m.visible) == 0 {
		return m, nil
	}

	switch {
	case m.keys.IsUp(msg):
		m.selected = wrap(m.selected-1, len(m.visible))
	case m.keys.IsDown(msg):
		m.selected = wrap(m.selected+1, len(m.visible))
	case m.keys.IsHome(msg):
		m.selected = 0
	case m.keys.IsEnd(msg):
		m.selected = len(m.visible) - 1
	case m.keys.IsToggle(msg):
		mod := *m.SelectedMod()
		return m, func() tea.Msg { return ToggleModMsg{Mod: mod} }
	case m.keys.IsDelete(msg):
		mod := *m.SelectedMod()
		return m, func() tea.Msg { return RemoveModMsg{Mod: mod} }
	case m.keys.IsRegulation(msg):
		mod := *m.SelectedMod()
		if !mod.HasRegulation {
			return m, nil
		}
		return m, func() tea.Msg { return SetRegulationMsg{Mod: mod} }
	}

	return m, nil
}

// View implements tea.Model
func (m Mods) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	disabledStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("241"))

	missingStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("196"))

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	gameName := "No game"
	if m.game != nil {
		gameName = m.game.Name
	}
	output := titleStyle.Render("Mods: "+gameName) + "\n"

	enabled := 0
	for _, mod := range m.mods {
		if mod.Enabled {
			enabled++
		}
	}
	output += infoStyle.Render(fmt.Sprintf("%d of %d enabled", enabled, len(m.mods))) + "\n"

	if m.filtering || m.filter.Value() != "" {
		output += m.filter.View() + "\n"
	}
	output += "\n"

	if len(m.visible) == 0 {
		if len(m.mods) == 0 && m.game != nil {
			output += itemStyle.Render("No mods found in "+m.game.ModsDir) + "\n"
		} else {
			output += itemStyle.Render("No mods match the filter.") + "\n"
		}
		return output
	}

	for i, mod := range m.visible {
		cursor := "  "
		style := itemStyle

		switch {
		case i == m.selected:
			cursor = "▸ "
			style = selectedStyle
		case mod.Missing:
			style = missingStyle
		case !mod.Enabled:
			style = disabledStyle
		}

		status := "[✓]"
		if !mod.Enabled {
			status = "[ ]"
		}

		line := fmt.Sprintf("%s%s %s", cursor, status, mod.Name)
		if tags := modTags(mod); tags != "" {
			line += "  " + tags
		}
		output += style.Render(line) + "\n"

		if i == m.selected {
			output += detailStyle.Render(mod.Path) + "\n"
			if mod.ConfigPath != "" {
				output += detailStyle.Render("Config: "+mod.ConfigPath) + "\n"
			}
			output += "\n"
		}
	}

	return output
}

func modTags(mod domain.Mod) string {
	var tags []string
	if mod.Kind == domain.KindPackage {
		tags = append(tags, "package")
	}
	if mod.External {
		tags = append(tags, "external")
	}
	if mod.Missing {
		tags = append(tags, "missing")
	}
	if mod.RegulationActive {
		tags = append(tags, "regulation")
	} else if mod.HasRegulation {
		tags = append(tags, "regulation off")
	}
	if len(tags) == 0 {
		return ""
	}
	return "(" + strings.Join(tags, ", ") + ")"
}
