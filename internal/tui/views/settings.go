package views

import (
	"slices"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SettingsData is what the settings screen edits. The paths are shown but
// only change through config.yaml.
type SettingsData struct {
	LinkMethod  domain.LinkMethod
	Keybindings string

	ProfileRoot  string
	SettingsFile string
	Me3Path      string
}

// SettingsChangedMsg carries the edited settings to be saved
type SettingsChangedMsg struct {
	Settings SettingsData
}

// choice is one editable row: a fixed set of values bound to a SettingsData field
type choice struct {
	label  string
	hint   string
	values []string
	get    func(SettingsData) string
	set    func(*SettingsData, string)
}

var choices = []choice{
	{
		label:  "Install with",
		hint:   "how `install` places mods in the mods folder; archives are always copied",
		values: []string{"copy", "symlink", "hardlink"},
		get:    func(d SettingsData) string { return d.LinkMethod.String() },
		set:    func(d *SettingsData, v string) { d.LinkMethod = domain.ParseLinkMethod(v) },
	},
	{
		label:  "Keys",
		hint:   "vim adds h/j/k/l, g/G and / to the arrow keys",
		values: []string{"vim", "standard"},
		get:    func(d SettingsData) string { return d.Keybindings },
		set:    func(d *SettingsData, v string) { d.Keybindings = v },
	},
}

var (
	settingsTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	labelStyle    = lipgloss.NewStyle().Width(14)
	activeLabel   = labelStyle.Foreground(lipgloss.Color("205")).Bold(true)
	chosenValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	otherValue    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(16)
	pathsBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("241")).Padding(0, 1)
)

// Settings edits the app-wide options saved in config.yaml
type Settings struct {
	data     SettingsData
	keys     Keys
	selected int
}

// NewSettings creates the settings screen for data
func NewSettings(data SettingsData, keys Keys) Settings {
	if data.Keybindings != "standard" {
		data.Keybindings = "vim"
	}
	return Settings{data: data, keys: keys}
}

// Selected returns the index of the highlighted row
func (s Settings) Selected() int {
	return s.selected
}

// CurrentSettings returns the edited values
func (s Settings) CurrentSettings() SettingsData {
	return s.data
}

// Init implements tea.Model
func (s Settings) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s Settings) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch {
	case s.keys.IsCancel(key):
		return s, func() tea.Msg { return BackMsg{} }
	case s.keys.IsUp(key):
		s.selected = wrap(s.selected-1, len(choices))
	case s.keys.IsDown(key):
		s.selected = wrap(s.selected+1, len(choices))
	case s.keys.IsConfirm(key), s.keys.IsToggle(key), key.Type == tea.KeyRight:
		return s.step(1)
	case key.Type == tea.KeyLeft:
		return s.step(-1)
	}
	return s, nil
}

// step moves the highlighted row to the next or previous value and asks for a save
func (s Settings) step(delta int) (tea.Model, tea.Cmd) {
	c := choices[s.selected]
	i := max(slices.Index(c.values, c.get(s.data)), 0)
	c.set(&s.data, c.values[wrap(i+delta, len(c.values))])

	data := s.data
	return s, func() tea.Msg { return SettingsChangedMsg{Settings: data} }
}

// View implements tea.Model
func (s Settings) View() string {
	var b strings.Builder
	b.WriteString(settingsTitle.Render("Settings") + "\n\n")

	for i, c := range choices {
		label := labelStyle.Render(c.label)
		if i == s.selected {
			label = activeLabel.Render(c.label)
		}

		current := c.get(s.data)
		vals := make([]string, len(c.values))
		for j, v := range c.values {
			if v == current {
				vals[j] = chosenValue.Render("● " + v)
			} else {
				vals[j] = otherValue.Render("○ " + v)
			}
		}

		b.WriteString(label + strings.Join(vals, "  ") + "\n")
		if i == s.selected {
			b.WriteString(hintStyle.Render(c.hint) + "\n")
		}
	}

	paths := []struct{ label, value string }{
		{"Profiles", s.data.ProfileRoot},
		{"State file", s.data.SettingsFile},
		{"me3", s.data.Me3Path},
	}
	var lines []string
	for _, p := range paths {
		if p.value != "" {
			lines = append(lines, labelStyle.Render(p.label)+p.value)
		}
	}
	if len(lines) > 0 {
		b.WriteString("\n" + pathsBox.Render(strings.Join(lines, "\n")) + "\n")
	}

	b.WriteString("\n" + otherValue.Render("←/→ or enter: change  esc: back  paths: edit config.yaml"))
	return b.String()
}
