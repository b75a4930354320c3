package views_test

import (
	"testing"

	"github.com/DonovanMods/me3-manager/internal/domain"
	"github.com/DonovanMods/me3-manager/internal/tui"
	"github.com/DonovanMods/me3-manager/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettings(method domain.LinkMethod) views.Settings {
	return views.NewSettings(views.SettingsData{LinkMethod: method, Keybindings: "vim"}, tui.NewKeyMap("vim"))
}

func TestSettings_InitialState(t *testing.T) {
	model := newSettings(domain.LinkCopy)

	assert.Equal(t, 0, model.Selected())
	view := model.View()
	assert.Contains(t, view, "● copy")
	assert.Contains(t, view, "○ symlink")
	assert.Contains(t, view, "● vim")
	assert.Contains(t, view, "archives are always copied", "hint for the highlighted row")
	assert.NotContains(t, view, "Profiles", "no paths given")
}

func TestSettings_ShowsPaths(t *testing.T) {
	model := views.NewSettings(views.SettingsData{
		ProfileRoot:  "/home/tarnished/.config/me3/profiles",
		SettingsFile: "/home/tarnished/.config/me3/manager_settings.json",
		Me3Path:      "me3",
	}, tui.NewKeyMap("vim"))

	view := model.View()
	assert.Contains(t, view, "/home/tarnished/.config/me3/profiles")
	assert.Contains(t, view, "manager_settings.json")
	assert.Equal(t, "vim", model.CurrentSettings().Keybindings, "unknown style falls back to vim")
}

func TestSettings_Navigate(t *testing.T) {
	newModel, _ := newSettings(domain.LinkCopy).Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, newModel.(views.Settings).Selected())
}

func TestSettings_CycleLinkMethod(t *testing.T) {
	tests := []struct {
		name string
		from domain.LinkMethod
		key  tea.KeyMsg
		want domain.LinkMethod
	}{
		{"copy to symlink", domain.LinkCopy, tea.KeyMsg{Type: tea.KeyEnter}, domain.LinkSymlink},
		{"symlink to hardlink", domain.LinkSymlink, tea.KeyMsg{Type: tea.KeyRight}, domain.LinkHardlink},
		{"hardlink wraps to copy", domain.LinkHardlink, tea.KeyMsg{Type: tea.KeyEnter}, domain.LinkCopy},
		{"back from copy wraps to hardlink", domain.LinkCopy, tea.KeyMsg{Type: tea.KeyLeft}, domain.LinkHardlink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newModel, cmd := newSettings(tt.from).Update(tt.key)
			assert.Equal(t, tt.want, newModel.(views.Settings).CurrentSettings().LinkMethod)

			require.NotNil(t, cmd)
			changed, ok := cmd().(views.SettingsChangedMsg)
			require.True(t, ok)
			assert.Equal(t, tt.want, changed.Settings.LinkMethod)
		})
	}
}

func TestSettings_CycleKeybindings(t *testing.T) {
	model, _ := newSettings(domain.LinkCopy).Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "standard", model.(views.Settings).CurrentSettings().Keybindings)
	assert.Contains(t, model.View(), "● standard")
}

func TestSettings_EditKeepsPaths(t *testing.T) {
	model := views.NewSettings(views.SettingsData{ProfileRoot: "/p", Me3Path: "/bin/me3"}, tui.NewKeyMap("vim"))

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	changed := cmd().(views.SettingsChangedMsg)
	assert.Equal(t, domain.LinkSymlink, changed.Settings.LinkMethod)
	assert.Equal(t, "/p", changed.Settings.ProfileRoot)
	assert.Equal(t, "/bin/me3", changed.Settings.Me3Path)
}

func TestSettings_EscGoesBack(t *testing.T) {
	_, cmd := newSettings(domain.LinkCopy).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, views.BackMsg{}, cmd())
}
