package tui_test

import (
	"testing"

	"github.com/DonovanMods/me3-manager/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestKeyMap_VimMode(t *testing.T) {
	km := tui.NewKeyMap("vim")

	assert.True(t, km.IsUp(runeKey('k')))
	assert.True(t, km.IsDown(runeKey('j')))
	assert.True(t, km.IsHome(runeKey('g')))
	assert.True(t, km.IsEnd(runeKey('G')))
	assert.True(t, km.IsToggle(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}))
	assert.True(t, km.IsConfirm(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.True(t, km.IsCancel(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.True(t, km.IsQuit(runeKey('q')))
	assert.True(t, km.IsDelete(runeKey('d')))
	assert.True(t, km.IsRegulation(runeKey('R')))
	assert.True(t, km.IsRefresh(runeKey('r')))
}

func TestKeyMap_StandardMode(t *testing.T) {
	km := tui.NewKeyMap("standard")

	assert.True(t, km.IsUp(tea.KeyMsg{Type: tea.KeyUp}))
	assert.True(t, km.IsDown(tea.KeyMsg{Type: tea.KeyDown}))
	assert.True(t, km.IsHome(tea.KeyMsg{Type: tea.KeyHome}))

	// Vim letters are not navigation here
	assert.False(t, km.IsUp(runeKey('k')))
	assert.False(t, km.IsDown(runeKey('j')))
	assert.False(t, km.IsEnd(runeKey('G')))
}

func TestKeyMap_Help(t *testing.T) {
	assert.Contains(t, tui.NewKeyMap("vim").NavigationHelp(), "j/k")
	assert.Contains(t, tui.NewKeyMap("standard").NavigationHelp(), "↑/↓")
	assert.Contains(t, tui.NewKeyMap("standard").FullHelp(), "Home")
}

func TestKeyMap_DefaultsToVim(t *testing.T) {
	assert.Equal(t, "vim", tui.NewKeyMap("").Mode())
	assert.Equal(t, "vim", tui.NewKeyMap("emacs").Mode())
}
