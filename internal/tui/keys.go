package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines keybindings for the TUI
type KeyMap struct {
	mode string
}

// NewKeyMap creates a new keymap for the given mode
func NewKeyMap(mode string) *KeyMap {
	if mode != "standard" {
		mode = "vim"
	}
	return &KeyMap{mode: mode}
}

// Mode returns the current keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

// IsUp returns true if the key is an "up" navigation key
func (k *KeyMap) IsUp(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyUp {
		return true
	}
	return k.mode == "vim" && msg.String() == "k"
}

// IsDown returns true if the key is a "down" navigation key
func (k *KeyMap) IsDown(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyDown {
		return true
	}
	return k.mode == "vim" && msg.String() == "j"
}

// IsHome returns true if the key should go to first item
func (k *KeyMap) IsHome(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyHome {
		return true
	}
	return k.mode == "vim" && msg.String() == "g"
}

// IsEnd returns true if the key should go to last item
func (k *KeyMap) IsEnd(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEnd {
		return true
	}
	return k.mode == "vim" && msg.String() == "G"
}

// IsToggle returns true if the key enables or disables the selected mod
func (k *KeyMap) IsToggle(msg tea.KeyMsg) bool {
	return msg.String() == " "
}

// IsConfirm returns true if the key is a confirm/select key
func (k *KeyMap) IsConfirm(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter
}

// IsCancel returns true if the key is a cancel/back key
func (k *KeyMap) IsCancel(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEsc
}

// IsQuit returns true if the key is a quit key
func (k *KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return msg.String() == "q" || msg.Type == tea.KeyCtrlC
}

// IsDelete returns true if the key removes the selected mod
func (k *KeyMap) IsDelete(msg tea.KeyMsg) bool {
	return msg.String() == "d" || msg.Type == tea.KeyDelete
}

// IsRegulation returns true if the key makes the selected package's regulation active
func (k *KeyMap) IsRegulation(msg tea.KeyMsg) bool {
	return msg.String() == "R"
}

// IsRefresh returns true if the key rescans the mods folder
func (k *KeyMap) IsRefresh(msg tea.KeyMsg) bool {
	return msg.String() == "r" || msg.Type == tea.KeyF5
}

// IsSearch returns true if the key should focus the filter
func (k *KeyMap) IsSearch(msg tea.KeyMsg) bool {
	return msg.String() == "/"
}

// IsHelp returns true if the key should show help
func (k *KeyMap) IsHelp(msg tea.KeyMsg) bool {
	return msg.String() == "?"
}

// NavigationHelp returns help text for navigation keys
func (k *KeyMap) NavigationHelp() string {
	if k.mode == "vim" {
		return "j/k: navigate  space: toggle  d: remove  R: regulation  /: filter  r: refresh"
	}
	return "↑/↓: navigate  space: toggle  d: remove  R: regulation  /: filter  r: refresh"
}

// FullHelp returns complete help text
func (k *KeyMap) FullHelp() string {
	nav := `Navigation:
  j/k     Move down/up
  g/G     Go to first/last item`
	if k.mode != "vim" {
		nav = `Navigation:
  ↑/↓     Move up/down
  Home    Go to first item
  End     Go to last item`
	}

	return nav + `

Actions:
  enter   Select game
  space   Enable/disable mod
  d       Remove mod
  R       Use package regulation.bin
  r       Refresh
  /       Filter
  esc     Back
  ?       Help
  q       Quit`
}
