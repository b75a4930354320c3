// Package views holds the screens of the terminal UI.
package views

import tea "github.com/charmbracelet/bubbletea"

// Keys decides which action a key press maps to
type Keys interface {
	IsUp(tea.KeyMsg) bool
	IsDown(tea.KeyMsg) bool
	IsHome(tea.KeyMsg) bool
	IsEnd(tea.KeyMsg) bool
	IsToggle(tea.KeyMsg) bool
	IsConfirm(tea.KeyMsg) bool
	IsCancel(tea.KeyMsg) bool
	IsDelete(tea.KeyMsg) bool
	IsRegulation(tea.KeyMsg) bool
	IsSearch(tea.KeyMsg) bool
}

// BackMsg asks the app to leave the current view
type BackMsg struct{}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i%n + n) % n
}
