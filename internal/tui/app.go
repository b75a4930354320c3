// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/DonovanMods/me3-manager/internal/core"
	"github.com/DonovanMods/me3-manager/internal/domain"
	"github.com/DonovanMods/me3-manager/internal/storage/config"
	"github.com/DonovanMods/me3-manager/internal/tui/views"
	"github.com/DonovanMods/me3-manager/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewGameSelect ViewType = iota
	ViewMods
	ViewSettings
)

// EventMsg carries a mod state change from the event bus
type EventMsg struct {
	Event core.Event
}

// OpDoneMsg reports the result of an operation run on the worker
type OpDoneMsg struct {
	Status string
	Err    error
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// App is the main TUI application model
type App struct {
	service     *core.Service
	keys        *KeyMap
	worker      *core.Worker
	currentView ViewType
	showHelp    bool
	width       int
	height      int
	status      string
	err         error

	manager     *core.Manager
	events      <-chan core.Event
	unsubscribe func()
	watcher     io.Closer
	confirm     *domain.Mod

	gameSelect views.GameSelect
	mods       views.Mods
	settings   views.Settings
}

// NewApp creates a new TUI application
func NewApp(service *core.Service) App {
	mode := "vim"
	var games []*domain.Game
	if service != nil {
		mode = service.Config().Keybindings
		games = service.ListGames()
	}
	keys := NewKeyMap(mode)

	return App{
		service:     service,
		keys:        keys,
		worker:      core.NewWorker(8),
		currentView: ViewGameSelect,
		width:       80,
		height:      24,
		gameSelect:  views.NewGameSelect(games, keys),
	}
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// Status returns the last status line
func (a App) Status() string {
	return a.status
}

// Err returns the last error shown to the user
func (a App) Err() error {
	return a.err
}

// Mods returns the mod list view
func (a App) Mods() views.Mods {
	return a.mods
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return a.waitForEvent()
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a.updateCurrentView(msg)

	case views.GameSelectedMsg:
		return a.openGame(msg.Game)

	case views.BackMsg:
		a.closeGame()
		a.currentView = ViewGameSelect
		return a, nil

	case views.ToggleModMsg:
		return a.toggle(msg.Mod)

	case views.RemoveModMsg:
		mod := msg.Mod
		a.confirm = &mod
		a.status = fmt.Sprintf("Remove %s? (y/n)", mod.Name)
		return a, nil

	case views.SetRegulationMsg:
		m, path := a.manager, msg.Mod.Path
		return a, a.run("Regulation set to "+msg.Mod.Name, func() error {
			return m.SetRegulation(path)
		})

	case views.SettingsChangedMsg:
		return a.saveSettings(msg.Settings)

	case EventMsg:
		if a.manager != nil && msg.Event.GameID == a.manager.Game().ID {
			a.mods = a.mods.SetMods(a.manager.List())
		}
		return a, a.waitForEvent()

	case OpDoneMsg:
		a.err = msg.Err
		if msg.Err == nil {
			a.status = msg.Status
		} else {
			a.status = ""
		}
		if a.manager != nil {
			a.mods = a.mods.SetMods(a.manager.List())
		}
		return a, nil

	case ErrorMsg:
		a.err = msg.Err
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.confirm != nil {
		return a.answerConfirm(msg)
	}

	// Typing in the filter must not trigger global keys
	if a.currentView == ViewMods && a.mods.Filtering() {
		return a.updateCurrentView(msg)
	}

	switch {
	case a.keys.IsQuit(msg):
		a.Close()
		return a, tea.Quit

	case a.keys.IsHelp(msg):
		a.showHelp = !a.showHelp
		return a, nil

	case a.showHelp && a.keys.IsCancel(msg):
		a.showHelp = false
		return a, nil

	case a.currentView == ViewGameSelect && msg.String() == "s" && a.service != nil:
		cfg := a.service.Config()
		a.settings = views.NewSettings(views.SettingsData{
			LinkMethod:   cfg.DefaultLinkMethod,
			Keybindings:  a.keys.Mode(),
			ProfileRoot:  cfg.ProfileRoot,
			SettingsFile: cfg.SettingsFile,
			Me3Path:      cfg.Me3Path,
		}, a.keys)
		a.currentView = ViewSettings
		return a, nil

	case a.currentView == ViewMods && a.keys.IsRefresh(msg):
		return a, a.run("Refreshed", a.manager.Reload)
	}

	return a.updateCurrentView(msg)
}

func (a App) answerConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mod := *a.confirm
	a.confirm = nil
	a.status = ""

	if msg.String() != "y" {
		return a, nil
	}
	m := a.manager
	return a, a.run("Removed "+mod.Name, func() error {
		return m.Remove(mod.Path)
	})
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var model tea.Model
	var cmd tea.Cmd

	switch a.currentView {
	case ViewGameSelect:
		model, cmd = a.gameSelect.Update(msg)
		a.gameSelect = model.(views.GameSelect)
	case ViewMods:
		model, cmd = a.mods.Update(msg)
		a.mods = model.(views.Mods)
	case ViewSettings:
		model, cmd = a.settings.Update(msg)
		a.settings = model.(views.Settings)
	}

	return a, cmd
}

func (a App) openGame(game *domain.Game) (tea.Model, tea.Cmd) {
	if a.service == nil || game == nil {
		return a, nil
	}

	m, err := a.service.Manager(game.ID)
	if err != nil {
		a.err = err
		return a, nil
	}

	a.closeGame()
	a.manager = m
	a.events, a.unsubscribe = m.Subscribe(32)
	a.mods = views.NewMods(game, m.List(), a.keys)
	a.currentView = ViewMods
	a.err = nil
	a.status = ""

	if w, err := watch.New(m, a.service.Logger(), 0); err == nil {
		a.watcher = w
	} else {
		a.status = "Not watching for changes: " + err.Error()
	}

	return a, a.waitForEvent()
}

// closeGame stops following the open game's events and files
func (a *App) closeGame() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
	a.events = nil
	a.manager = nil
}

// Close releases the open game and stops the worker
func (a *App) Close() {
	a.closeGame()
	a.worker.Close()
}

func (a App) waitForEvent() tea.Cmd {
	events := a.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

func (a App) toggle(mod domain.Mod) (tea.Model, tea.Cmd) {
	m := a.manager
	if mod.Enabled {
		return a, a.run("Disabled "+mod.Name, func() error { return m.Disable(mod.Path) })
	}
	return a, a.run("Enabled "+mod.Name, func() error { return m.Enable(mod.Path) })
}

// run executes fn on the worker so file operations never block the UI loop
func (a App) run(status string, fn func() error) tea.Cmd {
	if a.manager == nil {
		return nil
	}
	result := a.worker.Submit(context.Background(), fn)
	return func() tea.Msg {
		return OpDoneMsg{Status: status, Err: <-result}
	}
}

func (a App) saveSettings(data views.SettingsData) (tea.Model, tea.Cmd) {
	if a.service == nil {
		return a, nil
	}

	err := a.service.UpdateConfig(func(c *config.Config) {
		c.DefaultLinkMethod = data.LinkMethod
		c.Keybindings = data.Keybindings
	})
	if err != nil {
		a.err = err
		return a, nil
	}

	a.keys = NewKeyMap(data.Keybindings)
	a.gameSelect = views.NewGameSelect(a.service.ListGames(), a.keys)
	a.settings = views.NewSettings(data, a.keys)
	a.status = "Settings saved"
	return a, nil
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	header := titleStyle.Render("me3m - Mod Engine 3 Manager")

	content := a.renderCurrentView()
	if a.showHelp {
		content = a.keys.FullHelp()
	}

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		content += "\n" + errStyle.Render(errorText(a.err))
	} else if a.status != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
		content += "\n" + statusStyle.Render(a.status)
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	footer := footerStyle.Render("q: quit  ?: help")
	if a.currentView == ViewMods {
		footer = footerStyle.Render(a.keys.NavigationHelp() + "  esc: back  q: quit")
	}

	return fmt.Sprintf("%s\n%s\n\n%s", header, content, footer)
}

func (a App) renderCurrentView() string {
	switch a.currentView {
	case ViewMods:
		return a.mods.View()
	case ViewSettings:
		return a.settings.View()
	default:
		return a.gameSelect.View()
	}
}

func errorText(err error) string {
	var perr *domain.ParseError
	if errors.As(err, &perr) {
		return fmt.Sprintf("Error: %s is malformed: %v", perr.Path, perr.Err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Run starts the TUI application. A non-empty gameID opens that game directly.
func Run(service *core.Service, gameID string) error {
	app := NewApp(service)
	if gameID != "" {
		game, err := service.GetGame(gameID)
		if err != nil {
			return err
		}
		model, _ := app.openGame(game)
		app = model.(App)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	final, err := p.Run()
	if a, ok := final.(App); ok {
		a.Close()
	}
	return err
}
