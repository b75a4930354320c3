package core

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/DonovanMods/me3-manager/internal/domain"
	"github.com/DonovanMods/me3-manager/internal/storage/config"
)

// ProfileStore persists a game's ME3 profile
type ProfileStore interface {
	LoadProfile(path string) (*domain.Profile, error)
	SaveProfile(p *domain.Profile) error
}

// Manager owns one game's mod list and profile. Every successful mutation
// leaves the in-memory profile equal to the file on disk; a failed one
// leaves both as they were.
type Manager struct {
	mu         sync.Mutex
	game       *domain.Game
	store      ProfileStore
	settings   *SettingsContext
	repo       *Repository
	events     *EventBus
	logger     *slog.Logger
	linkMethod domain.LinkMethod
	profile    *domain.Profile
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithLogger sets the logger for scan warnings and recovered errors
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithEvents publishes state changes on bus
func WithEvents(bus *EventBus) ManagerOption {
	return func(m *Manager) { m.events = bus }
}

// WithLinkMethod sets how Install places mods by default
func WithLinkMethod(method domain.LinkMethod) ManagerOption {
	return func(m *Manager) { m.linkMethod = method }
}

// NewManager loads the game's profile, creating it when ME3 has not yet.
// A malformed profile is backed up and treated as having no enabled mods.
func NewManager(game *domain.Game, store ProfileStore, settings *SettingsContext, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		game:       game,
		store:      store,
		settings:   settings,
		linkMethod: domain.LinkCopy,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.events == nil {
		m.events = NewEventBus()
	}
	m.logger = m.logger.With("game", game.ID)
	m.repo = NewRepository(m.logger)

	if err := os.MkdirAll(game.ModsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating mods folder: %w", err)
	}

	profile, err := m.loadProfile()
	if err != nil {
		return nil, err
	}
	m.profile = profile

	return m, nil
}

// Game returns the game this manager serves
func (m *Manager) Game() *domain.Game {
	return m.game
}

// Profile returns a copy of the current profile
func (m *Manager) Profile() *domain.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.Clone()
}

// EnabledPaths returns the enabled mod paths in load order
func (m *Manager) EnabledPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.EnabledPaths()
}

// Subscribe returns a channel of this manager's state changes and a function to stop following them
func (m *Manager) Subscribe(buf int) (<-chan Event, func()) {
	return m.events.Subscribe(buf)
}

// List returns the game's mods with their current state
func (m *Manager) List() []domain.Mod {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.List(m.game, m.profile, m.settings.Snapshot())
}

// Find resolves ref to a listed mod. ref may be a path, a file or folder
// name, or a display name; names match case-insensitively.
func (m *Manager) Find(ref string) (domain.Mod, error) {
	mods := m.List()

	if abs, err := filepath.Abs(ref); err == nil && strings.ContainsRune(ref, filepath.Separator) {
		for _, mod := range mods {
			if mod.Path == abs {
				return mod, nil
			}
		}
	}

	var matches []domain.Mod
	for _, mod := range mods {
		if strings.EqualFold(filepath.Base(mod.Path), ref) || strings.EqualFold(mod.Name, ref) {
			matches = append(matches, mod)
		}
	}

	switch len(matches) {
	case 0:
		return domain.Mod{}, fmt.Errorf("%q: %w", ref, domain.ErrModNotFound)
	case 1:
		return matches[0], nil
	default:
		return domain.Mod{}, fmt.Errorf("%w: %q matches %d mods, use the full path", domain.ErrValidation, ref, len(matches))
	}
}

// Enable adds a mod to the profile and saves it. Enabling an enabled mod
// does nothing.
func (m *Manager) Enable(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enableLocked(path)
}

func (m *Manager) enableLocked(path string) error {
	path, err := absPath(path)
	if err != nil {
		return err
	}
	if m.profile.IsEnabled(path) {
		return nil
	}

	if !fileExists(path) {
		return fmt.Errorf("%s: %w", path, domain.ErrModNotFound)
	}
	kind := Classify(path)
	if kind == domain.KindNotAMod {
		return fmt.Errorf("%w: %s is not a mod", domain.ErrValidation, path)
	}
	if !m.isInternal(path) && !m.settings.Snapshot().IsRegistered(m.game.ID, path) {
		return fmt.Errorf("%w: %s is outside the mods folder and not registered", domain.ErrValidation, path)
	}

	entry := domain.ProfileEntry{Path: path, Kind: kind}
	if kind == domain.KindPackage {
		entry.ID = filepath.Base(path)
	}

	if err := m.mutateProfile(func(p *domain.Profile) bool { return p.Enable(entry) }); err != nil {
		return fmt.Errorf("enabling %s: %w", DisplayName(path), err)
	}

	m.logger.Debug("mod enabled", "path", path)
	m.publish(EventModEnabled, path)
	return nil
}

// Disable removes a mod from the profile and saves it. Paths that are only
// in the profile, with no file behind them, can be disabled too.
func (m *Manager) Disable(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disableLocked(path)
}

func (m *Manager) disableLocked(path string) error {
	path, err := absPath(path)
	if err != nil {
		return err
	}
	if !m.profile.IsEnabled(path) {
		return nil
	}

	if err := m.mutateProfile(func(p *domain.Profile) bool { return p.Disable(path) }); err != nil {
		return fmt.Errorf("disabling %s: %w", DisplayName(path), err)
	}

	m.logger.Debug("mod disabled", "path", path)
	m.publish(EventModDisabled, path)
	return nil
}

// AddExternal registers a DLL that lives outside the mods folder. It does
// not enable it.
func (m *Manager) AddExternal(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, err := absPath(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if info.IsDir() || Classify(path) != domain.KindNative {
		return fmt.Errorf("%w: external mods must be .dll files", domain.ErrValidation)
	}
	if m.isInternal(path) {
		return fmt.Errorf("%w: %s is already in the mods folder", domain.ErrValidation, path)
	}

	err = m.settings.Update(func(s *domain.ManagerSettings) error {
		if !s.Register(m.game.ID, path) {
			return fmt.Errorf("%w: %s is already registered", domain.ErrValidation, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("external mod registered", "path", path)
	m.publish(EventModAdded, path)
	return nil
}

// Remove disables a mod and forgets it. External mods are only
// de-registered and DLLs nested in a package are only dropped from the
// profile. Other mods in the mods folder are deleted from disk, along with
// a native mod's config folder; removing a package also disables every
// entry inside it.
func (m *Manager) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, err := absPath(path)
	if err != nil {
		return err
	}

	settings := m.settings.Snapshot()
	external := settings.IsRegistered(m.game.ID, path)
	internal := m.isInternal(path) && fileExists(path)
	if !external && !internal && !m.profile.IsEnabled(path) {
		return fmt.Errorf("%s: %w", path, domain.ErrModNotFound)
	}
	deleteFiles := internal && !external && !m.isNested(path)
	pkg := deleteFiles && Classify(path) == domain.KindPackage

	var gone []string
	for _, p := range m.profile.EnabledPaths() {
		if p == path || (pkg && isUnder(path, p)) {
			gone = append(gone, p)
		}
	}
	if len(gone) > 0 {
		err := m.mutateProfile(func(p *domain.Profile) bool {
			for _, g := range gone {
				p.Disable(g)
			}
			return true
		})
		if err != nil {
			return fmt.Errorf("disabling %s: %w", DisplayName(path), err)
		}
		for _, g := range gone {
			m.publish(EventModDisabled, g)
		}
	}

	if deleteFiles {
		if err := m.deleteModFiles(path); err != nil {
			return err
		}
	}

	var overrides []string
	for _, p := range append([]string{path}, gone...) {
		if _, ok := settings.ConfigOverride(p); ok {
			overrides = append(overrides, p)
		}
	}
	if external || len(overrides) > 0 {
		err := m.settings.Update(func(s *domain.ManagerSettings) error {
			s.Unregister(m.game.ID, path)
			for _, p := range overrides {
				s.SetConfigOverride(p, "")
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	m.logger.Info("mod removed", "path", path, "external", external, "deleted", deleteFiles)
	m.publish(EventModRemoved, path)
	return nil
}

// IsNested reports whether path is a DLL shipped inside a package folder.
// Removing such a mod leaves its file in place.
func (m *Manager) IsNested(path string) bool {
	path, err := absPath(path)
	if err != nil {
		return false
	}
	return m.isNested(path)
}

func (m *Manager) deleteModFiles(path string) error {
	kind := Classify(path)
	if kind == domain.KindPackage {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		return nil
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}

	cfgDir := filepath.Join(filepath.Dir(path), DisplayName(path))
	if info, err := os.Stat(cfgDir); err == nil && info.IsDir() && !IsPackageDir(cfgDir) {
		if err := os.RemoveAll(cfgDir); err != nil {
			m.logger.Warn("cannot remove config folder", "path", cfgDir, "err", err)
		}
	}
	return nil
}

// ConfigPath returns where a mod's config file is: the saved override, or
// the conventional <stem>/config.ini next to the mod.
func (m *Manager) ConfigPath(path string) (string, error) {
	path, err := absPath(path)
	if err != nil {
		return "", err
	}
	return configPathFor(m.settings.Snapshot(), path, false), nil
}

// SetConfigPath saves a custom config file location for a mod. An empty
// cfgPath restores the default.
func (m *Manager) SetConfigPath(path, cfgPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, err := absPath(path)
	if err != nil {
		return err
	}

	if cfgPath != "" {
		if cfgPath, err = config.ParseModConfigPath(cfgPath); err != nil {
			return err
		}
	}

	err = m.settings.Update(func(s *domain.ManagerSettings) error {
		s.SetConfigOverride(path, cfgPath)
		return nil
	})
	if err != nil {
		return err
	}

	m.publish(EventConfigChanged, path)
	return nil
}

// ReadConfig returns the text of a mod's config file
func (m *Manager) ReadConfig(path string) (string, error) {
	cfgPath, err := m.ConfigPath(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("config %s: %w", cfgPath, domain.ErrNotFound)
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return string(data), nil
}

// WriteConfig replaces the text of a mod's config file
func (m *Manager) WriteConfig(path, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfgPath, err := m.ConfigPath(path)
	if err != nil {
		return err
	}

	if err := config.WriteFileAtomic(cfgPath, []byte(text), 0644); err != nil {
		return err
	}

	m.publish(EventConfigChanged, path)
	return nil
}

// Prune drops profile entries whose files are gone and returns their paths
func (m *Manager) Prune() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var gone []string
	for _, path := range m.profile.EnabledPaths() {
		if !fileExists(path) {
			gone = append(gone, path)
		}
	}
	if len(gone) == 0 {
		return nil, nil
	}

	err := m.mutateProfile(func(p *domain.Profile) bool {
		for _, path := range gone {
			p.Disable(path)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("pruning profile: %w", err)
	}

	m.logger.Info("pruned profile", "entries", len(gone))
	m.publish(EventProfilePruned, "")
	return gone, nil
}

// Reload re-reads the profile from disk, picking up edits made by ME3 or by hand
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, err := m.loadProfile()
	if err != nil {
		return err
	}
	m.profile = profile

	m.publish(EventProfileReloaded, "")
	return nil
}

// loadProfile applies the startup policy: a missing profile is created, a
// malformed one is backed up and replaced in memory by an empty profile.
func (m *Manager) loadProfile() (*domain.Profile, error) {
	profile, err := m.store.LoadProfile(m.game.ProfilePath)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		profile = config.DefaultProfile(m.game)
		if err := m.store.SaveProfile(profile); err != nil {
			return nil, fmt.Errorf("creating profile: %w", err)
		}
		m.logger.Info("created profile", "path", m.game.ProfilePath)
	case errors.Is(err, domain.ErrParse):
		m.logger.Warn("profile is malformed, treating it as empty", "path", m.game.ProfilePath, "err", err)
		if err := backupFile(m.game.ProfilePath); err != nil {
			m.logger.Warn("cannot back up malformed profile", "path", m.game.ProfilePath, "err", err)
		}
		profile = config.DefaultProfile(m.game)
	default:
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	profile.GameID = m.game.ID
	profile.ModsDir = m.game.ModsDir
	profile.Path = m.game.ProfilePath
	return profile, nil
}

// mutateProfile applies fn to a copy of the profile and saves it. The copy
// becomes current only once it is on disk.
func (m *Manager) mutateProfile(fn func(p *domain.Profile) bool) error {
	next := m.profile.Clone()
	if !fn(next) {
		return nil
	}
	if err := m.store.SaveProfile(next); err != nil {
		return err
	}
	m.profile = next
	return nil
}

// isInternal reports whether path lives under the game's mods folder
func (m *Manager) isInternal(path string) bool {
	return isUnder(m.game.ModsDir, path)
}

// isNested reports whether path sits below the top level of the mods folder
func (m *Manager) isNested(path string) bool {
	if !m.isInternal(path) {
		return false
	}
	rel, _ := filepath.Rel(m.game.ModsDir, path)
	return strings.ContainsRune(rel, filepath.Separator)
}

// isUnder reports whether path is inside dir
func isUnder(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// NotifyFilesChanged tells subscribers the mods directory changed on disk
func (m *Manager) NotifyFilesChanged(path string) {
	m.publish(EventFilesChanged, path)
}

func (m *Manager) publish(t EventType, path string) {
	m.events.Publish(Event{Type: t, GameID: m.game.ID, Path: path})
}

func absPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: mod path cannot be empty", domain.ErrValidation)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

func backupFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(path+".bak", data, 0644)
}
