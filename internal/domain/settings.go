package domain

import (
	"maps"
	"path/filepath"
	"slices"
)

// ExternalMod is a mod file registered from outside a game's mods folder
type ExternalMod struct {
	Path   string `json:"path"`
	GameID string `json:"gameId"`
}

// ManagerSettings is the manager's own persisted state
type ManagerSettings struct {
	ExternalMods    []ExternalMod     `json:"externalMods"`
	ConfigOverrides map[string]string `json:"configOverrides"`
	GameExecutables map[string]string `json:"gameExecutables,omitempty"`
}

// NewManagerSettings returns empty, ready-to-mutate settings
func NewManagerSettings() *ManagerSettings {
	return &ManagerSettings{
		ExternalMods:    []ExternalMod{},
		ConfigOverrides: map[string]string{},
	}
}

// IsRegistered reports whether path is registered as an external mod for gameID
func (s *ManagerSettings) IsRegistered(gameID, path string) bool {
	return s.externalIndex(gameID, path) >= 0
}

// ExternalFor returns the external registrations for gameID in registration order
func (s *ManagerSettings) ExternalFor(gameID string) []string {
	var paths []string
	for _, m := range s.ExternalMods {
		if m.GameID == gameID {
			paths = append(paths, m.Path)
		}
	}
	return paths
}

// Register adds an external mod. Returns false if it was already registered.
func (s *ManagerSettings) Register(gameID, path string) bool {
	if s.IsRegistered(gameID, path) {
		return false
	}
	s.ExternalMods = append(s.ExternalMods, ExternalMod{Path: filepath.Clean(path), GameID: gameID})
	return true
}

// Unregister removes an external mod. Returns false if it was not registered.
func (s *ManagerSettings) Unregister(gameID, path string) bool {
	i := s.externalIndex(gameID, path)
	if i < 0 {
		return false
	}
	s.ExternalMods = slices.Delete(s.ExternalMods, i, i+1)
	return true
}

// ConfigOverride returns the custom config path for a mod, if any
func (s *ManagerSettings) ConfigOverride(modPath string) (string, bool) {
	p, ok := s.ConfigOverrides[filepath.Clean(modPath)]
	return p, ok
}

// SetConfigOverride records (or, with an empty cfgPath, clears) a mod's config path
func (s *ManagerSettings) SetConfigOverride(modPath, cfgPath string) {
	if s.ConfigOverrides == nil {
		s.ConfigOverrides = map[string]string{}
	}
	if cfgPath == "" {
		delete(s.ConfigOverrides, filepath.Clean(modPath))
		return
	}
	s.ConfigOverrides[filepath.Clean(modPath)] = cfgPath
}

// GameExecutable returns the custom executable for a game, if any
func (s *ManagerSettings) GameExecutable(gameID string) string {
	return s.GameExecutables[gameID]
}

// SetGameExecutable records (or, with an empty path, clears) a game's executable
func (s *ManagerSettings) SetGameExecutable(gameID, exePath string) {
	if exePath == "" {
		delete(s.GameExecutables, gameID)
		return
	}
	if s.GameExecutables == nil {
		s.GameExecutables = map[string]string{}
	}
	s.GameExecutables[gameID] = exePath
}

// Clone returns a deep copy
func (s *ManagerSettings) Clone() *ManagerSettings {
	c := &ManagerSettings{
		ExternalMods:    append([]ExternalMod{}, s.ExternalMods...),
		ConfigOverrides: maps.Clone(s.ConfigOverrides),
		GameExecutables: maps.Clone(s.GameExecutables),
	}
	if c.ConfigOverrides == nil {
		c.ConfigOverrides = map[string]string{}
	}
	return c
}

func (s *ManagerSettings) externalIndex(gameID, path string) int {
	path = filepath.Clean(path)
	for i, m := range s.ExternalMods {
		if m.GameID == gameID && filepath.Clean(m.Path) == path {
			return i
		}
	}
	return -1
}
