package core

import (
	"fmt"
	"sync"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// SettingsStore persists ManagerSettings
type SettingsStore interface {
	LoadSettings() (*domain.ManagerSettings, error)
	SaveSettings(s *domain.ManagerSettings) error
}

// SettingsContext is the process-wide handle on ManagerSettings. It is loaded
// once and passed to every Manager; all mutations are saved before they
// become visible.
type SettingsContext struct {
	mu      sync.Mutex
	store   SettingsStore
	current *domain.ManagerSettings
}

// LoadSettingsContext reads the settings from store
func LoadSettingsContext(store SettingsStore) (*SettingsContext, error) {
	s, err := store.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return NewSettingsContext(store, s), nil
}

// NewSettingsContext wraps already loaded settings
func NewSettingsContext(store SettingsStore, s *domain.ManagerSettings) *SettingsContext {
	if s == nil {
		s = domain.NewManagerSettings()
	}
	return &SettingsContext{store: store, current: s}
}

// Snapshot returns a copy of the current settings
func (c *SettingsContext) Snapshot() *domain.ManagerSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// Update applies fn to a copy of the settings and saves it. The copy replaces
// the current settings only if fn and the save both succeed.
func (c *SettingsContext) Update(fn func(s *domain.ManagerSettings) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := c.store.SaveSettings(next); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	c.current = next
	return nil
}
