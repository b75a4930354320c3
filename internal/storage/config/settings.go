package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// LoadSettings reads the manager settings file. A missing file yields empty settings.
func (s *Store) LoadSettings() (*domain.ManagerSettings, error) {
	data, err := os.ReadFile(s.SettingsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewManagerSettings(), nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	settings := domain.NewManagerSettings()
	if len(bytes.TrimSpace(data)) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, &domain.ParseError{Path: s.SettingsPath, Line: jsonErrorLine(data, err), Err: err}
	}

	if settings.ExternalMods == nil {
		settings.ExternalMods = []domain.ExternalMod{}
	}
	if settings.ConfigOverrides == nil {
		settings.ConfigOverrides = map[string]string{}
	}
	for i := range settings.ExternalMods {
		settings.ExternalMods[i].Path = filepath.Clean(settings.ExternalMods[i].Path)
	}

	return settings, nil
}

// SaveSettings writes the manager settings file
func (s *Store) SaveSettings(settings *domain.ManagerSettings) error {
	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	data = append(data, '\n')

	return WriteFileAtomic(s.SettingsPath, data, 0644)
}

func jsonErrorLine(data []byte, err error) int {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
