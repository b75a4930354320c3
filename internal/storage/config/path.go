// Package config provides the on-disk stores: the application config, the
// games table, the ME3 profile file and the manager's settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// modConfigExts are the text formats mods ship their settings in
var modConfigExts = []string{".ini", ".toml", ".cfg", ".json", ".txt"}

// ParseModConfigPath validates a mod config file path and returns the cleaned path if valid.
// It returns an error wrapping domain.ErrValidation if:
//   - The path is empty
//   - The path is not absolute
//   - The path contains parent directory traversal (..)
//   - The path points to a directory instead of a file
//   - The file does not have a known text config extension
//
// The file itself may not exist yet; its parent directory must.
func ParseModConfigPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: config path cannot be empty", domain.ErrValidation)
	}

	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: config path must be absolute", domain.ErrValidation)
	}

	if slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "..") {
		return "", fmt.Errorf("%w: config path contains invalid traversal", domain.ErrValidation)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return "", fmt.Errorf("%w: config path is a directory, not a file", domain.ErrValidation)
	case err != nil && !os.IsNotExist(err):
		return "", err
	case os.IsNotExist(err):
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			return "", fmt.Errorf("%w: config directory does not exist", domain.ErrNotFound)
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(modConfigExts, ext) {
		return "", fmt.Errorf("%w: config file must be one of %s", domain.ErrValidation, strings.Join(modConfigExts, ", "))
	}

	return filepath.Clean(path), nil
}
