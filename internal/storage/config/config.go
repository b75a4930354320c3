package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds global application settings
type Config struct {
	ProfileRoot       string            `yaml:"profile_root"`
	SettingsFile      string            `yaml:"settings_file"`
	Me3Path           string            `yaml:"me3_path"`
	DefaultGame       string            `yaml:"default_game"`
	DefaultLinkMethod domain.LinkMethod `yaml:"-"`
	LinkMethodStr     string            `yaml:"default_link_method"`
	Keybindings       string            `yaml:"keybindings,omitempty"` // vim or standard
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	cfg := &Config{
		Me3Path:           "me3",
		DefaultLinkMethod: domain.LinkCopy,
		Keybindings:       "vim",
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &domain.ParseError{Path: configPath, Err: err}
		}
	}

	if cfg.LinkMethodStr != "" {
		cfg.DefaultLinkMethod = domain.ParseLinkMethod(cfg.LinkMethodStr)
	}

	if cfg.ProfileRoot == "" {
		root, err := DefaultProfileRoot()
		if err != nil {
			return nil, err
		}
		cfg.ProfileRoot = root
	}
	if cfg.ProfileRoot, err = expandPath(cfg.ProfileRoot); err != nil {
		return nil, err
	}

	// ME3 keeps manager-side state one level above the profiles folder
	if cfg.SettingsFile == "" {
		cfg.SettingsFile = filepath.Join(filepath.Dir(cfg.ProfileRoot), "manager_settings.json")
	}
	if cfg.SettingsFile, err = expandPath(cfg.SettingsFile); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	c.LinkMethodStr = c.DefaultLinkMethod.String()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return WriteFileAtomic(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// DefaultProfileRoot returns where ME3 keeps its profiles on this platform
func DefaultProfileRoot() (string, error) {
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "garyttierney", "me3", "config", "profiles"), nil
		}
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config directory: %w", err)
	}
	return filepath.Join(base, "me3", "profiles"), nil
}

// expandPath expands a leading ~ and makes the result absolute
func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", p, err)
	}
	return filepath.Abs(expanded)
}
