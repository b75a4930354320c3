package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// GameConfig is the YAML representation of a game
type GameConfig struct {
	Name       string `yaml:"name"`
	CLIID      string `yaml:"cli_id"`
	ModsDir    string `yaml:"mods_dir"`
	Profile    string `yaml:"profile"`
	Executable string `yaml:"executable,omitempty"`
}

// GamesFile is the top-level games.yaml structure
type GamesFile struct {
	Games map[string]GameConfig `yaml:"games"`
}

// BuiltinGames returns the games ME3 supports out of the box. Relative paths
// are resolved against the profile root.
func BuiltinGames() map[string]GameConfig {
	return map[string]GameConfig{
		"eldenring": {
			Name:    "Elden Ring",
			CLIID:   "elden-ring",
			ModsDir: "eldenring-mods",
			Profile: "eldenring-default.me3",
		},
		"nightreign": {
			Name:    "Nightreign",
			CLIID:   "nightreign",
			ModsDir: "nightreign-mods",
			Profile: "nightreign-default.me3",
		},
	}
}

// LoadGames merges the built-in games with games.yaml from the config directory.
// Fields set in games.yaml override the built-in value of the same game.
func LoadGames(configDir, profileRoot string) (map[string]*domain.Game, error) {
	gamesFile, err := loadGamesFile(configDir)
	if err != nil {
		return nil, err
	}

	merged := BuiltinGames()
	for id, cfg := range gamesFile.Games {
		base := merged[id]
		if cfg.Name != "" {
			base.Name = cfg.Name
		}
		if cfg.CLIID != "" {
			base.CLIID = cfg.CLIID
		}
		if cfg.ModsDir != "" {
			base.ModsDir = cfg.ModsDir
		}
		if cfg.Profile != "" {
			base.Profile = cfg.Profile
		}
		if cfg.Executable != "" {
			base.Executable = cfg.Executable
		}
		merged[id] = base
	}

	games := make(map[string]*domain.Game, len(merged))
	for id, cfg := range merged {
		if cfg.ModsDir == "" {
			cfg.ModsDir = id + "-mods"
		}
		if cfg.Profile == "" {
			cfg.Profile = id + "-default.me3"
		}
		if cfg.Name == "" {
			cfg.Name = id
		}

		modsDir, err := resolvePath(profileRoot, cfg.ModsDir)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}
		profilePath, err := resolvePath(profileRoot, cfg.Profile)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}
		exePath, err := expandPath(cfg.Executable)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}

		games[id] = &domain.Game{
			ID:          id,
			Name:        cfg.Name,
			CLIID:       cfg.CLIID,
			ModsDir:     modsDir,
			ProfilePath: profilePath,
			ExePath:     exePath,
		}
	}

	return games, nil
}

// SaveGame adds or updates a game in games.yaml
func SaveGame(configDir, gameID string, cfg GameConfig) error {
	gamesFile, err := loadGamesFile(configDir)
	if err != nil {
		return err
	}

	gamesFile.Games[gameID] = cfg
	return saveGamesFile(configDir, gamesFile)
}

// DeleteGame removes a game from games.yaml. Built-in games that have no
// entry there cannot be deleted.
func DeleteGame(configDir, gameID string) error {
	gamesFile, err := loadGamesFile(configDir)
	if err != nil {
		return err
	}

	if _, exists := gamesFile.Games[gameID]; !exists {
		return domain.ErrGameNotFound
	}

	delete(gamesFile.Games, gameID)
	return saveGamesFile(configDir, gamesFile)
}

func loadGamesFile(configDir string) (*GamesFile, error) {
	gamesPath := filepath.Join(configDir, "games.yaml")
	gamesFile := &GamesFile{Games: make(map[string]GameConfig)}

	data, err := os.ReadFile(gamesPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return gamesFile, nil
		}
		return nil, fmt.Errorf("reading games.yaml: %w", err)
	}

	if err := yaml.Unmarshal(data, gamesFile); err != nil {
		return nil, &domain.ParseError{Path: gamesPath, Err: err}
	}
	if gamesFile.Games == nil {
		gamesFile.Games = make(map[string]GameConfig)
	}

	return gamesFile, nil
}

func saveGamesFile(configDir string, gamesFile *GamesFile) error {
	data, err := yaml.Marshal(gamesFile)
	if err != nil {
		return fmt.Errorf("marshaling games: %w", err)
	}

	return WriteFileAtomic(filepath.Join(configDir, "games.yaml"), data, 0644)
}

// resolvePath expands ~ and anchors relative paths at root
func resolvePath(root, p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", p, err)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(root, expanded)
	}
	return filepath.Clean(expanded), nil
}
