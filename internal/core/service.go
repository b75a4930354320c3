package core

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/DonovanMods/me3-manager/internal/domain"
	"github.com/DonovanMods/me3-manager/internal/storage/config"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir string       // Directory holding config.yaml and games.yaml
	Logger    *slog.Logger // Defaults to slog.Default()
}

// Service wires the configuration, the shared settings and one Manager per game
type Service struct {
	config   *config.Config
	store    *config.Store
	settings *SettingsContext
	events   *EventBus
	logger   *slog.Logger
	games    map[string]*domain.Game

	mu       sync.Mutex
	managers map[string]*Manager

	configDir string
}

// NewService loads config, games and settings. Managers are created on first use.
func NewService(cfg ServiceConfig) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	games, err := config.LoadGames(cfg.ConfigDir, appConfig.ProfileRoot)
	if err != nil {
		return nil, fmt.Errorf("loading games: %w", err)
	}

	store := config.NewStore(appConfig.SettingsFile)
	settings, err := LoadSettingsContext(store)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:    appConfig,
		store:     store,
		settings:  settings,
		events:    NewEventBus(),
		logger:    logger,
		games:     games,
		managers:  make(map[string]*Manager),
		configDir: cfg.ConfigDir,
	}, nil
}

// Config returns the application config
func (s *Service) Config() *config.Config {
	return s.config
}

// ConfigDir returns the directory config.yaml is read from
func (s *Service) ConfigDir() string {
	return s.configDir
}

// Settings returns the shared manager settings
func (s *Service) Settings() *SettingsContext {
	return s.settings
}

// Logger returns the service logger
func (s *Service) Logger() *slog.Logger {
	return s.logger
}

// Events returns the bus every manager publishes on
func (s *Service) Events() *EventBus {
	return s.events
}

// ListGames returns all configured games ordered by ID
func (s *Service) ListGames() []*domain.Game {
	games := make([]*domain.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	slices.SortFunc(games, func(a, b *domain.Game) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return games
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(gameID string) (*domain.Game, error) {
	game, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", gameID, domain.ErrGameNotFound)
	}
	return game, nil
}

// Manager returns the mod state manager for a game
func (s *Service) Manager(gameID string) (*Manager, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.managers[gameID]; ok {
		return m, nil
	}

	m, err := NewManager(game, s.store, s.settings,
		WithLogger(s.logger),
		WithEvents(s.events),
		WithLinkMethod(s.config.DefaultLinkMethod),
	)
	if err != nil {
		return nil, err
	}
	s.managers[gameID] = m
	return m, nil
}

// GameExecutable returns the custom executable for a game. A path saved in
// the settings file wins over one from games.yaml.
func (s *Service) GameExecutable(gameID string) (string, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return "", err
	}
	if exe := s.settings.Snapshot().GameExecutable(gameID); exe != "" {
		return exe, nil
	}
	return game.ExePath, nil
}

// SetGameExecutable saves a custom executable for a game. An empty path
// goes back to letting ME3 find the game.
func (s *Service) SetGameExecutable(gameID, exePath string) error {
	if _, err := s.GetGame(gameID); err != nil {
		return err
	}

	if exePath != "" {
		info, err := os.Stat(exePath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("executable %s: %w", exePath, domain.ErrNotFound)
			}
			return fmt.Errorf("checking executable: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", domain.ErrValidation, exePath)
		}
	}

	return s.settings.Update(func(ms *domain.ManagerSettings) error {
		ms.SetGameExecutable(gameID, exePath)
		return nil
	})
}

// DefaultGameID returns the configured default game, if any
func (s *Service) DefaultGameID() string {
	return s.config.DefaultGame
}

// SetDefaultGame saves gameID as the game commands use without --game
func (s *Service) SetDefaultGame(gameID string) error {
	if _, err := s.GetGame(gameID); err != nil {
		return err
	}
	return s.UpdateConfig(func(c *config.Config) {
		c.DefaultGame = gameID
	})
}

// UpdateConfig applies fn to the application config and saves it
func (s *Service) UpdateConfig(fn func(c *config.Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.config)
	return s.config.Save(s.configDir)
}
