package core_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/me3-manager/internal/core"
	"github.com/DonovanMods/me3-manager/internal/domain"
	"github.com/DonovanMods/me3-manager/internal/storage/config"

	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// flakyStore wraps the real store and fails saves on demand
type flakyStore struct {
	*config.Store
	failProfile  bool
	failSettings bool
}

func (s *flakyStore) SaveProfile(p *domain.Profile) error {
	if s.failProfile {
		return errDiskFull
	}
	return s.Store.SaveProfile(p)
}

func (s *flakyStore) SaveSettings(ms *domain.ManagerSettings) error {
	if s.failSettings {
		return errDiskFull
	}
	return s.Store.SaveSettings(ms)
}

type testEnv struct {
	root    string
	game    *domain.Game
	store   *flakyStore
	manager *core.Manager
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	game := &domain.Game{
		ID:          "eldenring",
		Name:        "Elden Ring",
		CLIID:       "elden-ring",
		ModsDir:     filepath.Join(root, "eldenring-mods"),
		ProfilePath: filepath.Join(root, "eldenring-default.me3"),
	}
	store := &flakyStore{Store: config.NewStore(filepath.Join(root, "manager_settings.json"))}

	settings, err := core.LoadSettingsContext(store)
	require.NoError(t, err)

	m, err := core.NewManager(game, store, settings, core.WithLogger(quietLogger()))
	require.NoError(t, err)

	return &testEnv{root: root, game: game, store: store, manager: m}
}

// addNative writes a DLL into the mods folder and returns its path
func (e *testEnv) addNative(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.game.ModsDir, name)
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0644))
	return path
}

// addPackage creates a package folder in the mods folder
func (e *testEnv) addPackage(t *testing.T, name string, withRegulation bool) string {
	t.Helper()
	path := filepath.Join(e.game.ModsDir, name)
	require.NoError(t, os.MkdirAll(filepath.Join(path, "parts"), 0755))
	if withRegulation {
		require.NoError(t, os.WriteFile(filepath.Join(path, "regulation.bin"), []byte("reg"), 0644))
	}
	return path
}

// externalDLL writes a DLL outside the mods folder
func (e *testEnv) externalDLL(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(e.root, "external")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0644))
	return path
}

// diskEnabled reads the enabled set straight from the profile file
func (e *testEnv) diskEnabled(t *testing.T) []string {
	t.Helper()
	p, err := config.NewStore("").LoadProfile(e.game.ProfilePath)
	require.NoError(t, err)
	return p.EnabledPaths()
}

func enabledNames(mods []domain.Mod) []string {
	var names []string
	for _, m := range mods {
		if m.Enabled {
			names = append(names, m.Name)
		}
	}
	return names
}
