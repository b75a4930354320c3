package core_test

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DonovanMods/me3-manager/internal/core"
	"github.com/DonovanMods/me3-manager/internal/domain"
	"github.com/DonovanMods/me3-manager/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_CreatesProfileAndModsDir(t *testing.T) {
	env := newTestEnv(t)

	assert.DirExists(t, env.game.ModsDir)
	assert.FileExists(t, env.game.ProfilePath)
	assert.Empty(t, env.manager.EnabledPaths())

	p := env.manager.Profile()
	assert.Equal(t, "eldenring", p.GameID)
	assert.Equal(t, []domain.Support{{Game: "elden-ring"}}, p.Supports)
}

func TestNewManager_MalformedProfileIsEmptyAndBackedUp(t *testing.T) {
	root := t.TempDir()
	game := &domain.Game{
		ID:          "nightreign",
		CLIID:       "nightreign",
		ModsDir:     filepath.Join(root, "nightreign-mods"),
		ProfilePath: filepath.Join(root, "nightreign-default.me3"),
	}
	broken := "profileVersion = \"v1\"\n[[natives]\npath = \"x.dll\"\n"
	require.NoError(t, os.WriteFile(game.ProfilePath, []byte(broken), 0644))

	store := config.NewStore(filepath.Join(root, "settings.json"))
	settings, err := core.LoadSettingsContext(store)
	require.NoError(t, err)

	m, err := core.NewManager(game, store, settings, core.WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Empty(t, m.EnabledPaths())

	backup, err := os.ReadFile(game.ProfilePath + ".bak")
	require.NoError(t, err)
	assert.Equal(t, broken, string(backup))

	// The first mutation rewrites a valid profile
	dll := filepath.Join(game.ModsDir, "a.dll")
	require.NoError(t, os.WriteFile(dll, []byte("MZ"), 0644))
	require.NoError(t, m.Enable(dll))

	p, err := store.LoadProfile(game.ProfilePath)
	require.NoError(t, err)
	assert.Equal(t, []string{dll}, p.EnabledPaths())
}

func TestManager_EnableDisable(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")

	require.NoError(t, env.manager.Enable(a))
	assert.Equal(t, []string{a}, env.manager.EnabledPaths())
	assert.Equal(t, []string{a}, env.diskEnabled(t))

	require.NoError(t, env.manager.Enable(a), "enabling twice is a no-op")
	assert.Len(t, env.manager.EnabledPaths(), 1)

	require.NoError(t, env.manager.Disable(a))
	assert.Empty(t, env.manager.EnabledPaths())
	assert.Empty(t, env.diskEnabled(t))

	require.NoError(t, env.manager.Disable(a), "disabling twice is a no-op")
}

func TestManager_EnablePackage(t *testing.T) {
	env := newTestEnv(t)
	pkg := env.addPackage(t, "convergence", false)

	require.NoError(t, env.manager.Enable(pkg))

	entry, ok := env.manager.Profile().Entry(pkg)
	require.True(t, ok)
	assert.Equal(t, domain.KindPackage, entry.Kind)
	assert.Equal(t, "convergence", entry.ID)

	data, err := os.ReadFile(env.game.ProfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `path = "eldenring-mods/convergence"`)
}

func TestManager_EnableRejects(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing file", func(t *testing.T) {
		err := env.manager.Enable(filepath.Join(env.game.ModsDir, "ghost.dll"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("not a mod", func(t *testing.T) {
		path := filepath.Join(env.game.ModsDir, "readme.txt")
		require.NoError(t, os.WriteFile(path, []byte("hi"), 0644))
		err := env.manager.Enable(path)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unregistered external", func(t *testing.T) {
		err := env.manager.Enable(env.externalDLL(t, "stray.dll"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	assert.Empty(t, env.diskEnabled(t))
}

func TestManager_EnableRollsBackOnSaveFailure(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")
	b := env.addNative(t, "b.dll")
	require.NoError(t, env.manager.Enable(a))

	before, err := os.ReadFile(env.game.ProfilePath)
	require.NoError(t, err)

	env.store.failProfile = true
	err = env.manager.Enable(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)

	assert.Equal(t, []string{a}, env.manager.EnabledPaths())
	after, err := os.ReadFile(env.game.ProfilePath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	err = env.manager.Disable(a)
	require.Error(t, err)
	assert.Equal(t, []string{a}, env.manager.EnabledPaths())

	env.store.failProfile = false
	require.NoError(t, env.manager.Enable(b))
	assert.Equal(t, []string{a, b}, env.diskEnabled(t))
}

func TestManager_EnableDisableA_EnableB(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")
	b := env.addNative(t, "b.dll")

	require.NoError(t, env.manager.Enable(a))
	require.NoError(t, env.manager.Disable(a))
	require.NoError(t, env.manager.Enable(b))

	assert.Equal(t, []string{b}, env.manager.EnabledPaths())
	assert.Equal(t, []string{b}, env.diskEnabled(t))
	assert.Equal(t, []string{"b"}, enabledNames(env.manager.List()))
}

func TestManager_RandomSequenceMatchesLastOperation(t *testing.T) {
	env := newTestEnv(t)
	paths := []string{
		env.addNative(t, "a.dll"),
		env.addNative(t, "b.dll"),
		env.addNative(t, "c.dll"),
		env.addPackage(t, "pkg", false),
	}

	rng := rand.New(rand.NewSource(42))
	last := make(map[string]bool)
	for range 200 {
		p := paths[rng.Intn(len(paths))]
		if rng.Intn(2) == 0 {
			require.NoError(t, env.manager.Enable(p))
			last[p] = true
		} else {
			require.NoError(t, env.manager.Disable(p))
			last[p] = false
		}
	}

	var want []string
	for _, p := range paths {
		if last[p] {
			want = append(want, p)
		}
	}

	assert.ElementsMatch(t, want, env.manager.EnabledPaths())
	assert.ElementsMatch(t, want, env.diskEnabled(t))

	var listed []string
	for _, m := range env.manager.List() {
		if m.Enabled {
			listed = append(listed, m.Path)
		}
	}
	assert.ElementsMatch(t, want, listed)
}

func TestManager_AddExternal(t *testing.T) {
	env := newTestEnv(t)
	ext := env.externalDLL(t, "seamless.dll")

	require.NoError(t, env.manager.AddExternal(ext))

	mods := env.manager.List()
	require.Len(t, mods, 1)
	assert.True(t, mods[0].External)
	assert.False(t, mods[0].Enabled, "registering does not enable")

	err := env.manager.AddExternal(ext)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, env.manager.List(), 1)

	s, err := env.store.LoadSettings()
	require.NoError(t, err)
	assert.Len(t, s.ExternalMods, 1, "no duplicate on disk")

	require.NoError(t, env.manager.Enable(ext))
	assert.Equal(t, []string{ext}, env.diskEnabled(t))
}

func TestManager_AddExternalRejects(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		path    func() string
		wantErr error
	}{
		{"missing", func() string { return filepath.Join(env.root, "nope.dll") }, domain.ErrNotFound},
		{"not a dll", func() string {
			p := filepath.Join(env.root, "notes.txt")
			require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
			return p
		}, domain.ErrValidation},
		{"folder", func() string { return env.root }, domain.ErrValidation},
		{"inside mods folder", func() string { return env.addNative(t, "internal.dll") }, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.manager.AddExternal(tt.path())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	s, err := env.store.LoadSettings()
	require.NoError(t, err)
	assert.Empty(t, s.ExternalMods)
}

func TestManager_AddExternalSettingsFailure(t *testing.T) {
	env := newTestEnv(t)
	ext := env.externalDLL(t, "a.dll")

	env.store.failSettings = true
	require.Error(t, env.manager.AddExternal(ext))
	env.store.failSettings = false

	assert.Empty(t, env.manager.List(), "failed registration leaves no trace")
	require.NoError(t, env.manager.AddExternal(ext))
}

func TestManager_RemoveInternal(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")
	cfgDir := filepath.Join(env.game.ModsDir, "a")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.ini"), []byte("x=1"), 0644))
	require.NoError(t, env.manager.Enable(a))

	require.NoError(t, env.manager.Remove(a))

	assert.NoFileExists(t, a)
	assert.NoDirExists(t, cfgDir)
	assert.Empty(t, env.manager.List())
	assert.Empty(t, env.diskEnabled(t))
}

func TestManager_RemovePackage(t *testing.T) {
	env := newTestEnv(t)
	pkg := env.addPackage(t, "pkg", true)
	require.NoError(t, env.manager.Enable(pkg))

	require.NoError(t, env.manager.Remove(pkg))

	assert.NoDirExists(t, pkg)
	assert.Empty(t, env.manager.List())
}

func TestManager_RemovePackageDisablesNested(t *testing.T) {
	env := newTestEnv(t)
	pkg := env.addPackage(t, "pkg", false)
	helper := filepath.Join(pkg, "parts", "helper.dll")
	require.NoError(t, os.WriteFile(helper, []byte("MZ"), 0644))
	other := env.addNative(t, "other.dll")
	require.NoError(t, env.manager.Enable(pkg))
	require.NoError(t, env.manager.Enable(helper))
	require.NoError(t, env.manager.Enable(other))

	require.NoError(t, env.manager.Remove(pkg))

	assert.NoDirExists(t, pkg)
	assert.Equal(t, []string{other}, env.manager.EnabledPaths())
	assert.Equal(t, []string{other}, env.diskEnabled(t))
	for _, mod := range env.manager.List() {
		assert.False(t, mod.Missing, "%s left behind", mod.Path)
	}
}

func TestManager_RemoveNestedKeepsFile(t *testing.T) {
	env := newTestEnv(t)
	pkg := env.addPackage(t, "pkg", false)
	helper := filepath.Join(pkg, "parts", "helper.dll")
	require.NoError(t, os.WriteFile(helper, []byte("MZ"), 0644))
	cfgDir := filepath.Join(pkg, "parts", "helper")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	cfg := filepath.Join(cfgDir, "config.ini")
	require.NoError(t, os.WriteFile(cfg, []byte("x=1"), 0644))
	custom := filepath.Join(env.root, "helper.ini")
	require.NoError(t, env.manager.SetConfigPath(helper, custom))
	require.NoError(t, env.manager.Enable(helper))

	assert.True(t, env.manager.IsNested(helper))
	assert.False(t, env.manager.IsNested(pkg))

	require.NoError(t, env.manager.Remove(helper))

	assert.FileExists(t, helper)
	assert.FileExists(t, cfg)
	assert.DirExists(t, pkg)
	assert.Empty(t, env.diskEnabled(t))

	s, err := env.store.LoadSettings()
	require.NoError(t, err)
	assert.Empty(t, s.ConfigOverrides)
}

func TestManager_RemoveExternalKeepsFile(t *testing.T) {
	env := newTestEnv(t)
	ext := env.externalDLL(t, "seamless.dll")
	require.NoError(t, env.manager.AddExternal(ext))
	require.NoError(t, env.manager.Enable(ext))
	require.NoError(t, env.manager.SetConfigPath(ext, filepath.Join(env.root, "external", "seamless.ini")))

	require.NoError(t, env.manager.Remove(ext))

	assert.FileExists(t, ext)
	assert.Empty(t, env.manager.List())
	assert.Empty(t, env.diskEnabled(t))

	s, err := env.store.LoadSettings()
	require.NoError(t, err)
	assert.Empty(t, s.ExternalMods)
	assert.Empty(t, s.ConfigOverrides)
}

func TestManager_RemoveUnknown(t *testing.T) {
	env := newTestEnv(t)
	err := env.manager.Remove(filepath.Join(env.root, "nothing.dll"))
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestManager_RemoveKeepsFileWhenDisableFails(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")
	require.NoError(t, env.manager.Enable(a))

	env.store.failProfile = true
	require.Error(t, env.manager.Remove(a))

	assert.FileExists(t, a)
	assert.Equal(t, []string{a}, env.manager.EnabledPaths())
}

func TestManager_ConfigPath(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")

	got, err := env.manager.ConfigPath(a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.game.ModsDir, "a", "config.ini"), got)

	custom := filepath.Join(env.root, "a-settings.ini")
	require.NoError(t, env.manager.SetConfigPath(a, custom))
	got, err = env.manager.ConfigPath(a)
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	require.NoError(t, env.manager.WriteConfig(a, "[general]\nfov = 90\n"))
	text, err := env.manager.ReadConfig(a)
	require.NoError(t, err)
	assert.Equal(t, "[general]\nfov = 90\n", text)

	mods := env.manager.List()
	require.Len(t, mods, 1)
	assert.Equal(t, custom, mods[0].ConfigPath)

	require.NoError(t, env.manager.SetConfigPath(a, ""))
	got, err = env.manager.ConfigPath(a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.game.ModsDir, "a", "config.ini"), got)
}

func TestManager_SetConfigPathValidates(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")

	err := env.manager.SetConfigPath(a, "relative.ini")
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = env.manager.SetConfigPath(a, filepath.Join(env.root, "mod.exe"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestManager_ReadConfigMissing(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")

	_, err := env.manager.ReadConfig(a)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManager_Prune(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")
	b := env.addNative(t, "b.dll")
	require.NoError(t, env.manager.Enable(a))
	require.NoError(t, env.manager.Enable(b))
	require.NoError(t, os.Remove(a))

	mods := env.manager.List()
	require.Len(t, mods, 2, "a vanished file is still listed while enabled")
	assert.True(t, mods[0].Missing)

	gone, err := env.manager.Prune()
	require.NoError(t, err)
	assert.Equal(t, []string{a}, gone)
	assert.Equal(t, []string{b}, env.diskEnabled(t))

	gone, err = env.manager.Prune()
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestManager_Reload(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")

	// Something else (ME3, an editor) rewrites the profile
	p := config.DefaultProfile(env.game)
	p.Enable(domain.ProfileEntry{Path: a, Kind: domain.KindNative})
	require.NoError(t, config.NewStore("").SaveProfile(p))

	assert.Empty(t, env.manager.EnabledPaths())
	require.NoError(t, env.manager.Reload())
	assert.Equal(t, []string{a}, env.manager.EnabledPaths())
}

func TestManager_Find(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "ErSC.dll")
	env.addPackage(t, "convergence", false)

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{"full path", a, a, nil},
		{"file name", "ersc.dll", a, nil},
		{"display name", "ERSC", a, nil},
		{"package", "Convergence", filepath.Join(env.game.ModsDir, "convergence"), nil},
		{"unknown", "nothing", "", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := env.manager.Find(tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mod.Path)
		})
	}
}

func TestManager_FindAmbiguous(t *testing.T) {
	env := newTestEnv(t)
	env.addNative(t, "mod.dll")
	ext := env.externalDLL(t, "mod.dll")
	require.NoError(t, env.manager.AddExternal(ext))

	_, err := env.manager.Find("mod")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestManager_PublishesEvents(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")

	events, stop := env.manager.Subscribe(8)
	defer stop()

	require.NoError(t, env.manager.Enable(a))
	require.NoError(t, env.manager.Disable(a))

	e := <-events
	assert.Equal(t, core.EventModEnabled, e.Type)
	assert.Equal(t, a, e.Path)
	assert.Equal(t, "eldenring", e.GameID)
	assert.Equal(t, core.EventModDisabled, (<-events).Type)
}

func TestManager_NoEventOnFailure(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")

	events, stop := env.manager.Subscribe(8)
	defer stop()

	env.store.failProfile = true
	require.Error(t, env.manager.Enable(a))

	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e.Type)
	default:
	}
}

func TestManager_ConcurrentConfigWrites(t *testing.T) {
	env := newTestEnv(t)
	a := env.addNative(t, "a.dll")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.manager.WriteConfig(a, fmt.Sprintf("value=%d\n", i)))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, env.manager.SetConfigPath(a, filepath.Join(env.root, fmt.Sprintf("a%d.ini", i))))
		}()
	}
	wg.Wait()

	got, err := env.manager.ConfigPath(a)
	require.NoError(t, err)
	s, err := env.store.LoadSettings()
	require.NoError(t, err)
	saved, ok := s.ConfigOverride(a)
	require.True(t, ok)
	assert.Equal(t, got, saved, "in-memory and saved override agree")
}
