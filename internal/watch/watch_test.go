package watch

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	game *domain.Game

	mu        sync.Mutex
	reloads   int
	changed   []string
	reloadErr error
}

func (f *fakeTarget) Game() *domain.Game { return f.game }

func (f *fakeTarget) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.reloadErr
}

func (f *fakeTarget) NotifyFilesChanged(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, path)
}

func (f *fakeTarget) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloads, len(f.changed)
}

func newTarget(t *testing.T) *fakeTarget {
	t.Helper()
	dir := t.TempDir()
	game := &domain.Game{
		ID:          "eldenring",
		ModsDir:     filepath.Join(dir, "eldenring-mods"),
		ProfilePath: filepath.Join(dir, "eldenring-default.me3"),
	}
	require.NoError(t, os.MkdirAll(game.ModsDir, 0755))
	return &fakeTarget{game: game}
}

func TestWatcher_ProfileChangeReloads(t *testing.T) {
	target := newTarget(t)
	w, err := New(target, nil, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(target.game.ProfilePath, []byte("profileVersion = \"v1\"\n"), 0644))

	assert.Eventually(t, func() bool {
		reloads, _ := target.counts()
		return reloads >= 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_ModsDirChangeNotifies(t *testing.T) {
	target := newTarget(t)
	w, err := New(target, nil, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	for _, name := range []string{"a.dll", "b.dll", "c.dll"} {
		require.NoError(t, os.WriteFile(filepath.Join(target.game.ModsDir, name), []byte("x"), 0644))
	}

	assert.Eventually(t, func() bool {
		_, changed := target.counts()
		return changed >= 1
	}, 5*time.Second, 10*time.Millisecond)

	reloads, _ := target.counts()
	assert.Zero(t, reloads, "mods dir changes do not reload the profile")
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	target := newTarget(t)
	w, err := New(target, nil, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	other := filepath.Join(filepath.Dir(target.game.ProfilePath), "manager_settings.json")
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0644))

	time.Sleep(150 * time.Millisecond)
	reloads, changed := target.counts()
	assert.Zero(t, reloads)
	assert.Zero(t, changed)
}

func TestWatcher_CloseTwice(t *testing.T) {
	target := newTarget(t)
	w, err := New(target, nil, 0)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestNew_MissingDir(t *testing.T) {
	game := &domain.Game{
		ID:          "eldenring",
		ModsDir:     filepath.Join(t.TempDir(), "missing"),
		ProfilePath: filepath.Join(t.TempDir(), "p.me3"),
	}
	_, err := New(&fakeTarget{game: game}, nil, 0)
	assert.Error(t, err)
}

// lockedBuffer lets the watcher goroutine log while the test reads
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcher_ReloadFailureIsLogged(t *testing.T) {
	target := newTarget(t)
	target.reloadErr = errors.New("bad toml")
	logs := &lockedBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	w, err := New(target, logger, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(target.game.ProfilePath, []byte("natives = ["), 0644))

	assert.Eventually(t, func() bool {
		out := logs.String()
		return strings.Contains(out, `msg="reloading profile"`) && strings.Contains(out, `err="bad toml"`)
	}, 5*time.Second, 10*time.Millisecond)
}
