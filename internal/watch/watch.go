// Package watch reloads a game's mod state when its files change on disk.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of changes to settle
const DefaultDebounce = 250 * time.Millisecond

// Target is the mod state a Watcher keeps in sync
type Target interface {
	Game() *domain.Game
	Reload() error
	NotifyFilesChanged(path string)
}

// Watcher follows the mods directory and the profile file of one game
type Watcher struct {
	target   Target
	logger   *slog.Logger
	debounce time.Duration
	fs       *fsnotify.Watcher

	mu           sync.Mutex
	timer        *time.Timer
	profileDirty bool
	changed      string
	stop         chan struct{}
	done         chan struct{}
	closeOnce    sync.Once
}

// New starts watching target's directories
func New(target Target, logger *slog.Logger, debounce time.Duration) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	game := target.Game()
	for _, dir := range watchDirs(game) {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	w := &Watcher{
		target:   target,
		logger:   logger.With("game", game.ID),
		debounce: debounce,
		fs:       fs,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func watchDirs(game *domain.Game) []string {
	dirs := []string{filepath.Clean(game.ModsDir)}
	if profileDir := filepath.Dir(game.ProfilePath); profileDir != dirs[0] {
		dirs = append(dirs, profileDir)
	}
	return dirs
}

// Close stops watching. Pending changes are dropped.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stop)
		<-w.done

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "err", err)
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	game := w.target.Game()
	name := filepath.Clean(event.Name)
	isProfile := name == filepath.Clean(game.ProfilePath)
	inMods := filepath.Dir(name) == filepath.Clean(game.ModsDir)
	if !isProfile && !inMods {
		return
	}

	w.logger.Debug("file changed", "path", name, "op", event.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()

	if isProfile {
		w.profileDirty = true
	} else {
		w.changed = name
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	profileDirty, changed := w.profileDirty, w.changed
	w.profileDirty, w.changed = false, ""
	w.mu.Unlock()

	select {
	case <-w.stop:
		return
	default:
	}

	if profileDirty {
		if err := w.target.Reload(); err != nil {
			w.logger.Warn("reloading profile", "err", err)
		}
	}
	if changed != "" {
		w.target.NotifyFilesChanged(changed)
	}
}
