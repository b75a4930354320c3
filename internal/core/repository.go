package core

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// Repository enumerates the mods a game can load
type Repository struct {
	logger *slog.Logger
}

// NewRepository creates a repository that reports scan problems to logger
func NewRepository(logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{logger: logger}
}

// List returns every mod in the game's mods folder, DLLs nested inside
// package folders, the game's external registrations and any profile entry
// none of those account for. Mods are ordered by display name, ignoring case.
// An unreadable folder is logged and skipped.
func (r *Repository) List(game *domain.Game, profile *domain.Profile, settings *domain.ManagerSettings) []domain.Mod {
	seen := make(map[string]bool)
	var mods []domain.Mod

	add := func(m domain.Mod) {
		m.Path = filepath.Clean(m.Path)
		if seen[m.Path] {
			return
		}
		seen[m.Path] = true
		m.Enabled = profile.IsEnabled(m.Path)
		if m.Kind == domain.KindNative {
			m.ConfigPath = configPathFor(settings, m.Path, true)
		}
		mods = append(mods, m)
	}

	for _, m := range r.scanModsDir(game.ModsDir) {
		add(m)
	}

	for _, path := range settings.ExternalFor(game.ID) {
		m := domain.Mod{
			Path:     path,
			Name:     DisplayName(path),
			Kind:     domain.KindNative,
			External: true,
		}
		if !fileExists(path) {
			m.Missing = true
			r.logger.Warn("external mod missing", "game", game.ID, "path", path)
		}
		add(m)
	}

	for _, e := range profile.Entries {
		if seen[filepath.Clean(e.Path)] {
			continue
		}
		add(domain.Mod{
			Path:    e.Path,
			Name:    DisplayName(e.Path),
			Kind:    e.Kind,
			Missing: !fileExists(e.Path),
		})
	}

	slices.SortFunc(mods, func(a, b domain.Mod) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})

	return mods
}

func (r *Repository) scanModsDir(dir string) []domain.Mod {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("cannot read mods folder", "path", dir, "err", err)
		}
		return nil
	}

	var mods []domain.Mod
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())

		switch Classify(path) {
		case domain.KindNative:
			mods = append(mods, domain.Mod{
				Path: path,
				Name: DisplayName(path),
				Kind: domain.KindNative,
			})
		case domain.KindPackage:
			mods = append(mods, domain.Mod{
				Path:             path,
				Name:             e.Name(),
				Kind:             domain.KindPackage,
				HasRegulation:    fileExists(filepath.Join(path, regulationFile)) || fileExists(filepath.Join(path, regulationDisabled)),
				RegulationActive: fileExists(filepath.Join(path, regulationFile)),
			})
			mods = append(mods, r.scanNested(path)...)
		}
	}

	return mods
}

// scanNested finds DLLs shipped inside a package folder. Each is a native
// mod of its own, named parent/stem.
func (r *Repository) scanNested(pkg string) []domain.Mod {
	parent := filepath.Base(pkg)
	var mods []domain.Mod

	err := filepath.WalkDir(pkg, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.logger.Warn("cannot read package folder", "path", path, "err", err)
			return nil
		}
		if d.IsDir() || !isDLL(path) {
			return nil
		}
		mods = append(mods, domain.Mod{
			Path:   path,
			Name:   parent + "/" + DisplayName(path),
			Kind:   domain.KindNative,
			Parent: parent,
		})
		return nil
	})
	if err != nil {
		r.logger.Warn("cannot scan package folder", "path", pkg, "err", err)
	}

	return mods
}

// configPathFor returns the override for modPath, else the conventional
// location. With onlyExisting the conventional location is returned only
// when the file is there.
func configPathFor(settings *domain.ManagerSettings, modPath string, onlyExisting bool) string {
	if p, ok := settings.ConfigOverride(modPath); ok {
		return p
	}
	p := DefaultConfigPath(modPath)
	if onlyExisting && !fileExists(p) {
		return ""
	}
	return p
}
