package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/me3-manager/internal/domain"
	"github.com/DonovanMods/me3-manager/internal/linker"
)

// InstallOptions controls how Install places a mod
type InstallOptions struct {
	Name    string        // Name in the mods folder; defaults to the source's name
	Replace bool          // Overwrite a mod already installed under that name
	Enable  bool          // Enable the mod once it is in place
	Linker  linker.Linker // nil uses the manager's link method
}

// Install places a DLL, a package folder or the mods inside an archive into
// the game's mods folder. Archive contents are always copied.
func (m *Manager) Install(ctx context.Context, src string, opts InstallOptions) ([]domain.Mod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, err := absPath(src)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", src, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("checking %s: %w", src, err)
	}

	lnk := opts.Linker
	if lnk == nil {
		lnk = linker.New(m.linkMethod)
	}

	sources := []string{src}
	if IsArchive(src) {
		tmp, err := os.MkdirTemp("", "me3m-unpack-*")
		if err != nil {
			return nil, fmt.Errorf("creating temp directory: %w", err)
		}
		defer os.RemoveAll(tmp)

		if err := Unpack(ctx, src, tmp); err != nil {
			return nil, fmt.Errorf("unpacking %s: %w", filepath.Base(src), err)
		}
		if sources, err = findModRoots(tmp); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", filepath.Base(src), err)
		}
		if len(sources) == 0 {
			return nil, fmt.Errorf("%w: no mods found in %s", domain.ErrValidation, filepath.Base(src))
		}
		if len(sources) > 1 && opts.Name != "" {
			return nil, fmt.Errorf("%w: %s holds %d mods, cannot rename", domain.ErrValidation, filepath.Base(src), len(sources))
		}
		lnk = linker.NewCopy()
	}

	var placed []string
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dst, err := m.place(s, opts.Name, opts.Replace, lnk)
		if err != nil {
			return nil, err
		}
		placed = append(placed, dst)
		m.logger.Info("mod installed", "path", dst, "method", lnk.Method().String())
		m.publish(EventModInstalled, dst)
	}

	if opts.Enable {
		for _, dst := range placed {
			if err := m.enableLocked(dst); err != nil {
				return nil, err
			}
		}
	}

	m.warnRegulationConflict()

	all := m.repo.List(m.game, m.profile, m.settings.Snapshot())
	installed := make([]domain.Mod, 0, len(placed))
	for _, dst := range placed {
		for _, mod := range all {
			if mod.Path == dst {
				installed = append(installed, mod)
			}
		}
	}
	return installed, nil
}

// place puts one mod into the mods folder and returns its new path
func (m *Manager) place(src, name string, replace bool, lnk linker.Linker) (string, error) {
	kind := Classify(src)
	if kind == domain.KindNotAMod {
		return "", fmt.Errorf("%w: %s is not a mod (expected a .dll or a folder of game assets)", domain.ErrValidation, filepath.Base(src))
	}

	if name == "" {
		name = filepath.Base(src)
	}
	if filepath.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid mod name %q", domain.ErrValidation, name)
	}
	if kind == domain.KindNative && !isDLL(name) {
		name += ".dll"
	}

	dst := filepath.Join(m.game.ModsDir, name)
	if dst == src {
		return "", fmt.Errorf("%w: %s is already in the mods folder", domain.ErrValidation, name)
	}
	if err := clearDestination(dst, replace); err != nil {
		return "", err
	}
	if err := lnk.Place(src, dst); err != nil {
		return "", fmt.Errorf("placing %s: %w", name, err)
	}

	// Natives often ship their settings in a folder named after the DLL
	if kind == domain.KindNative {
		srcCfg := filepath.Join(filepath.Dir(src), DisplayName(src))
		if info, err := os.Stat(srcCfg); err == nil && info.IsDir() && !IsPackageDir(srcCfg) {
			dstCfg := filepath.Join(m.game.ModsDir, DisplayName(dst))
			if err := clearDestination(dstCfg, replace); err != nil {
				m.logger.Warn("keeping existing config folder", "path", dstCfg)
			} else if err := lnk.Place(srcCfg, dstCfg); err != nil {
				return "", fmt.Errorf("placing config folder: %w", err)
			}
		}
	}

	return dst, nil
}

func clearDestination(dst string, replace bool) error {
	if _, err := os.Lstat(dst); err != nil {
		return nil
	}
	if !replace {
		return fmt.Errorf("%w: %s already exists in the mods folder", domain.ErrValidation, filepath.Base(dst))
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("removing %s: %w", dst, err)
	}
	return nil
}
