package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// The game loads one regulation.bin. Among package mods only one may keep
// its file active; the rest carry regulation.bin.disabled.

type rename struct{ from, to string }

// SetRegulation makes the package at path the one whose regulation.bin the
// game loads and disables every other package's. If any rename fails the
// earlier ones are undone.
func (m *Manager) SetRegulation(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, err := absPath(path)
	if err != nil {
		return err
	}
	if !m.isInternal(path) || Classify(path) != domain.KindPackage {
		return fmt.Errorf("%w: %s is not a package in the mods folder", domain.ErrValidation, filepath.Base(path))
	}
	if !fileExists(filepath.Join(path, regulationFile)) && !fileExists(filepath.Join(path, regulationDisabled)) {
		return fmt.Errorf("%w: %s has no regulation.bin", domain.ErrValidation, filepath.Base(path))
	}

	var plan []rename
	for _, pkg := range m.packageDirs() {
		active := filepath.Join(pkg, regulationFile)
		disabled := filepath.Join(pkg, regulationDisabled)
		switch {
		case pkg == path && !fileExists(active):
			plan = append(plan, rename{disabled, active})
		case pkg != path && fileExists(active):
			plan = append(plan, rename{active, disabled})
		}
	}

	if err := applyRenames(plan); err != nil {
		return fmt.Errorf("switching regulation: %w", err)
	}

	m.logger.Info("regulation switched", "path", path)
	m.publish(EventRegulationChanged, path)
	return nil
}

// DisableRegulations turns off every package's regulation.bin so the game
// uses its own.
func (m *Manager) DisableRegulations() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var plan []rename
	for _, pkg := range m.packageDirs() {
		active := filepath.Join(pkg, regulationFile)
		if fileExists(active) {
			plan = append(plan, rename{active, filepath.Join(pkg, regulationDisabled)})
		}
	}
	if len(plan) == 0 {
		return nil
	}

	if err := applyRenames(plan); err != nil {
		return fmt.Errorf("disabling regulations: %w", err)
	}

	m.publish(EventRegulationChanged, "")
	return nil
}

func (m *Manager) packageDirs() []string {
	entries, err := os.ReadDir(m.game.ModsDir)
	if err != nil {
		m.logger.Warn("cannot read mods folder", "path", m.game.ModsDir, "err", err)
		return nil
	}

	var dirs []string
	for _, e := range entries {
		path := filepath.Join(m.game.ModsDir, e.Name())
		if Classify(path) == domain.KindPackage {
			dirs = append(dirs, path)
		}
	}
	return dirs
}

func (m *Manager) warnRegulationConflict() {
	var active []string
	for _, pkg := range m.packageDirs() {
		if fileExists(filepath.Join(pkg, regulationFile)) {
			active = append(active, filepath.Base(pkg))
		}
	}
	if len(active) > 1 {
		m.logger.Warn("several packages ship an active regulation.bin; choose one", "packages", active)
	}
}

func applyRenames(plan []rename) error {
	for i, r := range plan {
		if err := os.Rename(r.from, r.to); err != nil {
			for j := i - 1; j >= 0; j-- {
				os.Rename(plan[j].to, plan[j].from)
			}
			return err
		}
	}
	return nil
}
