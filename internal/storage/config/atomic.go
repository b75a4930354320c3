package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// renameFile is swapped out in tests to simulate a crash between write and replace
var renameFile = os.Rename

// WriteFileAtomic writes data to a temp file next to path and renames it over
// path, so readers see either the old content or the new content, never a mix.
// Failures wrap domain.ErrPersistence.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", domain.ErrPersistence, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", domain.ErrPersistence, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing %s: %w", domain.ErrPersistence, path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing %s: %w", domain.ErrPersistence, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", domain.ErrPersistence, path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", domain.ErrPersistence, path, err)
	}

	if err := renameFile(tmpPath, path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", domain.ErrPersistence, path, err)
	}
	committed = true

	return nil
}
