package linker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// SymlinkLinker places mods as a single symbolic link, for files and folders alike
type SymlinkLinker struct{}

// NewSymlink creates a new symlink linker
func NewSymlink() *SymlinkLinker {
	return &SymlinkLinker{}
}

// Place creates a symlink at dst pointing to src
func (l *SymlinkLinker) Place(src, dst string) error {
	abs, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("resolving source: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating destination dir: %w", err)
	}

	// Replace a stale link left behind by an earlier install
	if info, err := os.Lstat(dst); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("removing existing link: %w", err)
		}
	}

	if err := os.Symlink(abs, dst); err != nil {
		return fmt.Errorf("creating symlink: %w", err)
	}

	return nil
}

// Remove deletes the symlink at dst, never its target
func (l *SymlinkLinker) Remove(dst string) error {
	info, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Already removed
		}
		return fmt.Errorf("checking file: %w", err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("not a symlink: %s", dst)
	}

	if err := os.Remove(dst); err != nil {
		return fmt.Errorf("removing symlink: %w", err)
	}

	return nil
}

// IsPlaced checks if dst is a symlink
func (l *SymlinkLinker) IsPlaced(dst string) (bool, error) {
	info, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// Method returns the link method
func (l *SymlinkLinker) Method() domain.LinkMethod {
	return domain.LinkSymlink
}
