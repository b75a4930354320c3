package linker

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// HardlinkLinker places mods using hard links. Folders are recreated and
// each file inside is linked.
type HardlinkLinker struct{}

// NewHardlink creates a new hardlink linker
func NewHardlink() *HardlinkLinker {
	return &HardlinkLinker{}
}

// Place hard links every file of src under dst
func (l *HardlinkLinker) Place(src, dst string) error {
	return eachFile(src, dst, func(s, d string, _ fs.FileMode) error {
		if err := os.Remove(d); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing existing file: %w", err)
		}
		if err := os.Link(s, d); err != nil {
			return fmt.Errorf("creating hardlink: %w", err)
		}
		return nil
	})
}

// Remove deletes the links at dst; the source files keep their data
func (l *HardlinkLinker) Remove(dst string) error {
	return removePath(dst)
}

// IsPlaced checks if dst exists (hardlinks are indistinguishable from regular files)
func (l *HardlinkLinker) IsPlaced(dst string) (bool, error) {
	return exists(dst)
}

// Method returns the link method
func (l *HardlinkLinker) Method() domain.LinkMethod {
	return domain.LinkHardlink
}
