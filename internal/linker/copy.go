package linker

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// CopyLinker places mods by copying them
type CopyLinker struct{}

// NewCopy creates a new copy linker
func NewCopy() *CopyLinker {
	return &CopyLinker{}
}

// Place copies src (file or folder) to dst
func (l *CopyLinker) Place(src, dst string) error {
	return eachFile(src, dst, copyFile)
}

// Remove deletes the copy at dst
func (l *CopyLinker) Remove(dst string) error {
	return removePath(dst)
}

// IsPlaced checks if dst exists
func (l *CopyLinker) IsPlaced(dst string) (bool, error) {
	return exists(dst)
}

// Method returns the link method
func (l *CopyLinker) Method() domain.LinkMethod {
	return domain.LinkCopy
}

func copyFile(src, dst string, mode fs.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}

	return dstFile.Close()
}
