// Package linker places mod files and package folders into a game's mods
// folder by copying, symlinking or hardlinking them.
package linker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// Linker places a mod at dst and takes it away again. src may be a single
// file or a directory tree.
type Linker interface {
	Place(src, dst string) error
	Remove(dst string) error
	IsPlaced(dst string) (bool, error)
	Method() domain.LinkMethod
}

// New creates a linker for the given method
func New(method domain.LinkMethod) Linker {
	switch method {
	case domain.LinkHardlink:
		return NewHardlink()
	case domain.LinkSymlink:
		return NewSymlink()
	default:
		return NewCopy()
	}
}

// eachFile mirrors src's directory layout under dst and calls fn for every
// regular file. A file src is handled as a tree of one.
func eachFile(src, dst string, fn func(srcFile, dstFile string, mode fs.FileMode) error) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("creating destination dir: %w", err)
		}
		return fn(src, dst, info.Mode())
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, target, fi.Mode())
	})
}

// removePath deletes a file, a link or a whole tree without following links
func removePath(dst string) error {
	info, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking file: %w", err)
	}
	if info.IsDir() {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("removing folder: %w", err)
		}
		return nil
	}
	if err := os.Remove(dst); err != nil {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

func exists(dst string) (bool, error) {
	_, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
