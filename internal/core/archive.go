package core

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// unpack7zTimeout bounds the external 7z process on corrupt archives
const unpack7zTimeout = 5 * time.Minute

// IsArchive reports whether name is a mod download Install can unpack
func IsArchive(name string) bool {
	return archiveFormat(name) != ""
}

func archiveFormat(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip":
		return "zip"
	case ".7z":
		return "7z"
	case ".rar":
		return "rar"
	default:
		return ""
	}
}

// Unpack extracts archive into destDir. Zip files are read natively; .7z
// and .rar need the 7z command on PATH.
func Unpack(ctx context.Context, archive, destDir string) error {
	format := archiveFormat(archive)
	if format == "" {
		return fmt.Errorf("unsupported archive format: %s", filepath.Ext(archive))
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	if format == "zip" {
		return unpackZip(ctx, archive, destDir)
	}
	return unpack7z(ctx, archive, destDir)
}

func unpackZip(ctx context.Context, archive, destDir string) (err error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing zip: %w", cerr)
		}
	}()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := unpackZipEntry(f, destDir); err != nil {
			return err
		}
	}

	return nil
}

func unpackZipEntry(f *zip.File, destDir string) (err error) {
	destPath, err := containedPath(destDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s in archive: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0600)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err = io.Copy(out, rc); err != nil {
		return fmt.Errorf("writing file %s: %w", destPath, err)
	}

	return nil
}

// containedPath joins name onto destDir and rejects entries that would land
// outside it ("zip slip").
func containedPath(destDir, name string) (string, error) {
	destDir = filepath.Clean(destDir)
	destPath := filepath.Join(destDir, filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))

	if destPath != destDir && !strings.HasPrefix(destPath, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected: %s", name)
	}
	return destPath, nil
}

func unpack7z(ctx context.Context, archive, destDir string) error {
	if _, err := exec.LookPath("7z"); err != nil {
		return fmt.Errorf("7z command not found: install p7zip to unpack .7z and .rar files")
	}

	ctx, cancel := context.WithTimeout(ctx, unpack7zTimeout)
	defer cancel()

	// -y: assume yes to all queries; -o takes the directory without a space
	cmd := exec.CommandContext(ctx, "7z", "x", "-y", "-o"+destDir, archive)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("7z timed out after %v", unpack7zTimeout)
		}
		return fmt.Errorf("7z failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

// findModRoots locates the mods inside an unpacked archive. Archives often
// wrap their content in one folder; that wrapper is looked through. Package
// folders are taken whole, DLLs at the top level individually.
func findModRoots(dir string) ([]string, error) {
	for {
		if IsPackageDir(dir) {
			return []string{dir}, nil
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		var roots []string
		var subdirs []string
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir() && IsPackageDir(path):
				roots = append(roots, path)
			case e.IsDir():
				subdirs = append(subdirs, path)
			case isDLL(e.Name()):
				roots = append(roots, path)
			}
		}

		if len(roots) > 0 {
			return roots, nil
		}
		if len(subdirs) != 1 {
			return nil, nil
		}
		dir = subdirs[0]
	}
}
