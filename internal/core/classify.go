package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

const (
	regulationFile     = "regulation.bin"
	regulationDisabled = "regulation.bin.disabled"
)

// packageFolders are the game asset folders ME3 overrides from a package
var packageFolders = map[string]bool{
	"_backup": true, "_unknown": true, "action": true, "asset": true,
	"chr": true, "cutscene": true, "event": true, "font": true,
	"map": true, "material": true, "menu": true, "movie": true,
	"msg": true, "other": true, "param": true, "parts": true,
	"script": true, "sd": true, "sfx": true, "shader": true, "sound": true,
}

// Classify reports what kind of mod path is. Files are natives when they
// are DLLs; folders are packages when they hold game asset overrides. A path
// that does not exist is judged by its extension alone.
func Classify(path string) domain.ModKind {
	info, err := os.Stat(path)
	if err != nil {
		if isDLL(path) {
			return domain.KindNative
		}
		return domain.KindNotAMod
	}

	if info.IsDir() {
		if IsPackageDir(path) {
			return domain.KindPackage
		}
		return domain.KindNotAMod
	}
	if isDLL(path) {
		return domain.KindNative
	}
	return domain.KindNotAMod
}

// IsPackageDir reports whether dir looks like a package mod
func IsPackageDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() && packageFolders[name] {
			return true
		}
		if !e.IsDir() && (name == regulationFile || name == regulationDisabled) {
			return true
		}
	}
	return false
}

// DisplayName is the name a mod is listed under
func DisplayName(path string) string {
	base := filepath.Base(path)
	if isDLL(base) {
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}

// DefaultConfigPath is where a native mod keeps its settings by convention
func DefaultConfigPath(modPath string) string {
	return filepath.Join(filepath.Dir(modPath), DisplayName(modPath), "config.ini")
}

func isDLL(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".dll")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
