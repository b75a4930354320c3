package domain

import (
	"path/filepath"
	"strings"
)

// LinkMethod determines how an installed mod lands in the mods folder
type LinkMethod int

const (
	LinkCopy     LinkMethod = iota // Default: copy (survives the source being deleted)
	LinkSymlink                    // Symlink (space efficient)
	LinkHardlink                   // Hardlink (same filesystem only)
)

func (m LinkMethod) String() string {
	switch m {
	case LinkCopy:
		return "copy"
	case LinkSymlink:
		return "symlink"
	case LinkHardlink:
		return "hardlink"
	default:
		return "unknown"
	}
}

// ParseLinkMethod converts a string to LinkMethod
func ParseLinkMethod(s string) LinkMethod {
	switch s {
	case "symlink":
		return LinkSymlink
	case "hardlink":
		return LinkHardlink
	default:
		return LinkCopy
	}
}

// Game is a title supported by Mod Engine 3
type Game struct {
	ID          string // Unique slug, e.g., "eldenring"
	Name        string // Display name
	CLIID       string // Value passed to `me3 launch --game`
	ModsDir     string // Absolute path of the game's mods folder
	ProfilePath string // Absolute path of the ME3 profile file
	ExePath     string // Optional custom game executable
}

// ProfileName is the profile file name without extension, as me3 expects for -p
func (g *Game) ProfileName() string {
	base := filepath.Base(g.ProfilePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
