package domain

// ModKind is the typed classification of a path dropped on the manager
type ModKind int

const (
	KindNotAMod ModKind = iota
	KindNative          // A DLL loaded by ME3 through a [[natives]] entry
	KindPackage         // A folder of game asset overrides loaded through [[packages]]
)

func (k ModKind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindPackage:
		return "package"
	default:
		return "not-a-mod"
	}
}

// Mod is a mod file or folder known to the manager. Identity is Path.
type Mod struct {
	Path             string // Absolute path
	Name             string // Display name, derived from the file or folder name
	Kind             ModKind
	Enabled          bool
	External         bool   // Registered from outside the game's mods folder
	Parent           string // Package folder name for a DLL nested inside a package
	Missing          bool   // External registration whose file no longer exists
	ConfigPath       string // Optional .ini path for native mods
	HasRegulation    bool   // Package ships a regulation.bin (active or not)
	RegulationActive bool   // Package's regulation.bin is the one the game loads
}
