package domain

import "path/filepath"

// DefaultProfileVersion is written into new profiles
const DefaultProfileVersion = "v1"

// Dependency orders one mod relative to another by its ME3 id
type Dependency struct {
	ID       string
	Optional bool
}

// Initializer controls when ME3 calls into a native mod after loading it
type Initializer struct {
	Function string // Exported function to call
	DelayMS  int    // Or: wait this long before considering the mod initialised
}

// ProfileEntry is one enabled mod in a profile, keyed by absolute path.
// The option fields are carried through rewrites untouched.
type ProfileEntry struct {
	Path        string
	Kind        ModKind
	ID          string // Package id (folder name); empty for natives
	Optional    bool
	Initializer *Initializer
	Finalizer   string
	LoadBefore  []Dependency
	LoadAfter   []Dependency
}

// Support declares a game the profile targets
type Support struct {
	Game string
}

// Profile is the ME3 declaration of which mods are active for a game
type Profile struct {
	GameID   string
	Path     string // Profile file
	ModsDir  string
	Version  string
	Supports []Support
	Entries  []ProfileEntry // Enabled mods in load order
}

// EnabledPaths returns the enabled mod paths in profile order
func (p *Profile) EnabledPaths() []string {
	paths := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		paths[i] = e.Path
	}
	return paths
}

// IsEnabled reports whether path has an entry
func (p *Profile) IsEnabled(path string) bool {
	return p.indexOf(path) >= 0
}

// Entry returns the entry for path
func (p *Profile) Entry(path string) (ProfileEntry, bool) {
	i := p.indexOf(path)
	if i < 0 {
		return ProfileEntry{}, false
	}
	return p.Entries[i], true
}

// Enable appends entry unless its path is already present. Returns true if
// the profile changed.
func (p *Profile) Enable(entry ProfileEntry) bool {
	if p.IsEnabled(entry.Path) {
		return false
	}
	entry.Path = filepath.Clean(entry.Path)
	p.Entries = append(p.Entries, entry)
	return true
}

// Disable removes the entry for path. Returns true if the profile changed.
func (p *Profile) Disable(path string) bool {
	i := p.indexOf(path)
	if i < 0 {
		return false
	}
	p.Entries = append(p.Entries[:i:i], p.Entries[i+1:]...)
	return true
}

// Clone returns a deep copy, used to roll back failed mutations
func (p *Profile) Clone() *Profile {
	c := *p
	c.Supports = append([]Support(nil), p.Supports...)
	c.Entries = make([]ProfileEntry, len(p.Entries))
	for i, e := range p.Entries {
		if e.Initializer != nil {
			init := *e.Initializer
			e.Initializer = &init
		}
		e.LoadBefore = append([]Dependency(nil), e.LoadBefore...)
		e.LoadAfter = append([]Dependency(nil), e.LoadAfter...)
		c.Entries[i] = e
	}
	return &c
}

func (p *Profile) indexOf(path string) int {
	path = filepath.Clean(path)
	for i, e := range p.Entries {
		if filepath.Clean(e.Path) == path {
			return i
		}
	}
	return -1
}
