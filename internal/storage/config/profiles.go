package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

// Store reads and writes the ME3 profile file and the manager settings file.
// Every write goes through WriteFileAtomic.
type Store struct {
	Format       ProfileFormat
	SettingsPath string
}

// NewStore returns a Store using the ME3 TOML profile format
func NewStore(settingsPath string) *Store {
	return &Store{Format: TOMLFormat{}, SettingsPath: settingsPath}
}

// LoadProfile reads a profile from disk. Entry paths are returned absolute.
func (s *Store) LoadProfile(path string) (*domain.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("profile %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	profile, err := s.format().Decode(data)
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			perr.Path = path
			return nil, perr
		}
		return nil, &domain.ParseError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	profile.Path = path
	for i := range profile.Entries {
		profile.Entries[i].Path = resolveEntryPath(dir, profile.Entries[i].Path)
	}

	return profile, nil
}

// SaveProfile writes a profile to p.Path. Entries under the profile's own
// directory are written relative to it, everything else absolute, both with
// forward slashes.
func (s *Store) SaveProfile(p *domain.Profile) error {
	if p.Path == "" {
		return fmt.Errorf("%w: profile has no path", domain.ErrValidation)
	}

	dir := filepath.Dir(p.Path)
	out := p.Clone()
	for i := range out.Entries {
		e := &out.Entries[i]
		if e.Kind == domain.KindPackage && e.ID == "" {
			e.ID = filepath.Base(e.Path)
		}
		e.Path = relEntryPath(dir, e.Path)
	}

	data, err := s.format().Encode(out)
	if err != nil {
		return err
	}

	return WriteFileAtomic(p.Path, data, 0644)
}

// DefaultProfile is what a game starts with when ME3 has not written one yet
func DefaultProfile(game *domain.Game) *domain.Profile {
	return &domain.Profile{
		GameID:   game.ID,
		Path:     game.ProfilePath,
		ModsDir:  game.ModsDir,
		Version:  domain.DefaultProfileVersion,
		Supports: []domain.Support{{Game: game.CLIID}},
	}
}

func (s *Store) format() ProfileFormat {
	if s.Format == nil {
		return TOMLFormat{}
	}
	return s.Format
}

// resolveEntryPath accepts either slash style and anchors relative paths at dir
func resolveEntryPath(dir, p string) string {
	p = filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	return filepath.Clean(p)
}

func relEntryPath(dir, p string) string {
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
