package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/BurntSushi/toml"
)

// ProfileFormat converts between profile file bytes and a domain.Profile.
// Entry paths are carried exactly as written in the file; ProfileStore
// resolves and relativises them.
type ProfileFormat interface {
	Decode(data []byte) (*domain.Profile, error)
	Encode(p *domain.Profile) ([]byte, error)
}

// TOMLFormat reads and writes ME3 .me3 profiles
type TOMLFormat struct{}

type tomlProfile struct {
	ProfileVersion string        `toml:"profileVersion"`
	Natives        []tomlNative  `toml:"natives"`
	Packages       []tomlPackage `toml:"packages"`
	Supports       []tomlSupport `toml:"supports"`
}

type tomlNative struct {
	Path        string           `toml:"path"`
	Optional    bool             `toml:"optional,omitempty"`
	Initializer *tomlInitializer `toml:"initializer,omitempty"`
	Finalizer   string           `toml:"finalizer,omitempty"`
	LoadBefore  []tomlDependency `toml:"load_before,omitempty"`
	LoadAfter   []tomlDependency `toml:"load_after,omitempty"`
}

type tomlPackage struct {
	ID         string           `toml:"id"`
	Path       string           `toml:"path"`
	Source     string           `toml:"source,omitempty"` // legacy spelling of path
	LoadBefore []tomlDependency `toml:"load_before,omitempty"`
	LoadAfter  []tomlDependency `toml:"load_after,omitempty"`
}

type tomlInitializer struct {
	Function string     `toml:"function,omitempty"`
	Delay    *tomlDelay `toml:"delay,omitempty"`
}

type tomlDelay struct {
	MS int `toml:"ms"`
}

type tomlDependency struct {
	ID       string `toml:"id"`
	Optional bool   `toml:"optional"`
}

type tomlSupport struct {
	Game string `toml:"game"`
}

// Decode parses an ME3 profile. Malformed input yields a *domain.ParseError
// with the line number filled in when the decoder reports one.
func (TOMLFormat) Decode(data []byte) (*domain.Profile, error) {
	var raw tomlProfile
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		perr := &domain.ParseError{Err: err}
		var tomlErr toml.ParseError
		if errors.As(err, &tomlErr) {
			perr.Line = tomlErr.Position.Line
		}
		return nil, perr
	}

	p := &domain.Profile{Version: raw.ProfileVersion}
	if p.Version == "" {
		p.Version = domain.DefaultProfileVersion
	}

	for _, n := range raw.Natives {
		if n.Path == "" {
			return nil, &domain.ParseError{Err: errors.New("natives entry without path")}
		}
		entry := domain.ProfileEntry{
			Path:       n.Path,
			Kind:       domain.KindNative,
			Optional:   n.Optional,
			Finalizer:  n.Finalizer,
			LoadBefore: fromTOMLDeps(n.LoadBefore),
			LoadAfter:  fromTOMLDeps(n.LoadAfter),
		}
		if n.Initializer != nil {
			entry.Initializer = &domain.Initializer{Function: n.Initializer.Function}
			if n.Initializer.Delay != nil {
				entry.Initializer.DelayMS = n.Initializer.Delay.MS
			}
		}
		p.Entries = append(p.Entries, entry)
	}

	for _, pkg := range raw.Packages {
		path := pkg.Path
		if path == "" {
			path = pkg.Source
		}
		if path == "" {
			return nil, &domain.ParseError{Err: fmt.Errorf("package %q without path", pkg.ID)}
		}
		p.Entries = append(p.Entries, domain.ProfileEntry{
			Path:       path,
			Kind:       domain.KindPackage,
			ID:         pkg.ID,
			LoadBefore: fromTOMLDeps(pkg.LoadBefore),
			LoadAfter:  fromTOMLDeps(pkg.LoadAfter),
		})
	}

	for _, s := range raw.Supports {
		p.Supports = append(p.Supports, domain.Support{Game: s.Game})
	}

	return p, nil
}

// Encode writes natives and packages in profile order. Output depends only on
// the profile's content, so re-encoding a decoded profile is stable.
func (TOMLFormat) Encode(p *domain.Profile) ([]byte, error) {
	raw := tomlProfile{
		ProfileVersion: p.Version,
		Natives:        []tomlNative{},
		Packages:       []tomlPackage{},
		Supports:       []tomlSupport{},
	}
	if raw.ProfileVersion == "" {
		raw.ProfileVersion = domain.DefaultProfileVersion
	}

	for _, e := range p.Entries {
		switch e.Kind {
		case domain.KindPackage:
			raw.Packages = append(raw.Packages, tomlPackage{
				ID:         e.ID,
				Path:       e.Path,
				LoadBefore: toTOMLDeps(e.LoadBefore),
				LoadAfter:  toTOMLDeps(e.LoadAfter),
			})
		default:
			n := tomlNative{
				Path:       e.Path,
				Optional:   e.Optional,
				Finalizer:  e.Finalizer,
				LoadBefore: toTOMLDeps(e.LoadBefore),
				LoadAfter:  toTOMLDeps(e.LoadAfter),
			}
			if e.Initializer != nil {
				n.Initializer = &tomlInitializer{Function: e.Initializer.Function}
				if e.Initializer.Function == "" {
					n.Initializer.Delay = &tomlDelay{MS: e.Initializer.DelayMS}
				}
			}
			raw.Natives = append(raw.Natives, n)
		}
	}

	for _, s := range p.Supports {
		raw.Supports = append(raw.Supports, tomlSupport{Game: s.Game})
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(raw); err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	return buf.Bytes(), nil
}

func fromTOMLDeps(deps []tomlDependency) []domain.Dependency {
	if len(deps) == 0 {
		return nil
	}
	out := make([]domain.Dependency, len(deps))
	for i, d := range deps {
		out[i] = domain.Dependency{ID: d.ID, Optional: d.Optional}
	}
	return out
}

func toTOMLDeps(deps []domain.Dependency) []tomlDependency {
	if len(deps) == 0 {
		return nil
	}
	out := make([]tomlDependency, len(deps))
	for i, d := range deps {
		out[i] = tomlDependency{ID: d.ID, Optional: d.Optional}
	}
	return out
}
