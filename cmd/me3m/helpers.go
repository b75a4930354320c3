package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/DonovanMods/me3-manager/internal/core"
	"github.com/DonovanMods/me3-manager/internal/domain"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
)

var (
	colorGreen  = color.New(color.FgGreen).SprintFunc()
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorYellow = color.New(color.FgYellow).SprintFunc()
	colorFaint  = color.New(color.Faint).SprintFunc()
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveModPath maps a command line reference to a mod path. A reference
// that names nothing listed but looks like a path is passed through so the
// manager can report what is wrong with it.
func resolveModPath(m *core.Manager, ref string) (string, error) {
	mod, err := m.Find(ref)
	if err == nil {
		return mod.Path, nil
	}
	if errors.Is(err, domain.ErrModNotFound) && strings.ContainsRune(ref, filepath.Separator) {
		return filepath.Abs(ref)
	}
	return "", err
}

// confirm asks a yes/no question unless skip is set. A "no" is ErrCancelled.
func confirm(label string, skip bool) error {
	if skip {
		return nil
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return ErrCancelled
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

// modJSON is the --json shape of a mod
type modJSON struct {
	Name             string `json:"name"`
	Path             string `json:"path"`
	Kind             string `json:"kind"`
	Enabled          bool   `json:"enabled"`
	External         bool   `json:"external"`
	Missing          bool   `json:"missing,omitempty"`
	Parent           string `json:"parent,omitempty"`
	ConfigPath       string `json:"config_path,omitempty"`
	HasRegulation    bool   `json:"has_regulation,omitempty"`
	RegulationActive bool   `json:"regulation_active,omitempty"`
}

func toModJSON(mod domain.Mod) modJSON {
	return modJSON{
		Name:             mod.Name,
		Path:             mod.Path,
		Kind:             mod.Kind.String(),
		Enabled:          mod.Enabled,
		External:         mod.External,
		Missing:          mod.Missing,
		Parent:           mod.Parent,
		ConfigPath:       mod.ConfigPath,
		HasRegulation:    mod.HasRegulation,
		RegulationActive: mod.RegulationActive,
	}
}
