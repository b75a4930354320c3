package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DonovanMods/me3-manager/internal/domain"
)

func TestParseModConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		setup   func(t *testing.T) string // returns path to use
		wantErr error
		errMsg  string
	}{
		{
			name: "valid absolute path to existing file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "config.ini")
				if err := os.WriteFile(path, []byte("[general]\nfov = 90\n"), 0644); err != nil {
					t.Fatalf("failed to create test file: %v", err)
				}
				return path
			},
		},
		{
			name: "file not created yet",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "fresh.ini")
			},
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: domain.ErrValidation,
			errMsg:  "config path cannot be empty",
		},
		{
			name:    "relative path",
			path:    "config.ini",
			wantErr: domain.ErrValidation,
			errMsg:  "config path must be absolute",
		},
		{
			name:    "path with parent directory traversal",
			path:    "/etc/../etc/config.ini",
			wantErr: domain.ErrValidation,
			errMsg:  "config path contains invalid traversal",
		},
		{
			name: "parent directory missing",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope", "config.ini")
			},
			wantErr: domain.ErrNotFound,
			errMsg:  "config directory does not exist",
		},
		{
			name: "path to directory instead of file",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: domain.ErrValidation,
			errMsg:  "config path is a directory, not a file",
		},
		{
			name: "path with unsupported extension",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "mod.dll")
				if err := os.WriteFile(path, []byte("MZ"), 0644); err != nil {
					t.Fatalf("failed to create test file: %v", err)
				}
				return path
			},
			wantErr: domain.ErrValidation,
			errMsg:  "config file must be one of",
		},
		{
			name: "valid path with upper-case extension",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "Settings.INI")
				if err := os.WriteFile(path, []byte("a=b"), 0644); err != nil {
					t.Fatalf("failed to create test file: %v", err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if tt.setup != nil {
				path = tt.setup(t)
			}

			got, err := ParseModConfigPath(path)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("ParseModConfigPath(%q) expected error, got nil", path)
					return
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseModConfigPath(%q) error = %v, want %v", path, err, tt.wantErr)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseModConfigPath(%q) error = %q, want it to contain %q", path, err.Error(), tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseModConfigPath(%q) unexpected error: %v", path, err)
				return
			}

			if got != path {
				t.Errorf("ParseModConfigPath(%q) = %q, want %q", path, got, path)
			}
		})
	}
}
