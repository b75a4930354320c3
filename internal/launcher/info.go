package launcher

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	versionTimeout = 10 * time.Second
	infoTimeout    = 15 * time.Second
)

// Info is what `me3 info` reports about the installation
type Info struct {
	Version       string `json:"version,omitempty"`
	CommitID      string `json:"commit_id,omitempty"`
	ProfileDir    string `json:"profile_directory,omitempty"`
	LogsDir       string `json:"logs_directory,omitempty"`
	InstallPrefix string `json:"installation_prefix,omitempty"`
	SteamStatus   string `json:"steam_status,omitempty"`
	SteamPath     string `json:"steam_path,omitempty"`
}

var (
	versionRe       = regexp.MustCompile(`version="([^"]+)"`)
	commitRe        = regexp.MustCompile(`commit_id="([^"]+)"`)
	profileDirRe    = regexp.MustCompile(`Profile directory:\s*([^\n]+)`)
	logsDirRe       = regexp.MustCompile(`Logs directory:\s*([^\n]+)`)
	installPrefixRe = regexp.MustCompile(`Installation prefix:\s*([^\n]+)`)
	steamStatusRe   = regexp.MustCompile(`(?s)Steam.*?Status:\s*([^\n]+)`)
	steamPathRe     = regexp.MustCompile(`(?s)Steam.*?Path:\s*([^\n]+)`)
)

// ParseInfo extracts the fields of `me3 info` output. Missing fields stay empty.
func ParseInfo(output string) Info {
	output = StripANSI(output)
	find := func(re *regexp.Regexp) string {
		if m := re.FindStringSubmatch(output); m != nil {
			return strings.TrimSpace(m[1])
		}
		return ""
	}

	return Info{
		Version:       find(versionRe),
		CommitID:      find(commitRe),
		ProfileDir:    find(profileDirRe),
		LogsDir:       find(logsDirRe),
		InstallPrefix: find(installPrefixRe),
		SteamStatus:   find(steamStatusRe),
		SteamPath:     find(steamPathRe),
	}
}

// Installed reports whether `me3 --version` runs
func Installed(ctx context.Context, me3Path string, flatpak bool) bool {
	out, err := run(ctx, versionTimeout, hostCommand(me3Path, flatpak, "--version"))
	if err == nil {
		return true
	}
	lower := strings.ToLower(out)
	return strings.Contains(lower, "me3") || strings.Contains(lower, "version")
}

// GetInfo runs `me3 info` and parses its output
func GetInfo(ctx context.Context, me3Path string, flatpak bool) (*Info, error) {
	out, err := run(ctx, infoTimeout, hostCommand(me3Path, flatpak, "info"))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, fmt.Errorf("me3 info printed nothing")
	}
	info := ParseInfo(out)
	return &info, nil
}

func run(ctx context.Context, timeout time.Duration, argv []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = 100 * time.Millisecond
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return stdout.String(), fmt.Errorf("%s timed out after %v", strings.Join(argv, " "), timeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return stdout.String(), fmt.Errorf("%s failed with exit code %d: %s", strings.Join(argv, " "), exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), fmt.Errorf("running %s: %w", argv[0], err)
	}

	return stdout.String(), nil
}
