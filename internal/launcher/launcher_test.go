package launcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeMe3(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "me3")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/bash\n"+script), 0755))
	return path
}

func collect(t *testing.T, ch <-chan string) []string {
	t.Helper()
	var lines []string
	timeout := time.After(10 * time.Second)
	for {
		select {
		case line, ok := <-ch:
			if !ok {
				return lines
			}
			lines = append(lines, line)
		case <-timeout:
			t.Fatal("timed out waiting for output")
		}
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "auto detect",
			opts: Options{ProfilePath: "/p/eldenring-default.me3"},
			want: []string{"me3", "launch", "--auto-detect", "-p", "/p/eldenring-default.me3"},
		},
		{
			name: "custom executable",
			opts: Options{
				Me3Path:     "/usr/bin/me3",
				ProfilePath: "/p/eldenring-default.me3",
				ExePath:     "/games/er/eldenring.exe",
				GameCLIID:   "elden-ring",
			},
			want: []string{"/usr/bin/me3", "launch", "--exe", "/games/er/eldenring.exe", "--skip-steam-init", "--game", "elden-ring", "-p", "eldenring-default"},
		},
		{
			name: "flatpak",
			opts: Options{ProfilePath: "/p/nr.me3", Flatpak: true},
			want: []string{"flatpak-spawn", "--host", "me3", "launch", "--auto-detect", "-p", "/p/nr.me3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Command(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_Invalid(t *testing.T) {
	_, err := Command(Options{})
	assert.Error(t, err)

	_, err = Command(Options{ProfilePath: "/p/a.me3", ExePath: "/games/er.exe"})
	assert.Error(t, err)
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "INFO loaded ersc.dll", StripANSI("\x1b[32mINFO\x1b[0m loaded \x1b[1;34mersc.dll\x1b[0m"))
	assert.Equal(t, "plain", StripANSI("plain"))
}

func TestStart_StreamsMergedOutput(t *testing.T) {
	me3 := fakeMe3(t, `echo "args: $*"
echo "warning from stderr" >&2
echo "done"
`)

	p, err := Start(context.Background(), Options{Me3Path: me3, ProfilePath: "/p/er.me3"})
	require.NoError(t, err)

	lines, stop := p.Follow(16)
	defer stop()

	got := collect(t, lines)
	require.NoError(t, p.Wait())

	assert.Contains(t, got, "args: launch --auto-detect -p /p/er.me3")
	assert.Contains(t, got, "warning from stderr")
	assert.Contains(t, got, "done")
}

func TestFollow_ReplaysHistoryAfterExit(t *testing.T) {
	me3 := fakeMe3(t, "echo one\necho two\n")

	p, err := Start(context.Background(), Options{Me3Path: me3, ProfilePath: "/p/er.me3"})
	require.NoError(t, err)
	require.NoError(t, p.Wait())

	lines, stop := p.Follow(0)
	stop()
	stop()
	assert.Equal(t, []string{"one", "two"}, collect(t, lines))
}

func TestFollow_UnsubscribeDoesNotBlock(t *testing.T) {
	me3 := fakeMe3(t, "for i in $(seq 1 200); do echo line $i; done\n")

	p, err := Start(context.Background(), Options{Me3Path: me3, ProfilePath: "/p/er.me3"})
	require.NoError(t, err)

	_, stop := p.Follow(0)
	stop()

	select {
	case <-p.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("process output stalled on a stopped follower")
	}
}

func TestWait_ExitError(t *testing.T) {
	me3 := fakeMe3(t, "echo failed >&2\nexit 3\n")

	p, err := Start(context.Background(), Options{Me3Path: me3, ProfilePath: "/p/er.me3"})
	require.NoError(t, err)
	assert.Error(t, p.Wait())
}

func TestStart_MissingBinary(t *testing.T) {
	_, err := Start(context.Background(), Options{Me3Path: filepath.Join(t.TempDir(), "nope"), ProfilePath: "/p/er.me3"})
	assert.Error(t, err)
}
