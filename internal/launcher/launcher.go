// Package launcher starts games through the me3 command line and streams
// their output to followers.
package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// historyLimit bounds the lines replayed to a late follower
const historyLimit = 1000

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// Options describes one game launch
type Options struct {
	Me3Path     string // me3 binary; "me3" when empty
	ProfilePath string // ME3 profile to load
	GameCLIID   string // me3 --game value, needed with ExePath
	ExePath     string // Custom game executable; ME3 auto-detects the game when empty
	Flatpak     bool   // Run me3 on the host from inside a Flatpak sandbox
}

// InFlatpak reports whether this process runs inside a Flatpak sandbox
func InFlatpak() bool {
	return runtime.GOOS == "linux" && os.Getenv("FLATPAK_ID") != ""
}

// Command returns the argv that launches the game
func Command(opts Options) ([]string, error) {
	if opts.ProfilePath == "" {
		return nil, errors.New("no profile to launch")
	}

	var args []string
	if opts.ExePath != "" {
		if opts.GameCLIID == "" {
			return nil, errors.New("a custom executable needs the game's me3 id")
		}
		profileName := strings.TrimSuffix(filepath.Base(opts.ProfilePath), filepath.Ext(opts.ProfilePath))
		args = []string{"launch", "--exe", opts.ExePath, "--skip-steam-init", "--game", opts.GameCLIID, "-p", profileName}
	} else {
		args = []string{"launch", "--auto-detect", "-p", opts.ProfilePath}
	}

	return hostCommand(opts.Me3Path, opts.Flatpak, args...), nil
}

func hostCommand(me3 string, flatpak bool, args ...string) []string {
	if me3 == "" {
		me3 = "me3"
	}
	argv := append([]string{me3}, args...)
	if flatpak {
		argv = append([]string{"flatpak-spawn", "--host"}, argv...)
	}
	return argv
}

// StripANSI removes terminal colour sequences from a line of me3 output
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

type follower struct {
	ch   chan string
	quit chan struct{}
	once sync.Once
}

// Process is a running game launch. Its merged stdout and stderr are read
// line by line and handed to every follower.
type Process struct {
	cmd  *exec.Cmd
	argv []string

	mu        sync.Mutex
	history   []string
	followers []*follower
	finished  bool

	done chan struct{}
	err  error
}

// Start launches the game. Cancelling ctx kills the process.
func Start(ctx context.Context, opts Options) (*Process, error) {
	argv, err := Command(opts)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("starting %s: %w", argv[0], err)
	}

	p := &Process{cmd: cmd, argv: argv, done: make(chan struct{})}

	go func() {
		pumped := make(chan struct{})
		go func() {
			p.pump(pr)
			close(pumped)
		}()

		err := cmd.Wait()
		pw.Close()
		<-pumped
		p.finish(err)
	}()

	return p, nil
}

// Args returns the command line the process was started with
func (p *Process) Args() []string {
	return slices.Clone(p.argv)
}

// Follow returns the output lines seen so far followed by new ones as they
// arrive. The channel closes when the process exits. The returned function
// stops following; it is safe to call more than once.
func (p *Process) Follow(buf int) (<-chan string, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := &follower{
		ch:   make(chan string, buf+len(p.history)),
		quit: make(chan struct{}),
	}
	for _, line := range p.history {
		f.ch <- line
	}
	if p.finished {
		close(f.ch)
	} else {
		p.followers = append(p.followers, f)
	}

	return f.ch, func() { f.once.Do(func() { close(f.quit) }) }
}

// Done is closed once the process has exited and its output is drained
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit error
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Stop kills the process
func (p *Process) Stop() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stopping game: %w", err)
	}
	return nil
}

func (p *Process) pump(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		p.mu.Lock()
		p.history = append(p.history, line)
		if len(p.history) > historyLimit {
			p.history = p.history[len(p.history)-historyLimit:]
		}
		followers := slices.Clone(p.followers)
		p.mu.Unlock()

		for _, f := range followers {
			select {
			case <-f.quit:
				p.drop(f)
				continue
			default:
			}
			select {
			case f.ch <- line:
			case <-f.quit:
				p.drop(f)
			}
		}
	}

	// Keep the writer side unblocked if scanning stopped early
	io.Copy(io.Discard, r)
}

func (p *Process) drop(f *follower) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := slices.Index(p.followers, f)
	if i < 0 {
		return
	}
	p.followers = slices.Delete(p.followers, i, i+1)
	close(f.ch)
}

func (p *Process) finish(err error) {
	p.mu.Lock()
	p.finished = true
	followers := p.followers
	p.followers = nil
	p.err = err
	p.mu.Unlock()

	for _, f := range followers {
		close(f.ch)
	}
	close(p.done)
}
