//go:build unix

// Package ptywrap spawns a wrapped CLI tool attached to a pseudo-terminal
// and relays bytes between it and the user's real terminal transparently,
// while feeding a copy of the child's output to a screen buffer for
// session-state detection.
package ptywrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// defaultShutdownDeadline bounds how long Close waits for a SIGTERM'd
// child before escalating to SIGKILL.
const defaultShutdownDeadline = 3 * time.Second

// Tool identifies a wrapped CLI by its resolvable executable name.
type Tool string

const (
	ToolClaude Tool = "claude"
	ToolGemini Tool = "gemini"
)

// Size is a terminal size in character cells.
type Size struct {
	Rows, Cols int
}

// DefaultSize is used when the controlling terminal's size cannot be
// determined, per spec.md's PTY Wrapper startup contract.
var DefaultSize = Size{Rows: 24, Cols: 80}

// Options configures a Process.
type Options struct {
	Tool Tool
	Args []string
	Size Size

	// Env overrides the inherited parent environment when non-nil.
	Env []string

	// OnOutput receives every chunk of raw bytes read from the child,
	// in addition to whatever the caller writes to the real terminal —
	// this is the screen buffer's feed.
	OnOutput func([]byte)
}

// Process wraps a single spawned child attached to a PTY.
type Process struct {
	mu   sync.Mutex
	ptmx *os.File
	cmd  *exec.Cmd
	pgid int

	shutdownDeadline time.Duration

	closeOnce sync.Once
	done      chan struct{}

	waitOnce   sync.Once
	waitErr    error
	waitDone   chan struct{}
	readerDone chan struct{}

	onOutput func([]byte)

	// seams for tests
	startPTYWithSize func(*exec.Cmd, *pty.Winsize) (*os.File, error)
	setPTYSize       func(*os.File, *pty.Winsize) error
}

// Start resolves the tool's executable, allocates a PTY sized to
// opts.Size, and spawns the child with the PTY as its controlling
// terminal, inheriting the parent environment (or opts.Env) and cwd.
func Start(opts Options) (*Process, error) {
	path, err := exec.LookPath(string(opts.Tool))
	if err != nil {
		return nil, fmt.Errorf("resolve %s executable: %w", opts.Tool, err)
	}

	size := opts.Size
	if size.Rows <= 0 || size.Cols <= 0 {
		size = DefaultSize
	}

	cmd := exec.Command(path, opts.Args...) //nolint:gosec // tool/args are caller-controlled

	if opts.Env != nil {
		cmd.Env = opts.Env
	} else {
		cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	}

	p := &Process{
		shutdownDeadline: defaultShutdownDeadline,
		done:             make(chan struct{}),
		waitDone:         make(chan struct{}),
		readerDone:       make(chan struct{}),
		onOutput:         opts.OnOutput,
		startPTYWithSize: pty.StartWithSize,
		setPTYSize:       pty.Setsize,
	}

	ptmx, err := p.startPTYWithSize(cmd, &pty.Winsize{
		Rows: uint16(size.Rows),
		Cols: uint16(size.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}

	p.ptmx = ptmx
	p.cmd = cmd

	if cmd.Process != nil && cmd.Process.Pid > 0 {
		if pgid, pgErr := syscall.Getpgid(cmd.Process.Pid); pgErr == nil {
			p.pgid = pgid
		}
	}

	slog.Default().Debug("pty spawned",
		slog.String("component", "pty"),
		slog.String("tool", string(opts.Tool)),
		slog.Int("rows", size.Rows),
		slog.Int("cols", size.Cols),
	)

	return p, nil
}

// Resize updates the PTY's window size, which delivers SIGWINCH to the
// child.
func (p *Process) Resize(size Size) error {
	p.mu.Lock()
	ptmx := p.ptmx
	p.mu.Unlock()

	if ptmx == nil {
		return nil
	}

	return p.setPTYSize(ptmx, &pty.Winsize{
		Rows: uint16(size.Rows),
		Cols: uint16(size.Cols),
	})
}

// Write sends bytes to the child's stdin (the PTY master).
func (p *Process) Write(b []byte) (int, error) {
	p.mu.Lock()
	ptmx := p.ptmx
	p.mu.Unlock()

	if ptmx == nil {
		return 0, nil
	}

	n, err := ptmx.Write(b)
	if err != nil {
		return n, fmt.Errorf("write to pty: %w", err)
	}

	return n, nil
}

// Relay copies bytes from the child's PTY master to w, and to
// p.onOutput if set, until the child exits or the process is closed.
// It returns when the PTY read side is exhausted.
func (p *Process) Relay(w io.Writer) {
	defer close(p.readerDone)

	buf := make([]byte, 4096)

	for {
		select {
		case <-p.done:
			return
		default:
		}

		n, err := p.ptmx.Read(buf)
		if n > 0 {
			if w != nil {
				_, _ = w.Write(buf[:n])
			}

			if p.onOutput != nil {
				p.onOutput(buf[:n])
			}
		}

		if err != nil {
			return
		}
	}
}

// Wait blocks until the child process exits and returns its exit
// status. Safe to call concurrently with Close or more than once; the
// underlying cmd.Wait is only ever invoked a single time.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		if p.cmd != nil {
			p.waitErr = p.cmd.Wait()
		}

		close(p.waitDone)
	})

	<-p.waitDone

	return p.waitErr
}

// Close terminates the child, escalating from SIGTERM to SIGKILL after
// the shutdown deadline, and closes the PTY master. Safe to call more
// than once, and safe to call concurrently with Wait.
func (p *Process) Close() {
	p.closeOnce.Do(func() {
		close(p.done)

		p.mu.Lock()
		ptmx := p.ptmx
		cmd := p.cmd
		pgid := p.pgid
		p.mu.Unlock()

		if ptmx != nil {
			_ = ptmx.Close()
		}

		if cmd == nil || cmd.Process == nil {
			return
		}

		go p.Wait()

		sendSignal(cmd.Process.Pid, pgid, syscall.SIGTERM)

		select {
		case <-p.waitDone:
			return
		case <-time.After(p.shutdownDeadline):
			sendSignal(cmd.Process.Pid, pgid, syscall.SIGKILL)

			select {
			case <-p.waitDone:
			case <-time.After(p.shutdownDeadline):
			}
		}
	})
}

func sendSignal(pid, pgid int, sig syscall.Signal) {
	if pgid > 0 {
		if err := syscall.Kill(-pgid, sig); err == nil || errors.Is(err, syscall.ESRCH) {
			return
		}
	}

	if pid <= 0 {
		return
	}

	_ = syscall.Kill(pid, sig)
}
