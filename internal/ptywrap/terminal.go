//go:build unix

package ptywrap

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// resizePollInterval is a fallback poll in case SIGWINCH delivery is
// ever missed (e.g. across some tmux/terminal multiplexer wrappers).
const resizePollInterval = 2 * time.Second

// RawTerminal places the user's controlling terminal into raw mode and
// guarantees restoration of the previous mode on any exit path,
// including panics — callers should defer Restore immediately after a
// successful Enable.
type RawTerminal struct {
	fd          int
	oldState    *term.State
	restoreOnce sync.Once
}

// Enable switches stdin into raw mode (no line buffering, no local
// echo) and returns a handle whose Restore undoes it.
func Enable() (*RawTerminal, error) {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	return &RawTerminal{fd: fd, oldState: oldState}, nil
}

// Restore returns the terminal to the mode it was in before Enable.
// Safe to call more than once and safe to call from a deferred
// recover() after a panic.
func (r *RawTerminal) Restore() {
	r.restoreOnce.Do(func() {
		if r.oldState != nil {
			_ = term.Restore(r.fd, r.oldState)
		}
	})
}

// TerminalSize returns the current (rows, cols) of stdout's controlling
// terminal, falling back to DefaultSize if it cannot be determined
// (e.g. stdout is not a TTY, in which case the error is also returned).
func TerminalSize() (Size, error) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return DefaultSize, err
	}

	if rows <= 0 || cols <= 0 {
		return DefaultSize, nil
	}

	return Size{Rows: rows, Cols: cols}, nil
}

// WatchResize invokes onResize once immediately and again every time
// SIGWINCH is observed, until ctx is done. It runs until ctx is
// canceled; callers typically run it in its own goroutine.
func WatchResize(ctx context.Context, onResize func(Size)) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(resizePollInterval)
	defer ticker.Stop()

	report := func() {
		size, err := TerminalSize()
		if err != nil {
			return
		}

		onResize(size)
	}

	report()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			report()
		case <-ticker.C:
			report()
		}
	}
}
