// Package statusui prints climonitor's own startup/status lines —
// distinct from the wrapped tool's output, which is relayed verbatim
// through the PTY — with color and a spinner when stderr is a TTY.
package statusui

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Status symbols, matched to the teacher's output package.
const (
	CheckMark   = "✓" // ✓
	XMark       = "✗" // ✗
	WarningMark = "⚠" // ⚠
)

// Writer prints status lines to w, colored when isTTY reports the
// destination supports it.
type Writer struct {
	out   io.Writer
	isTTY bool

	success *color.Color
	failure *color.Color
	warning *color.Color
}

// New returns a Writer for out. fd is the file descriptor backing out,
// used to detect TTY/color support.
func New(out io.Writer, fd uintptr) *Writer {
	isTTY := term.IsTerminal(int(fd))

	return &Writer{
		out:     out,
		isTTY:   isTTY,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warning: color.New(color.FgYellow),
	}
}

func (w *Writer) line(tone *color.Color, prefix, message string) {
	if w.isTTY {
		tone.Fprint(w.out, prefix+" ")
		fmt.Fprintln(w.out, message)

		return
	}

	fmt.Fprintln(w.out, prefix+" "+message)
}

// Success prints a green checkmark line.
func (w *Writer) Success(format string, args ...any) {
	w.line(w.success, CheckMark, fmt.Sprintf(format, args...))
}

// Failure prints a red X line.
func (w *Writer) Failure(format string, args ...any) {
	w.line(w.failure, XMark, fmt.Sprintf(format, args...))
}

// Warning prints a yellow warning line.
func (w *Writer) Warning(format string, args ...any) {
	w.line(w.warning, WarningMark, fmt.Sprintf(format, args...))
}

// Spinner wraps briandowns/spinner with a non-TTY fallback that prints
// a single static line instead of animating.
type Spinner struct {
	spin     *spinner.Spinner
	writer   *Writer
	message  string
	disabled bool
}

// NewSpinner returns a Spinner for a short-lived operation (e.g.
// dialing the aggregator before the wrapped tool takes over the
// terminal).
func (w *Writer) NewSpinner(message string) *Spinner {
	if !w.isTTY {
		return &Spinner{writer: w, message: message, disabled: true}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = w.out
	s.Suffix = " " + message

	return &Spinner{spin: s, writer: w, message: message}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if s.disabled {
		fmt.Fprintf(s.writer.out, "%s... ", s.message)
		return
	}

	s.spin.Start()
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	if s.disabled {
		fmt.Fprintln(s.writer.out, "done")
		s.writer.Success("%s", message)

		return
	}

	s.spin.Stop()
	s.writer.Success("%s", message)
}

// StopWithWarning stops the spinner and prints a warning line, used
// when the aggregator connection fails but the launcher proceeds
// anyway.
func (s *Spinner) StopWithWarning(message string) {
	if s.disabled {
		fmt.Fprintln(s.writer.out, "warning")
		s.writer.Warning("%s", message)

		return
	}

	s.spin.Stop()
	s.writer.Warning("%s", message)
}
