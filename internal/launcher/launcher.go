// Package launcher glues the screen buffer, state detector, PTY
// wrapper, and reporting transport into the end-to-end session spec.md
// §4.5 describes: spawn the wrapped tool, relay its terminal
// interactively, and stream classified state transitions to an
// aggregator without ever blocking the user on the aggregator's
// availability.
package launcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/climonitor/climonitor/internal/clierr"
	"github.com/climonitor/climonitor/internal/detect"
	"github.com/climonitor/climonitor/internal/protocol"
	"github.com/climonitor/climonitor/internal/ptywrap"
	"github.com/climonitor/climonitor/internal/screen"
	"github.com/climonitor/climonitor/internal/statusui"
	"github.com/climonitor/climonitor/internal/transport"
)

// shutdownGrace bounds how long the relay loop drains PTY reads after
// receiving SIGINT/SIGTERM, per spec.md §5.
const shutdownGrace = 200 * time.Millisecond

// eventQueueCapacity is the bounded queue size for the transport writer
// task, per spec.md §5's "capacity 64 chunks" scheduling model.
const eventQueueCapacity = 64

// Options configures a single launcher run.
type Options struct {
	// WorkingDir is the working directory recorded in the launcher
	// identity, defaulting to the launcher's own cwd when empty. The
	// child process always inherits the launcher's own cwd.
	WorkingDir string

	// Transport is the resolved aggregator connection configuration.
	Transport transport.Config

	// TranscriptPath is the raw PTY-output copy destination (spec.md
	// §6's --log-file / CLIMONITOR_LOG_FILE). Empty disables it.
	TranscriptPath string

	// Verbose enables the screen buffer's EL-2 pre-clear line trace
	// (spec.md §4.1), emitted through the diagnostic logger rather than
	// the raw transcript.
	Verbose bool
}

// Run spawns tool (one of detect's registered names) with args attached
// to a PTY, relays it interactively, and reports classified state
// transitions to the configured transport. It returns the wrapped
// tool's exit code, or an error for pre-spawn failures.
func Run(ctx context.Context, tool string, args []string, opts Options) (int, error) {
	detectorInfo, ok := detect.Lookup(tool)
	if !ok {
		return 0, clierr.UnknownTool(tool)
	}

	workingDir := opts.WorkingDir
	if workingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workingDir = wd
		}
	}

	identity := NewIdentity(tool, workingDir)

	rep := newReporter(opts.Transport)

	status := statusui.New(os.Stderr, os.Stderr.Fd())
	spin := status.NewSpinner("Connecting to monitoring aggregator")
	spin.Start()

	connectCtx, cancelConnect := context.WithTimeout(ctx, opts.Transport.ConnectTimeout)
	rep.connect(connectCtx)
	cancelConnect()

	if rep.connected {
		spin.StopWithSuccess("Connected to monitoring aggregator")
		rep.send(protocol.NewConnect(identity, time.Now()))
	} else {
		spin.StopWithWarning("Continuing without aggregator reporting")
	}

	transcript, err := openTranscript(opts.TranscriptPath)
	if err != nil {
		slog.Default().Warn("transcript file unavailable, continuing without it",
			slog.String("component", "launcher"),
			slog.String("error", err.Error()),
		)
	}
	defer closeTranscript(transcript)

	size, err := ptywrap.TerminalSize()
	if err != nil {
		size = ptywrap.DefaultSize
	}

	buf := screen.New(size.Rows, size.Cols)
	buf.Verbose = opts.Verbose
	buf.TraceSink = newTraceSink(slog.Default(), opts.Verbose)

	detector := detectorInfo.New()

	events := make(chan protocol.SessionEvent, eventQueueCapacity)

	session := &relay{
		buf:        buf,
		detector:   detector,
		transcript: transcript,
		events:     events,
	}

	proc, err := ptywrap.Start(ptywrap.Options{
		Tool:     ptywrap.Tool(tool),
		Args:     args,
		Size:     size,
		OnOutput: session.onOutput,
	})
	if err != nil {
		rep.disconnect()

		return 0, clierr.SpawnFailed(tool, err)
	}

	raw, rawErr := ptywrap.Enable()
	if rawErr != nil {
		slog.Default().Warn("failed to enter raw terminal mode",
			slog.String("component", "launcher"),
			slog.String("error", rawErr.Error()),
		)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(3)
	go func() { defer wg.Done(); transportWriter(runCtx, rep, events) }()
	go func() { defer wg.Done(); proc.Relay(os.Stdout) }()
	go func() { defer wg.Done(); copyStdin(runCtx, proc) }()

	wg.Add(1)
	go func() { defer wg.Done(); watchResize(runCtx, proc, buf) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	waitCh := make(chan error, 1)
	go func() { waitCh <- proc.Wait() }()

	var waitErr error

	select {
	case waitErr = <-waitCh:
	case <-sigCh:
		time.Sleep(shutdownGrace)

		proc.Close()
		waitErr = <-waitCh
	}

	cancel()
	proc.Close()

	if raw != nil {
		raw.Restore()
	}

	wg.Wait()

	if rep.connected {
		rep.send(protocol.NewDisconnect(exitCodePtr(waitErr), time.Now()))
		rep.disconnect()
	}

	close(events)

	return exitCodeFromWaitErr(waitErr), nil
}

// relay holds the PTY-reader task's mutable state: spec.md §5 pins the
// screen buffer and detector to that single task, so no locking is
// needed here.
type relay struct {
	buf        *screen.Buffer
	detector   detect.Detector
	transcript io.WriteCloser

	lastContext string

	events chan<- protocol.SessionEvent
}

func (s *relay) onOutput(chunk []byte) {
	if s.transcript != nil {
		_, _ = s.transcript.Write(chunk)
	}

	s.buf.Write(chunk)

	snap := detect.Snapshot{
		Lines: s.buf.Lines(),
		Boxes: s.buf.Boxes(),
	}

	if state, ok := s.detector.Tick(snap); ok {
		enqueue(s.events, protocol.NewStateUpdate(state.String(), time.Now()))
	}

	if ctxStr, ok := s.detector.Context(snap); ok && ctxStr != s.lastContext {
		s.lastContext = ctxStr
		enqueue(s.events, protocol.NewContextUpdate(ctxStr, time.Now()))
	}
}

// enqueue is a non-blocking send. Per spec.md §5 the user-facing PTY
// copy must never stall on a slow or disconnected transport; a full
// queue drops the new event rather than block the PTY-reader task.
func enqueue(events chan<- protocol.SessionEvent, ev protocol.SessionEvent) {
	select {
	case events <- ev:
	default:
		slog.Default().Warn("event queue full, dropping event",
			slog.String("component", "launcher"),
			slog.String("event.type", string(ev.Type)),
		)
	}
}

func transportWriter(ctx context.Context, rep *reporter, events <-chan protocol.SessionEvent) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			rep.send(ev)
		case <-ctx.Done():
			drainRemaining(rep, events)

			return
		}
	}
}

func drainRemaining(rep *reporter, events <-chan protocol.SessionEvent) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			rep.send(ev)
		default:
			return
		}
	}
}

func copyStdin(ctx context.Context, proc *ptywrap.Process) {
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if n > 0 {
			_, _ = proc.Write(buf[:n])
		}

		if err != nil {
			return
		}
	}
}

func watchResize(ctx context.Context, proc *ptywrap.Process, buf *screen.Buffer) {
	ptywrap.WatchResize(ctx, func(size ptywrap.Size) {
		_ = proc.Resize(size)
		buf.Resize(size.Rows, size.Cols)
	})
}

func closeTranscript(transcript io.WriteCloser) {
	if transcript != nil {
		_ = transcript.Close()
	}
}

func exitCodeFromWaitErr(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return 1
}

func exitCodePtr(err error) *int {
	code := exitCodeFromWaitErr(err)

	return &code
}

// traceSink adapts the screen buffer's line-oriented TraceSink to the
// structured diagnostic logger, so the EL-2 pre-clear trace lands in
// the same place as every other operational log line rather than on
// a raw file descriptor of its own.
type traceSink struct {
	logger *slog.Logger
}

func newTraceSink(logger *slog.Logger, verbose bool) io.Writer {
	if !verbose {
		return io.Discard
	}

	return &traceSink{logger: logger}
}

func (s *traceSink) Write(p []byte) (int, error) {
	s.logger.Debug("line cleared before overwrite",
		slog.String("component", "screen"),
		slog.String("line", strings.TrimSuffix(string(p), "\n")),
	)

	return len(p), nil
}
