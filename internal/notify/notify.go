// Package notify runs the aggregator-side notification hook described
// in spec.md §6: a best-effort invocation of a user-provided script on
// session state transitions worth surfacing.
package notify

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// HookPath returns the platform-appropriate notification hook path
// under the user's home directory, or "" if the home directory cannot
// be determined.
func HookPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	name := "notify.sh"
	if runtime.GOOS == "windows" {
		name = "notify.ps1"
	}

	return filepath.Join(home, ".climonitor", name)
}

// Run invokes the hook at path with the four documented positional
// arguments (event_type, tool_name, message, duration). Invocation is
// best-effort: a missing hook is skipped silently; a non-executable
// file or a nonzero exit is logged and otherwise ignored.
func Run(ctx context.Context, path, eventType, toolName, message, duration string) {
	if path == "" {
		return
	}

	if _, err := os.Stat(path); err != nil {
		return
	}

	cmd := exec.CommandContext(ctx, path, eventType, toolName, message, duration) //nolint:gosec // operator-provided hook script

	if err := cmd.Run(); err != nil {
		slog.Default().Warn("notification hook failed",
			slog.String("component", "notify"),
			slog.String("event.type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

// ShouldNotify reports whether a state transition from prev to next is
// one of the transitions spec.md §6 names as notify-worthy: entering
// WaitingInput or Error, or settling into Idle after Busy.
func ShouldNotify(prev, next string) bool {
	switch next {
	case "waiting_input", "error":
		return true
	case "idle":
		return prev == "busy"
	default:
		return false
	}
}

// Elapsed formats d the way a shell hook expects a duration argument:
// whole seconds.
func Elapsed(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
