package launcher

import (
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/climonitor/climonitor/internal/protocol"
)

func TestExitCodeFromWaitErrNilIsZero(t *testing.T) {
	if got := exitCodeFromWaitErr(nil); got != 0 {
		t.Errorf("exitCodeFromWaitErr(nil) = %d, want 0", got)
	}
}

func TestExitCodeFromWaitErrNonExitErrorDefaultsToOne(t *testing.T) {
	if got := exitCodeFromWaitErr(errors.New("spawn failure")); got != 1 {
		t.Errorf("exitCodeFromWaitErr(generic error) = %d, want 1", got)
	}
}

func TestExitCodeFromWaitErrExtractsExitError(t *testing.T) {
	// Run a real process that exits with a known nonzero code to obtain
	// a genuine *exec.ExitError rather than hand-constructing one (its
	// fields are unexported).
	cmd := exec.Command("sh", "-c", "exit 7")

	err := cmd.Run()
	if err == nil {
		t.Skip("expected the shell command to exit nonzero")
	}

	if got := exitCodeFromWaitErr(err); got != 7 {
		t.Errorf("exitCodeFromWaitErr() = %d, want 7", got)
	}
}

func TestExitCodePtrDereferences(t *testing.T) {
	ptr := exitCodePtr(nil)
	if ptr == nil || *ptr != 0 {
		t.Fatalf("exitCodePtr(nil) = %v, want pointer to 0", ptr)
	}
}

func TestEnqueueDropsOnFullQueue(t *testing.T) {
	events := make(chan protocol.SessionEvent, 1)

	enqueue(events, protocol.NewStateUpdate("busy", time.Unix(1, 0)))
	enqueue(events, protocol.NewStateUpdate("idle", time.Unix(2, 0))) // queue full, must not block

	got := <-events
	if got.State != "busy" {
		t.Errorf("first queued event State = %q, want %q (second must have been dropped, not displaced it)", got.State, "busy")
	}

	select {
	case <-events:
		t.Fatal("a second event was enqueued despite a full channel")
	default:
	}
}
