package detect

import (
	"testing"

	"github.com/climonitor/climonitor/internal/screen"
)

func TestClaudeDetectorBusyOnEscInterruptEdge(t *testing.T) {
	d := NewClaudeDetector()

	snap := Snapshot{Lines: []string{"working... (esc to interrupt)"}}

	state, ok := d.Tick(snap)
	if !ok {
		t.Fatal("Tick() ok = false, want true on busy edge")
	}

	if state != StateBusy {
		t.Fatalf("Tick() state = %v, want StateBusy", state)
	}
}

func TestClaudeDetectorIdleOnEscInterruptFallingEdge(t *testing.T) {
	d := NewClaudeDetector()

	d.Tick(Snapshot{Lines: []string{"esc to interrupt"}})

	state, ok := d.Tick(Snapshot{Lines: []string{"done"}})
	if !ok {
		t.Fatal("Tick() ok = false, want true on idle falling edge")
	}

	if state != StateIdle {
		t.Fatalf("Tick() state = %v, want StateIdle", state)
	}
}

func TestClaudeDetectorWaitingInputOverridesEscSignal(t *testing.T) {
	d := NewClaudeDetector()

	snap := Snapshot{
		Lines: []string{"esc to interrupt"},
		Boxes: []screen.Box{
			{ContentLines: []string{"Do you want to proceed?"}},
		},
	}

	state, ok := d.Tick(snap)
	if !ok {
		t.Fatal("Tick() ok = false, want true")
	}

	if state != StateWaitingInput {
		t.Fatalf("Tick() state = %v, want StateWaitingInput (box prompt overrides esc signal)", state)
	}
}

func TestClaudeDetectorIdleOnIDEConnectedTertiarySignal(t *testing.T) {
	d := NewClaudeDetector()

	snap := Snapshot{
		Lines: []string{"nothing interesting"},
		Boxes: []screen.Box{
			{BelowLines: []string{"◯ IDE connected"}},
		},
	}

	state, ok := d.Tick(snap)
	if !ok {
		t.Fatal("Tick() ok = false, want true")
	}

	if state != StateIdle {
		t.Fatalf("Tick() state = %v, want StateIdle", state)
	}
}

func TestClaudeDetectorErrorScanExcludesBoxContent(t *testing.T) {
	d := NewClaudeDetector()

	snap := Snapshot{
		Lines: []string{"Error inside box content", "all clear outside"},
		Boxes: []screen.Box{
			{ContentLines: []string{"Error inside box content"}},
		},
	}

	_, ok := d.Tick(snap)
	if ok {
		t.Fatal("Tick() ok = true, want false: box-content-only error text must be excluded from the scan")
	}
}

func TestClaudeDetectorErrorScanMatchesOutsideBoxContent(t *testing.T) {
	d := NewClaudeDetector()

	snap := Snapshot{Lines: []string{"Error: something failed"}}

	state, ok := d.Tick(snap)
	if !ok {
		t.Fatal("Tick() ok = false, want true for a whole-screen error marker")
	}

	if state != StateError {
		t.Fatalf("Tick() state = %v, want StateError", state)
	}
}

func TestClaudeDetectorNoDuplicateStateEmission(t *testing.T) {
	d := NewClaudeDetector()

	snap := Snapshot{Lines: []string{"esc to interrupt"}}

	if _, ok := d.Tick(snap); !ok {
		t.Fatal("first Tick() ok = false, want true")
	}

	if _, ok := d.Tick(snap); ok {
		t.Fatal("second identical Tick() ok = true, want false (same state must not re-emit)")
	}
}

func TestClaudeDetectorContextReverseScanAtPrefix(t *testing.T) {
	d := NewClaudeDetector()

	snap := Snapshot{Lines: []string{
		"● Reading file.go",
		"some output",
		"● Editing main.go",
	}}

	ctx, ok := d.Context(snap)
	if !ok {
		t.Fatal("Context() ok = false, want true")
	}

	if ctx != "Editing main.go" {
		t.Fatalf("Context() = %q, want %q (most recent ● line)", ctx, "Editing main.go")
	}
}

func TestClaudeDetectorContextNoneWhenNoPrefixLine(t *testing.T) {
	d := NewClaudeDetector()

	snap := Snapshot{Lines: []string{"plain output", "more output"}}

	if _, ok := d.Context(snap); ok {
		t.Fatal("Context() ok = true, want false: no line starts with the context prefix")
	}
}
