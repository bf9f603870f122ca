package detect

import (
	"testing"

	"github.com/climonitor/climonitor/internal/screen"
)

func TestGeminiDetectorDefaultsToIdleOnFirstTick(t *testing.T) {
	d := NewGeminiDetector()

	state, ok := d.Tick(Snapshot{Lines: []string{"nothing recognizable"}})
	if !ok {
		t.Fatal("Tick() ok = false, want true on the first tick")
	}

	if state != StateIdle {
		t.Fatalf("Tick() state = %v, want StateIdle as the no-signal default", state)
	}
}

func TestGeminiDetectorBusyOnEscCancelMarker(t *testing.T) {
	d := NewGeminiDetector()

	state, ok := d.Tick(Snapshot{Lines: []string{"generating... (esc to cancel)"}})
	if !ok {
		t.Fatal("Tick() ok = false, want true")
	}

	if state != StateBusy {
		t.Fatalf("Tick() state = %v, want StateBusy", state)
	}
}

func TestGeminiDetectorWaitingInputOnConfirmationPrompt(t *testing.T) {
	d := NewGeminiDetector()

	snap := Snapshot{Boxes: []screen.Box{
		{ContentLines: []string{"Allow execution?"}},
	}}

	state, ok := d.Tick(snap)
	if !ok {
		t.Fatal("Tick() ok = false, want true")
	}

	if state != StateWaitingInput {
		t.Fatalf("Tick() state = %v, want StateWaitingInput", state)
	}
}

func TestGeminiDetectorIdleOnPromptMarker(t *testing.T) {
	d := NewGeminiDetector()

	state, ok := d.Tick(Snapshot{Lines: []string{"> "}})
	if !ok {
		t.Fatal("Tick() ok = false, want true")
	}

	if state != StateIdle {
		t.Fatalf("Tick() state = %v, want StateIdle", state)
	}
}

func TestGeminiDetectorErrorOnMarker(t *testing.T) {
	d := NewGeminiDetector()

	state, ok := d.Tick(Snapshot{Lines: []string{"Error: request failed"}})
	if !ok {
		t.Fatal("Tick() ok = false, want true")
	}

	if state != StateError {
		t.Fatalf("Tick() state = %v, want StateError", state)
	}
}

func TestGeminiDetectorPreservesPriorStateWhenNoSignalFires(t *testing.T) {
	d := NewGeminiDetector()

	if _, ok := d.Tick(Snapshot{Lines: []string{"(esc to cancel)"}}); !ok {
		t.Fatal("first Tick() ok = false, want true")
	}

	// No marker fires on this tick, so classify falls back to the last
	// emitted state (busy). Since that equals the last emitted state,
	// Tick reports no change — confirming the state was preserved rather
	// than reset to idle.
	if _, ok := d.Tick(Snapshot{Lines: []string{"ambiguous line with no markers"}}); ok {
		t.Fatal("Tick() ok = true, want false: preserved state equals the last emitted state")
	}
}

func TestGeminiDetectorNoDuplicateStateEmission(t *testing.T) {
	d := NewGeminiDetector()

	snap := Snapshot{Lines: []string{"(esc to cancel)"}}

	if _, ok := d.Tick(snap); !ok {
		t.Fatal("first Tick() ok = false, want true")
	}

	if _, ok := d.Tick(snap); ok {
		t.Fatal("second identical Tick() ok = true, want false")
	}
}

func TestGeminiDetectorContextReverseScanAtPrefix(t *testing.T) {
	d := NewGeminiDetector()

	snap := Snapshot{Lines: []string{
		"✦ Planning approach",
		"output",
		"✦ Writing tests",
	}}

	ctx, ok := d.Context(snap)
	if !ok {
		t.Fatal("Context() ok = false, want true")
	}

	if ctx != "Writing tests" {
		t.Fatalf("Context() = %q, want %q", ctx, "Writing tests")
	}
}
