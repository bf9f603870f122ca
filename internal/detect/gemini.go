package detect

import "strings"

func init() {
	Register(Info{
		Name: "gemini",
		New:  func() Detector { return NewGeminiDetector() },
	})
}

var geminiErrorMarkers = []string{
	"✗",
	"failed",
	"Error",
}

// GeminiDetector implements the session-state rules for a wrapped
// `gemini` CLI session: the same contract as ClaudeDetector with a
// different pattern set, and no esc-to-interrupt edge — busy/idle are
// each independently recognized from their own markers.
type GeminiDetector struct {
	lastEmitted State
	hasEmitted  bool
}

// NewGeminiDetector returns a detector with no prior state.
func NewGeminiDetector() *GeminiDetector {
	return &GeminiDetector{}
}

func (d *GeminiDetector) Tick(snap Snapshot) (State, bool) {
	computed := d.classify(snap)

	if d.hasEmitted && computed == d.lastEmitted {
		return 0, false
	}

	d.lastEmitted = computed
	d.hasEmitted = true

	return computed, true
}

func (d *GeminiDetector) classify(snap Snapshot) State {
	switch {
	case anyLineContains(snap.Lines, "Waiting for user confirmation"),
		anyBoxContentContainsAny(snap, []string{"Allow execution?"}):
		return StateWaitingInput
	case anyLineContains(snap.Lines, "(esc to cancel"):
		return StateBusy
	case geminiIdleSignal(snap.Lines):
		return StateIdle
	case anyLineContainsAny(snap.Lines, geminiErrorMarkers):
		return StateError
	default:
		if d.hasEmitted {
			return d.lastEmitted
		}

		return StateIdle
	}
}

func geminiIdleSignal(lines []string) bool {
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), ">") {
			return true
		}

		if strings.Contains(l, "Cumulative Stats") {
			return true
		}
	}

	return false
}

func (d *GeminiDetector) Context(snap Snapshot) (string, bool) {
	return reverseScanPrefix(snap.Lines, '✦')
}
