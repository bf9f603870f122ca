package detect

import "strings"

func init() {
	Register(Info{
		Name: "claude",
		New:  func() Detector { return NewClaudeDetector() },
	})
}

var claudeWaitingPrompts = []string{
	"Do you want",
	"Would you like",
	"May I",
	"proceed?",
	"y/n",
}

var claudeErrorMarkers = []string{
	"✗",
	"failed",
	"Error",
}

// ClaudeDetector implements the session-state rules for a wrapped
// `claude` CLI session: an "esc to interrupt" busy/idle edge as the
// primary signal, UI-box prompt text as a WaitingInput override, an
// IDE-connection below-line as a tertiary idle signal, and a whole-
// screen error scan outside box content.
type ClaudeDetector struct {
	prevHadEscInterrupt bool
	lastEmitted         State
	hasEmitted          bool
}

// NewClaudeDetector returns a detector with no prior state.
func NewClaudeDetector() *ClaudeDetector {
	return &ClaudeDetector{}
}

func (d *ClaudeDetector) Tick(snap Snapshot) (State, bool) {
	now := anyLineContains(snap.Lines, "esc to interrupt")

	state, changed := d.classify(snap, now)

	d.prevHadEscInterrupt = now

	if !changed {
		return 0, false
	}

	return state, true
}

// classify applies the signals in priority order: secondary (box
// prompts) overrides primary on the tick it fires; primary is the
// esc-to-interrupt busy/idle edge; tertiary (IDE connected) only
// applies when nothing higher fired; the error signal is lowest
// priority and, once it fires, its Error classification persists
// (nothing re-emits on later ticks unless a higher signal fires).
func (d *ClaudeDetector) classify(snap Snapshot, nowEsc bool) (State, bool) {
	var computed State
	var has bool

	switch {
	case anyBoxContentContainsAny(snap, claudeWaitingPrompts):
		computed, has = StateWaitingInput, true
	case !d.prevHadEscInterrupt && nowEsc:
		computed, has = StateBusy, true
	case d.prevHadEscInterrupt && !nowEsc:
		computed, has = StateIdle, true
	case anyBoxBelowContains(snap, "◯ IDE connected"):
		computed, has = StateIdle, true
	case d.errorScan(snap):
		computed, has = StateError, true
	}

	if !has {
		return 0, false
	}

	if d.hasEmitted && computed == d.lastEmitted {
		return 0, false
	}

	d.lastEmitted = computed
	d.hasEmitted = true

	return computed, true
}

// errorScan reports whether any visible line outside a UI box's
// content region contains an error marker.
func (d *ClaudeDetector) errorScan(snap Snapshot) bool {
	excluded := boxContentLines(snap)

	for _, l := range snap.Lines {
		if excluded[strings.TrimSpace(l)] {
			continue
		}

		for _, marker := range claudeErrorMarkers {
			if strings.Contains(l, marker) {
				return true
			}
		}
	}

	return false
}

func (d *ClaudeDetector) Context(snap Snapshot) (string, bool) {
	return reverseScanPrefix(snap.Lines, '●')
}
