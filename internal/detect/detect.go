// Package detect classifies a wrapped CLI session's screen snapshot into
// a session state and, when present, an execution context line.
package detect

import (
	"fmt"
	"sort"
	"sync"

	"github.com/climonitor/climonitor/internal/screen"
)

// State is a session's classified activity.
type State int

const (
	StateConnected State = iota
	StateIdle
	StateBusy
	StateWaitingInput
	StateError
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	case StateWaitingInput:
		return "waiting_input"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is the detector's input: the rendered lines of a screen
// buffer plus the UI boxes derived from it on this tick.
type Snapshot struct {
	Lines []string
	Boxes []screen.Box
}

// Detector maps a screen snapshot and its own prior state to a
// possibly-new session state, and separately reports an execution
// context line when one is found.
//
// Implementations hold whatever per-tick memory their pattern set
// needs (e.g. the Claude detector's prev_had_esc_interrupt edge flag)
// and are not safe for concurrent use — one Detector per session.
type Detector interface {
	// Tick classifies snapshot against the detector's remembered prior
	// state. It returns the new state only when it differs from the
	// last state the detector emitted; ok reports whether state is a
	// change worth reporting.
	Tick(snap Snapshot) (state State, ok bool)

	// Context extracts the current execution-context line from
	// snapshot, if any.
	Context(snap Snapshot) (ctx string, ok bool)
}

// Info describes a registered detector type, mirroring a PTY executor
// registry: a name and a constructor.
type Info struct {
	Name string
	New  func() Detector
}

var (
	registryMu sync.Mutex
	registry   = map[string]Info{}
)

// Register adds a detector type to the global registry. Panics on
// duplicate names, since that indicates a programming error at
// package-init time rather than a runtime condition.
func Register(info Info) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[info.Name]; dup {
		panic(fmt.Sprintf("detect: duplicate registration for %q", info.Name))
	}

	registry[info.Name] = info
}

// Lookup returns the Info for a registered detector type.
func Lookup(name string) (Info, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()

	info, ok := registry[name]

	return info, ok
}

// RegisteredNames returns all registered detector names, sorted.
func RegisteredNames() []string {
	registryMu.Lock()
	defer registryMu.Unlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
