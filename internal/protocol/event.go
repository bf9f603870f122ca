// Package protocol defines the Session Event wire types exchanged
// between a launcher and the aggregator it reports to.
package protocol

import "time"

// LauncherIdentity uniquely identifies one launcher process for the
// lifetime of its session.
type LauncherIdentity struct {
	LauncherID string    `json:"launcher_id"`
	Tool       string    `json:"tool"`
	PID        int       `json:"pid"`
	WorkingDir string    `json:"working_dir"`
	StartedAt  time.Time `json:"started_at"`
}

// EventType tags a SessionEvent's variant.
type EventType string

const (
	EventConnect       EventType = "connect"
	EventStateUpdate   EventType = "state_update"
	EventContextUpdate EventType = "context_update"
	EventDisconnect    EventType = "disconnect"
)

// SessionEvent is the self-describing tagged encoding sent over the
// transport. At most one of the type-specific fields is populated,
// selected by Type (a Disconnect with no exit code carries none).
type SessionEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Connect fields.
	Identity *LauncherIdentity `json:"identity,omitempty"`

	// StateUpdate fields.
	State string `json:"state,omitempty"`

	// ContextUpdate fields.
	Context string `json:"context,omitempty"`

	// Disconnect fields.
	ExitCode *int `json:"exit_code,omitempty"`
}

// NewConnect builds a Connect event for identity at ts.
func NewConnect(identity LauncherIdentity, ts time.Time) SessionEvent {
	return SessionEvent{Type: EventConnect, Timestamp: ts, Identity: &identity}
}

// NewStateUpdate builds a StateUpdate event.
func NewStateUpdate(state string, ts time.Time) SessionEvent {
	return SessionEvent{Type: EventStateUpdate, Timestamp: ts, State: state}
}

// NewContextUpdate builds a ContextUpdate event.
func NewContextUpdate(context string, ts time.Time) SessionEvent {
	return SessionEvent{Type: EventContextUpdate, Timestamp: ts, Context: context}
}

// NewDisconnect builds a Disconnect event, optionally carrying the
// wrapped tool's exit code.
func NewDisconnect(exitCode *int, ts time.Time) SessionEvent {
	return SessionEvent{Type: EventDisconnect, Timestamp: ts, ExitCode: exitCode}
}
