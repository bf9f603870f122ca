// Package aggregator provides a minimal in-process implementation of
// the registry spec.md treats as an external interface: applying
// incoming Session Events to per-launcher state and exposing a
// read-only snapshot. It does not render a dashboard (out of scope per
// spec.md §1) — it exists so the transport server and notification
// hook have something concrete to dispatch into.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/climonitor/climonitor/internal/notify"
	"github.com/climonitor/climonitor/internal/protocol"
)

// SessionSnapshot is a read-only view of one launcher's last-known
// state.
type SessionSnapshot struct {
	Identity       protocol.LauncherIdentity
	State          string
	Context        string
	Connected      bool
	LastTransition time.Time

	// busySince records when the session most recently entered Busy, so
	// a later Busy->Idle transition can report how long the tool ran
	// for to the notification hook's duration argument.
	busySince time.Time
}

// Registry applies incoming Session Events, keyed by launcher ID.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*SessionSnapshot

	// NotifyHookPath, if non-empty, is invoked (best-effort) on
	// notify-worthy transitions; set to "" to disable.
	NotifyHookPath string
}

// NewRegistry returns an empty Registry with the default notify hook
// path (per notify.HookPath).
func NewRegistry() *Registry {
	return &Registry{
		sessions:       make(map[string]*SessionSnapshot),
		NotifyHookPath: notify.HookPath(),
	}
}

// Apply folds ev into the registry. Connect events create or replace a
// session entry; StateUpdate/ContextUpdate mutate it; Disconnect marks
// it disconnected but retains it for inspection. launcherID identifies
// which session a non-Connect event belongs to — callers key it per
// connection (see NewHandler).
func (r *Registry) Apply(launcherID string, ev protocol.SessionEvent) {
	r.mu.Lock()

	session, ok := r.sessions[launcherID]

	switch ev.Type {
	case protocol.EventConnect:
		if ev.Identity == nil {
			r.mu.Unlock()
			return
		}

		r.sessions[launcherID] = &SessionSnapshot{
			Identity:       *ev.Identity,
			State:          "connected",
			Connected:      true,
			LastTransition: ev.Timestamp,
		}
		r.mu.Unlock()

		return
	case protocol.EventStateUpdate:
		if !ok {
			r.mu.Unlock()
			return
		}

		prev := session.State

		var duration string
		if prev == "busy" && ev.State == "idle" && !session.busySince.IsZero() {
			duration = notify.Elapsed(ev.Timestamp.Sub(session.busySince))
		}

		if ev.State == "busy" {
			session.busySince = ev.Timestamp
		}

		session.State = ev.State
		session.LastTransition = ev.Timestamp

		hookPath := r.NotifyHookPath
		tool := session.Identity.Tool
		r.mu.Unlock()

		if hookPath != "" && notify.ShouldNotify(prev, ev.State) {
			notify.Run(context.Background(), hookPath, ev.State, tool, "", duration)
		}

		return
	case protocol.EventContextUpdate:
		if ok {
			session.Context = ev.Context
		}

		r.mu.Unlock()

		return
	case protocol.EventDisconnect:
		if ok {
			session.Connected = false
			session.LastTransition = ev.Timestamp
		}

		r.mu.Unlock()

		return
	default:
		r.mu.Unlock()
	}
}

// Snapshot returns a copy of the current state for launcherID, if known.
func (r *Registry) Snapshot(launcherID string) (SessionSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[launcherID]
	if !ok {
		return SessionSnapshot{}, false
	}

	return *session, true
}

// All returns a copy of every known session snapshot.
func (r *Registry) All() []SessionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SessionSnapshot, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}

	return out
}
