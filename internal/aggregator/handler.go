package aggregator

import (
	"sync"

	"github.com/climonitor/climonitor/internal/protocol"
	"github.com/climonitor/climonitor/internal/transport"
)

// connHandler resolves each transport connection's launcher ID from
// its Connect event and applies every later frame on that connection
// to the same launcher — the wire events after Connect carry no
// launcher ID of their own, only the connection they arrived on.
type connHandler struct {
	registry *Registry

	mu     sync.Mutex
	byConn map[string]string
}

// NewHandler returns a transport.Handler that applies every decoded
// event on a connection to registry, keyed by the launcher ID that
// connection's Connect event announced.
func NewHandler(registry *Registry) transport.Handler {
	h := &connHandler{registry: registry, byConn: make(map[string]string)}

	return h.handle
}

func (h *connHandler) handle(connID string, ev protocol.SessionEvent) {
	if ev.Type == protocol.EventConnect {
		if ev.Identity == nil {
			return
		}

		h.mu.Lock()
		h.byConn[connID] = ev.Identity.LauncherID
		h.mu.Unlock()

		h.registry.Apply(ev.Identity.LauncherID, ev)

		return
	}

	h.mu.Lock()
	launcherID, ok := h.byConn[connID]
	h.mu.Unlock()

	if !ok {
		return
	}

	h.registry.Apply(launcherID, ev)

	if ev.Type == protocol.EventDisconnect {
		h.mu.Lock()
		delete(h.byConn, connID)
		h.mu.Unlock()
	}
}
