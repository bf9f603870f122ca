package transport

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync/atomic"

	"github.com/climonitor/climonitor/internal/protocol"
)

// Handler processes one decoded Session Event from a connected
// launcher. connID identifies which accepted connection the event
// arrived on, scoped to this Server for the connection's lifetime — it
// is NOT the launcher ID. Only the Connect event carries a launcher ID
// (via Identity); every later frame on the same connection shares its
// connID, which callers use to resolve the launcher the frame belongs
// to (see aggregator.NewHandler).
type Handler func(connID string, ev protocol.SessionEvent)

// Server accepts connections on a Unix socket or a TCP listener and
// dispatches decoded frames to a Handler, enforcing an Allowlist on
// the network backend.
type Server struct {
	ln        net.Listener
	allowlist *Allowlist
	handler   Handler

	nextConnID atomic.Uint64
}

// ListenUnix creates a Server bound to a Unix domain socket at path.
func ListenUnix(path string, handler Handler) (*Server, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: listen unix %s: %w", path, err)
	}

	return &Server{ln: ln, handler: handler}, nil
}

// ListenNetwork creates a Server bound to addr (host:port), rejecting
// peers that fail allowlist.
func ListenNetwork(addr string, allowlist *Allowlist, handler Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen tcp %s: %w", addr, err)
	}

	return &Server{ln: ln, allowlist: allowlist, handler: handler}, nil
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return fmt.Errorf("transport: accept: %w", err)
		}

		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	if s.allowlist != nil {
		if !s.allowlist.Allowed(conn.RemoteAddr().String()) {
			slog.Default().Warn("rejected peer outside allowlist",
				slog.String("component", "transport"),
				slog.String("peer", conn.RemoteAddr().String()),
			)

			return
		}
	}

	connID := strconv.FormatUint(s.nextConnID.Add(1), 10)

	for {
		ev, err := protocol.ReadEvent(conn)
		if err != nil {
			return
		}

		if s.handler != nil {
			s.handler(connID, ev)
		}
	}
}
