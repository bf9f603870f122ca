// Package transport implements the launcher's two reporting backends
// (a local stream socket and a network stream with an IP allowlist),
// both framing Session Events as length-prefixed messages.
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/climonitor/climonitor/internal/protocol"
)

// Defaults per spec.md §5's timeout table.
const (
	DefaultConnectTimeout = 2 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
)

// Backend selects which transport a Client dials.
type Backend string

const (
	BackendUnix    Backend = "unix"
	BackendNetwork Backend = "network"
)

// Config describes where and how to reach the aggregator.
type Config struct {
	Backend Backend

	// SocketPath is used when Backend == BackendUnix.
	SocketPath string

	// Addr is a host:port used when Backend == BackendNetwork.
	Addr string

	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
}

// Client is a fire-and-forget Session Event sender. A Client wraps
// exactly one outbound connection; reconnection is the caller's
// responsibility (see internal/launcher's retry-with-backoff policy).
type Client struct {
	conn         net.Conn
	writeTimeout time.Duration
}

// Dial opens a connection per cfg, applying ConnectTimeout.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}

	dialer := net.Dialer{Timeout: connectTimeout}

	var (
		conn net.Conn
		err  error
	)

	switch cfg.Backend {
	case BackendUnix:
		conn, err = dialer.DialContext(ctx, "unix", cfg.SocketPath)
	case BackendNetwork:
		conn, err = dialer.DialContext(ctx, "tcp", cfg.Addr)
	default:
		return nil, fmt.Errorf("transport: unknown backend %q", cfg.Backend)
	}

	if err != nil {
		return nil, fmt.Errorf("transport: dial: %w", err)
	}

	return &Client{conn: conn, writeTimeout: writeTimeout}, nil
}

// Send writes ev as a single framed message, bounded by the client's
// write timeout.
func (c *Client) Send(ev protocol.SessionEvent) error {
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}

	if err := protocol.WriteEvent(c.conn, ev); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}

	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
