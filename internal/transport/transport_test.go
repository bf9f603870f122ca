package transport

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/climonitor/climonitor/internal/protocol"
)

func TestClientServerUnixRoundTrip(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "climonitor.sock")

	received := make(chan protocol.SessionEvent, 1)

	srv, err := ListenUnix(sockPath, func(connID string, ev protocol.SessionEvent) {
		received <- ev
	})
	if err != nil {
		t.Fatalf("ListenUnix() error = %v", err)
	}
	defer srv.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = srv.Serve()
	}()

	cfg := Config{
		Backend:        BackendUnix,
		SocketPath:     sockPath,
		ConnectTimeout: time.Second,
		WriteTimeout:   time.Second,
	}

	client, err := Dial(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	ev := protocol.NewStateUpdate("busy", time.Unix(1, 0).UTC())
	if err := client.Send(ev); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case got := <-received:
		if got.State != "busy" {
			t.Errorf("received State = %q, want %q", got.State, "busy")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the server to receive the event")
	}
}

func TestDialUnknownBackend(t *testing.T) {
	_, err := Dial(context.Background(), Config{Backend: "carrier-pigeon"})
	if err == nil {
		t.Fatal("Dial() error = nil, want non-nil for an unknown backend")
	}
}

func TestServerRejectsPeerOutsideAllowlist(t *testing.T) {
	allowlist := NewAllowlist([]string{"203.0.113.1"})

	received := make(chan protocol.SessionEvent, 1)

	srv, err := ListenNetwork("127.0.0.1:0", allowlist, func(connID string, ev protocol.SessionEvent) {
		received <- ev
	})
	if err != nil {
		t.Fatalf("ListenNetwork() error = %v", err)
	}
	defer srv.Close()

	go func() { _ = srv.Serve() }()

	cfg := Config{
		Backend:        BackendNetwork,
		Addr:           srv.ln.Addr().String(),
		ConnectTimeout: time.Second,
		WriteTimeout:   time.Second,
	}

	client, err := Dial(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	_ = client.Send(protocol.NewStateUpdate("busy", time.Now()))

	select {
	case <-received:
		t.Fatal("server dispatched an event from a peer outside the allowlist")
	case <-time.After(200 * time.Millisecond):
	}
}
