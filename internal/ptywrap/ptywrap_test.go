//go:build unix

package ptywrap

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// catProcess starts /bin/cat under a PTY, the simplest available
// real-process for exercising the PTY relay and shutdown paths without
// depending on climonitor's own wrapped tools being installed.
func catProcess(t *testing.T) *Process {
	t.Helper()

	p, err := Start(Options{
		Tool: "cat",
		Size: Size{Rows: 24, Cols: 80},
	})
	if err != nil {
		t.Skipf("cat not available for PTY test: %v", err)
	}

	return p
}

func TestProcessWriteAndRelayEchoesBytes(t *testing.T) {
	p := catProcess(t)
	defer p.Close()

	var mu sync.Mutex
	var out bytes.Buffer

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Relay(writerFunc(func(b []byte) (int, error) {
			mu.Lock()
			out.Write(b)
			mu.Unlock()
			return len(b), nil
		}))
	}()

	if _, err := p.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		got := out.String()
		mu.Unlock()

		if strings.Contains(got, "hello") {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("timed out waiting for cat to echo written bytes back through Relay")
}

func TestProcessCloseIsIdempotent(t *testing.T) {
	p := catProcess(t)

	p.Close()
	p.Close() // must not panic or block a second time
}

func TestProcessWaitAfterCloseReturns(t *testing.T) {
	p := catProcess(t)

	p.Close()

	done := make(chan struct{})
	go func() {
		_ = p.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after Close()")
	}
}

func TestProcessWaitConcurrentWithClose(t *testing.T) {
	p := catProcess(t)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_ = p.Wait()
	}()

	go func() {
		defer wg.Done()
		p.Close()
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("concurrent Wait/Close did not both return")
	}
}

func TestProcessResizeAfterCloseDoesNotPanic(t *testing.T) {
	p := catProcess(t)
	p.Close()

	// The ptmx handle is closed but still referenced; Resize must fail
	// gracefully (an error is fine) rather than panic.
	_ = p.Resize(Size{Rows: 10, Cols: 40})
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) { return f(b) }
