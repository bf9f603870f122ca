package launcher

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/climonitor/climonitor/internal/protocol"
	"github.com/climonitor/climonitor/internal/transport"
)

// retryAttempts and retryBaseDelay implement spec.md §4.5's emission
// retry policy: at most N attempts with exponential backoff before the
// launcher proceeds without reporting.
const (
	retryAttempts  = 3
	retryBaseDelay = 500 * time.Millisecond
)

// reporter owns the outbound transport connection for one launcher
// session. It is used from a single task (the transport writer) per
// spec.md §5's no-cross-task-locks design — Send is not safe for
// concurrent use.
type reporter struct {
	cfg       transport.Config
	client    *transport.Client
	connected bool
}

func newReporter(cfg transport.Config) *reporter {
	return &reporter{cfg: cfg}
}

// connect dials the configured transport. A failure is logged and
// swallowed — per spec.md §4.5 the launcher must proceed interactively
// even when the aggregator is unreachable.
func (r *reporter) connect(ctx context.Context) {
	client, err := transport.Dial(ctx, r.cfg)
	if err != nil {
		slog.Default().Warn("aggregator unreachable, continuing without reporting",
			slog.String("component", "transport"),
			slog.String("error", err.Error()),
		)

		r.connected = false

		return
	}

	r.client = client
	r.connected = true
}

// send delivers ev, making up to retryAttempts attempts in total with
// exponential backoff between them. Once attempts are exhausted the reporter
// downgrades to disconnected and every subsequent send becomes a no-op
// until the caller reconnects.
func (r *reporter) send(ev protocol.SessionEvent) {
	if !r.connected || r.client == nil {
		return
	}

	var lastErr error

	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			time.Sleep(delay)
		}

		if err := r.client.Send(ev); err != nil {
			lastErr = err
			continue
		}

		return
	}

	slog.Default().Warn("emission failed after retries, disconnecting reporter",
		slog.String("component", "transport"),
		slog.String("event.type", string(ev.Type)),
		slog.String("error", lastErr.Error()),
	)

	r.disconnect()
}

func (r *reporter) disconnect() {
	if r.client != nil {
		_ = r.client.Close()
		r.client = nil
	}

	r.connected = false
}
