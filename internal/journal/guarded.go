package journal

import (
	"context"
	"errors"
	"log/slog"

	"mss/pkg/platform/circuit"
)

// ErrUnavailable is returned while the breaker keeps events away from a
// failing sink.
var ErrUnavailable = errors.New("journal unavailable")

// Guarded shields a remote sink behind a circuit breaker so that an outage
// costs one failed call per cooldown instead of one per mutation.
type Guarded struct {
	next    Journal
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(next Journal, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) Record(ctx context.Context, e Event) error {
	if !g.breaker.Allow() {
		return ErrUnavailable
	}
	if err := g.next.Record(ctx, e); err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "journal circuit opened",
				"sink", g.breaker.Name(),
				"error", err,
			)
		}
		return err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "journal circuit closed", "sink", g.breaker.Name())
	}
	return nil
}
