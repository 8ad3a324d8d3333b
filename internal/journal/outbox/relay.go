package outbox

import (
	"context"
	"log/slog"
	"time"

	"mss/internal/journal"
)

const (
	defaultInterval  = 5 * time.Second
	defaultBatchSize = 100
)

type Source interface {
	Pending(ctx context.Context, limit int) ([]journal.Event, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
}

// Relay forwards pending events to target in order. An event that fails to
// publish stops the batch so that order is kept; it is retried on the next tick.
type Relay struct {
	source    Source
	target    journal.Journal
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

type RelayOption func(*Relay)

// WithInterval sets the polling period. Non-positive values keep the default.
func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

func NewRelay(source Source, target journal.Journal, opts ...RelayOption) *Relay {
	r := &Relay{
		source:    source,
		target:    target,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce publishes one batch and returns how many events were published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.source.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	published := make([]string, 0, len(pending))
	var publishErr error
	for _, e := range pending {
		if publishErr = r.target.Record(ctx, e); publishErr != nil {
			break
		}
		published = append(published, e.ID)
	}
	if err := r.source.MarkPublished(ctx, published, r.now()); err != nil {
		return 0, err
	}
	return len(published), publishErr
}

// Run publishes batches every interval until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := r.RunOnce(ctx)
			if err != nil {
				r.logger.ErrorContext(ctx, "journal relay failed", "error", err, "published", n)
				continue
			}
			if n > 0 {
				r.logger.InfoContext(ctx, "journal events relayed", "published", n)
			}
		}
	}
}
