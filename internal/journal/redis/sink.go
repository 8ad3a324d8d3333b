// Package redis appends journal events to a Redis stream.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mss/internal/journal"
)

// DefaultMaxLen caps the stream length, trimmed approximately.
const DefaultMaxLen = 100_000

type Sink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

var _ journal.Journal = (*Sink)(nil)

type Option func(*Sink)

func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		s.maxLen = n
	}
}

func NewSink(client redis.Cmdable, stream string, opts ...Option) *Sink {
	s := &Sink{client: client, stream: stream, maxLen: DefaultMaxLen}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Record(ctx context.Context, e journal.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("encode journal event %s: %w", e.ID, err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":        e.ID,
			"type":      string(e.Type),
			"date":      e.Date.Format("2006-01-02T15:04:05.000Z07:00"),
			"idService": e.ServiceID(),
			"donnees":   string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append journal event %s: %w", e.ID, err)
	}
	return nil
}
