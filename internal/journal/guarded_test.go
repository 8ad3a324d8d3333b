package journal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mss/pkg/platform/circuit"
)

type flakyJournal struct {
	err   error
	calls int
}

func (f *flakyJournal) Record(context.Context, Event) error {
	f.calls++
	return f.err
}

func TestGuarded(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sink := &flakyJournal{err: errors.New("broker down")}
	breaker := circuit.New("kafka",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	g := NewGuarded(sink, breaker, slog.New(slog.NewTextHandler(io.Discard, nil)))
	event := NewServiceDeleted("s1", now)

	assert.EqualError(t, g.Record(ctx, event), "broker down")
	assert.EqualError(t, g.Record(ctx, event), "broker down")
	assert.True(t, breaker.IsOpen())

	assert.ErrorIs(t, g.Record(ctx, event), ErrUnavailable)
	assert.Equal(t, 2, sink.calls, "open circuit skips the sink")

	sink.err = nil
	now = now.Add(time.Minute)
	assert.NoError(t, g.Record(ctx, event))
	assert.False(t, breaker.IsOpen())
	assert.Equal(t, 3, sink.calls)
}

func TestGuardedLogsTransitions(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	sink := &flakyJournal{err: errors.New("stream unavailable")}
	breaker := circuit.New("redis", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Nanosecond))
	g := NewGuarded(sink, breaker, slog.New(slog.NewTextHandler(&logs, nil)))
	event := NewServiceCreated("s1", "u1", time.Now())

	assert.Error(t, g.Record(ctx, event))
	assert.Contains(t, logs.String(), "journal circuit opened")
	assert.Contains(t, logs.String(), "sink=redis")

	sink.err = nil
	time.Sleep(time.Millisecond)
	assert.NoError(t, g.Record(ctx, event))
	assert.Contains(t, logs.String(), "journal circuit closed")
}
