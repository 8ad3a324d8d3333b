package storage

import (
	"context"
	"time"

	dErrors "mss/pkg/domain-errors"
	"mss/pkg/platform/sentinel"
)

// ErrNotFound is returned, possibly wrapped, for unknown ids.
var ErrNotFound = sentinel.ErrNotFound

func txAborted(err error) error {
	return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
}

// WithTxTimeout applies DefaultTxTimeout when ctx has no deadline. It fails
// fast when ctx is already done.
func WithTxTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return ctx, func() {}, txAborted(err)
	}
	if timeout == 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}
