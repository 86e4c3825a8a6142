package pipeline

import (
	"context"
	"errors"
	"time"
)

// WithTimeout runs fn with a deadline. If the deadline fires first the
// derived context is cancelled and a *TimeoutError is returned; fn keeps the
// cancelled context so a cancellable operation stops promptly. The timer is
// released on both paths via the deferred cancel.
//
// Used with two profiles: a longer one for generation calls and a shorter
// one for persistence calls.
func WithTimeout[T any](ctx context.Context, op string, limit time.Duration, fn func(context.Context) (T, error)) (T, error) {
	tctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		val, err := fn(tctx)
		done <- outcome{val: val, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			var zero T
			return zero, &TimeoutError{Op: op, Limit: limit}
		}
		return out.val, out.err
	case <-tctx.Done():
		var zero T
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return zero, &TimeoutError{Op: op, Limit: limit}
		}
		return zero, tctx.Err()
	}
}
