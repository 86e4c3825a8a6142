package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeoutPassesValueThrough(t *testing.T) {
	got, err := WithTimeout(context.Background(), "op", time.Second,
		func(ctx context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestWithTimeoutPassesErrorThrough(t *testing.T) {
	boom := errors.New("boom")
	_, err := WithTimeout(context.Background(), "op", time.Second,
		func(ctx context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestWithTimeoutAbortsHangingOperation(t *testing.T) {
	start := time.Now()
	_, err := WithTimeout(context.Background(), "hang", 20*time.Millisecond,
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "hang", timeoutErr.Op)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWithTimeoutAbortsUncancellableOperation(t *testing.T) {
	// The operation ignores its context entirely; the wrapper must still
	// return within the deadline.
	start := time.Now()
	_, err := WithTimeout(context.Background(), "stubborn", 20*time.Millisecond,
		func(ctx context.Context) (int, error) {
			time.Sleep(500 * time.Millisecond)
			return 1, nil
		})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestWithTimeoutParentCancellationIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(ctx, "op", time.Second,
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})

	var timeoutErr *TimeoutError
	assert.False(t, errors.As(err, &timeoutErr))
	assert.ErrorIs(t, err, context.Canceled)
}
