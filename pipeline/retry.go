package pipeline

import (
	"context"
	"time"

	"lingua-board/generator"
	"lingua-board/logger"
	"lingua-board/models"
)

// GenerateFunc issues one generation call for `requested` quotes tagged with
// dayBucket. generator.Client.GenerateBatch satisfies this; tests substitute
// fakes.
type GenerateFunc func(ctx context.Context, requested int, dayBucket string) ([]models.Quote, error)

// generateWithRetry runs one batch with bounded exponential backoff: up to
// maxRetries additional attempts, sleeping initialDelay * 2^k after failed
// attempt k. Each attempt is independently subject to the generation
// timeout. After exhausting the budget the last error is returned annotated
// with the total attempt count.
func generateWithRetry(ctx context.Context, gen GenerateFunc, requested int, dayBucket string,
	maxRetries int, initialDelay, timeout time.Duration) ([]models.Quote, error) {

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		quotes, err := WithTimeout(ctx, "generation call", timeout,
			func(ctx context.Context) ([]models.Quote, error) {
				return gen(ctx, requested, dayBucket)
			})
		if err == nil {
			return quotes, nil
		}
		lastErr = err

		if attempt < maxRetries {
			delay := initialDelay * (1 << attempt)
			logger.WarnWithFields("generation attempt failed, backing off", logger.Fields{
				"attempt": attempt + 1,
				"delay":   delay.String(),
				"error":   err.Error(),
			})
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, &generator.GenerationError{Attempts: maxRetries + 1, Err: lastErr}
}

// sleepCtx sleeps for d unless the context ends first. The timer is always
// stopped.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
