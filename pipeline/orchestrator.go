package pipeline

import (
	"context"

	"lingua-board/config"
	"lingua-board/logger"
	"lingua-board/models"
)

// orchestrator produces exactly cfg.TotalTarget validated quotes by driving
// the retrying generator one batch at a time. Batches run strictly
// sequentially with an inter-batch delay so the generation service's
// implicit rate limits are respected.
type orchestrator struct {
	gen GenerateFunc
	cfg config.RefreshConfig
}

// batchCount returns the number of generation calls a full run needs.
func (o *orchestrator) batchCount() int {
	return (o.cfg.TotalTarget + o.cfg.BatchSize - 1) / o.cfg.BatchSize
}

// generateAll aggregates all batches, aborting on the first batch whose
// retry budget is exhausted. Over-long batch responses are truncated to the
// requested size; short responses never reach this point because the
// generator rejects them as validation failures inside the retry loop.
func (o *orchestrator) generateAll(ctx context.Context, dayBucket string) ([]models.Quote, error) {
	batches := o.batchCount()
	quotes := make([]models.Quote, 0, o.cfg.TotalTarget)

	for i := 0; i < batches; i++ {
		remaining := o.cfg.TotalTarget - len(quotes)
		requested := o.cfg.BatchSize
		if remaining < requested {
			requested = remaining
		}

		batch, err := generateWithRetry(ctx, o.gen, requested, dayBucket,
			o.cfg.MaxRetries, o.cfg.InitialRetryDelay(), o.cfg.GenerationTimeout())
		if err != nil {
			return nil, err
		}
		if len(batch) > requested {
			batch = batch[:requested]
		}
		quotes = append(quotes, batch...)

		logger.DebugWithFields("batch generated", logger.Fields{
			"batch":     i + 1,
			"batches":   batches,
			"requested": requested,
			"total":     len(quotes),
		})

		if i < batches-1 {
			if err := sleepCtx(ctx, o.cfg.InterBatchDelay()); err != nil {
				return nil, err
			}
		}
	}
	return quotes, nil
}
