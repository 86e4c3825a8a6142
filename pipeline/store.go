package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingua-board/logger"
	"lingua-board/models"
)

// QuoteStore is the narrow persistence surface the pipeline needs.
// repositories.QuoteRepository implements it; tests substitute fakes.
type QuoteStore interface {
	DeleteOtherBuckets(ctx context.Context, keepBucket string) (int64, error)
	DeleteByBucket(ctx context.Context, bucket string) (int64, error)
	InsertMany(ctx context.Context, quotes []models.Quote) ([]primitive.ObjectID, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// ReplaceResult reports what a successful bucket swap did.
type ReplaceResult struct {
	DeletedCount  int64
	InsertedCount int
}

// gateway swaps the live day bucket: delete stale buckets, then insert the
// new quotes. The store offers no multi-statement transaction, so a failed
// insert is compensated by deleting the identifiers captured so far. On
// failure the store may briefly hold zero populated buckets; that window is
// accepted and reported, never hidden.
type gateway struct {
	store   QuoteStore
	timeout time.Duration

	// chunkSize bounds each InsertMany so identifiers are captured as the
	// insert progresses, keeping the rollback precise.
	chunkSize int
}

// replace runs Clean then Insert, each step under the persistence timeout.
func (g *gateway) replace(ctx context.Context, dayBucket string, quotes []models.Quote) (ReplaceResult, error) {
	deleted, err := WithTimeout(ctx, "clean stale buckets", g.timeout,
		func(ctx context.Context) (int64, error) {
			return g.store.DeleteOtherBuckets(ctx, dayBucket)
		})
	if err != nil {
		return ReplaceResult{}, &PersistenceError{Op: "clean", Err: err}
	}
	logger.InfoWithFields("stale buckets cleaned", logger.Fields{
		"day_bucket": dayBucket,
		"deleted":    deleted,
	})

	// Purge any leftovers from an earlier run in the same bucket so a
	// same-day re-run converges to exactly one full bucket. These rows do
	// not count toward deletedCount, which reports stale buckets only.
	purged, err := WithTimeout(ctx, "purge current bucket", g.timeout,
		func(ctx context.Context) (int64, error) {
			return g.store.DeleteByBucket(ctx, dayBucket)
		})
	if err != nil {
		return ReplaceResult{}, &PersistenceError{Op: "clean", Err: err}
	}
	if purged > 0 {
		logger.WarnWithFields("purged leftover rows from current bucket", logger.Fields{
			"day_bucket": dayBucket,
			"purged":     purged,
		})
	}

	inserted := make([]primitive.ObjectID, 0, len(quotes))
	for start := 0; start < len(quotes); start += g.chunkSize {
		end := start + g.chunkSize
		if end > len(quotes) {
			end = len(quotes)
		}
		chunk := quotes[start:end]

		ids, err := WithTimeout(ctx, "insert quotes", g.timeout,
			func(ctx context.Context) ([]primitive.ObjectID, error) {
				return g.store.InsertMany(ctx, chunk)
			})
		// A failed InsertMany may still report the IDs it wrote.
		inserted = append(inserted, ids...)
		if err != nil {
			return ReplaceResult{}, g.rollback(ctx, &PersistenceError{Op: "insert", Err: err}, inserted)
		}
	}

	return ReplaceResult{DeletedCount: deleted, InsertedCount: len(inserted)}, nil
}

// rollback issues a compensating delete for every identifier this run
// inserted. A rollback failure is logged and attached to the original error
// together with the orphaned identifiers; it never masks the insert failure.
func (g *gateway) rollback(ctx context.Context, perr *PersistenceError, inserted []primitive.ObjectID) error {
	if len(inserted) == 0 {
		return perr
	}

	// The insert may have failed because the run's context ended; the
	// compensating delete still has to go out.
	ctx = context.WithoutCancel(ctx)

	removed, err := WithTimeout(ctx, "rollback inserted quotes", g.timeout,
		func(ctx context.Context) (int64, error) {
			return g.store.DeleteByIDs(ctx, inserted)
		})
	if err != nil {
		logger.ErrorWithFields("rollback failed, rows need manual cleanup", logger.Fields{
			"orphan_ids": len(inserted),
			"error":      err.Error(),
		})
		perr.RollbackErr = err
		perr.OrphanIDs = inserted
		return perr
	}

	logger.WarnWithFields("partial insert rolled back", logger.Fields{
		"removed": removed,
	})
	return perr
}
