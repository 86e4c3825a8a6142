package repositories

import (
	"context"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lingua-board/models"
)

type QuoteRepository struct {
	col *mongo.Collection
}

func NewQuoteRepository(db *mongo.Database) *QuoteRepository {
	return &QuoteRepository{col: db.Collection("daily_quotes")}
}

// DeleteOtherBuckets removes every quote whose day_bucket differs from
// keepBucket and returns the number of deleted documents.
func (r *QuoteRepository) DeleteOtherBuckets(ctx context.Context, keepBucket string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"day_bucket": bson.M{"$ne": keepBucket}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByBucket removes every quote in the given day bucket. Used to purge
// leftovers of an earlier run in the same bucket before inserting, so a
// same-day re-run converges to exactly one full bucket.
func (r *QuoteRepository) DeleteByBucket(ctx context.Context, bucket string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"day_bucket": bucket})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// InsertMany inserts the given quotes and returns the generated ObjectIDs in
// insertion order. CreatedAt is stamped here.
func (r *QuoteRepository) InsertMany(ctx context.Context, quotes []models.Quote) ([]primitive.ObjectID, error) {
	now := time.Now()
	docs := make([]interface{}, 0, len(quotes))
	for i := range quotes {
		q := quotes[i]
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		docs = append(docs, q)
	}

	res, err := r.col.InsertMany(ctx, docs)
	ids := objectIDs(res)
	if err != nil {
		// An ordered InsertMany can fail partway; surface whatever IDs the
		// driver reports so the caller can compensate.
		return ids, err
	}
	return ids, nil
}

// DeleteByIDs removes quotes by their ObjectIDs, used for compensating
// rollback of a partially inserted run.
func (r *QuoteRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByBucket returns the number of quotes in the given day bucket.
func (r *QuoteRepository) CountByBucket(ctx context.Context, bucket string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"day_bucket": bucket})
}

// FindRandomByBucket returns one uniformly random quote from the bucket by
// counting and skipping to a random offset.
func (r *QuoteRepository) FindRandomByBucket(ctx context.Context, bucket string) (*models.Quote, error) {
	n, err := r.CountByBucket(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, mongo.ErrNoDocuments
	}

	offset := rand.Int63n(n)
	opts := options.FindOne().SetSkip(offset)
	var q models.Quote
	if err := r.col.FindOne(ctx, bson.M{"day_bucket": bucket}, opts).Decode(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

func objectIDs(res *mongo.InsertManyResult) []primitive.ObjectID {
	if res == nil {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(res.InsertedIDs))
	for _, raw := range res.InsertedIDs {
		id, ok := raw.(primitive.ObjectID)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
