package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingua-board/models"
)

// fakeStore is an in-memory QuoteStore with failure injection.
type fakeStore struct {
	docs map[primitive.ObjectID]models.Quote

	insertCalls       int
	failOnInsertCall  int   // 1-based call index that fails, 0 = never
	partialBeforeFail int   // docs written (and IDs reported) by the failing call
	rollbackErr       error // returned by DeleteByIDs when set
	cleanErr          error // returned by DeleteOtherBuckets when set

	cleanCalls    int
	rollbackCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[primitive.ObjectID]models.Quote{}}
}

func (s *fakeStore) DeleteOtherBuckets(ctx context.Context, keep string) (int64, error) {
	s.cleanCalls++
	if s.cleanErr != nil {
		return 0, s.cleanErr
	}
	var n int64
	for id, q := range s.docs {
		if q.DayBucket != keep {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DeleteByBucket(ctx context.Context, bucket string) (int64, error) {
	var n int64
	for id, q := range s.docs {
		if q.DayBucket == bucket {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) InsertMany(ctx context.Context, quotes []models.Quote) ([]primitive.ObjectID, error) {
	s.insertCalls++
	limit := len(quotes)
	var failErr error
	if s.failOnInsertCall != 0 && s.insertCalls == s.failOnInsertCall {
		limit = s.partialBeforeFail
		failErr = errors.New("write concern error")
	}

	ids := make([]primitive.ObjectID, 0, limit)
	for i := 0; i < limit; i++ {
		id := primitive.NewObjectID()
		s.docs[id] = quotes[i]
		ids = append(ids, id)
	}
	return ids, failErr
}

func (s *fakeStore) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	s.rollbackCalls++
	if s.rollbackErr != nil {
		return 0, s.rollbackErr
	}
	var n int64
	for _, id := range ids {
		if _, ok := s.docs[id]; ok {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) countBucket(bucket string) int {
	n := 0
	for _, q := range s.docs {
		if q.DayBucket == bucket {
			n++
		}
	}
	return n
}

func seedBucket(s *fakeStore, bucket string, n int) {
	for i := 0; i < n; i++ {
		s.docs[primitive.NewObjectID()] = models.Quote{Text: "old", Attribution: "a", DayBucket: bucket}
	}
}

func bucketQuotes(bucket string, n int) []models.Quote {
	out := quotesN(n)
	for i := range out {
		out[i].DayBucket = bucket
	}
	return out
}

func newTestGateway(s *fakeStore) *gateway {
	return &gateway{store: s, timeout: time.Second, chunkSize: 5}
}

func TestGatewayReplaceSwapsBuckets(t *testing.T) {
	s := newFakeStore()
	seedBucket(s, "2026-08-27", 30)

	res, err := newTestGateway(s).replace(context.Background(), "2026-08-28", bucketQuotes("2026-08-28", 30))
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.DeletedCount)
	assert.Equal(t, 30, res.InsertedCount)
	assert.Equal(t, 30, s.countBucket("2026-08-28"))
	assert.Equal(t, 0, s.countBucket("2026-08-27"))
}

func TestGatewayReplacePurgesSameBucketLeftovers(t *testing.T) {
	s := newFakeStore()
	seedBucket(s, "2026-08-27", 3)
	seedBucket(s, "2026-08-28", 7)

	res, err := newTestGateway(s).replace(context.Background(), "2026-08-28", bucketQuotes("2026-08-28", 30))
	require.NoError(t, err)
	// Only stale buckets count toward deletedCount.
	assert.Equal(t, int64(3), res.DeletedCount)
	assert.Equal(t, 30, s.countBucket("2026-08-28"))
}

func TestGatewayCleanFailureSkipsInsert(t *testing.T) {
	s := newFakeStore()
	s.cleanErr = errors.New("connection reset")

	_, err := newTestGateway(s).replace(context.Background(), "2026-08-28", bucketQuotes("2026-08-28", 10))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "clean", perr.Op)
	assert.Equal(t, 0, s.insertCalls)
}

func TestGatewayRollbackRemovesEveryCapturedID(t *testing.T) {
	s := newFakeStore()
	// Third chunk fails after writing 2 of its 5 docs.
	s.failOnInsertCall = 3
	s.partialBeforeFail = 2

	_, err := newTestGateway(s).replace(context.Background(), "2026-08-28", bucketQuotes("2026-08-28", 30))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "insert", perr.Op)
	assert.Nil(t, perr.RollbackErr)
	assert.Equal(t, 1, s.rollbackCalls)
	// Today's bucket reads back empty after compensation.
	assert.Equal(t, 0, s.countBucket("2026-08-28"))
}

func TestGatewayRollbackFailureReportsOrphans(t *testing.T) {
	s := newFakeStore()
	s.failOnInsertCall = 2
	s.partialBeforeFail = 0
	s.rollbackErr = errors.New("still down")

	_, err := newTestGateway(s).replace(context.Background(), "2026-08-28", bucketQuotes("2026-08-28", 30))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "insert", perr.Op)
	require.Error(t, perr.RollbackErr)
	// The first chunk's 5 IDs need manual cleanup.
	assert.Len(t, perr.OrphanIDs, 5)
	// The original insert error is still the primary cause.
	assert.Contains(t, perr.Error(), "write concern error")
}

func TestGatewayNoRollbackWhenNothingInserted(t *testing.T) {
	s := newFakeStore()
	s.failOnInsertCall = 1
	s.partialBeforeFail = 0

	_, err := newTestGateway(s).replace(context.Background(), "2026-08-28", bucketQuotes("2026-08-28", 30))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, s.rollbackCalls)
}

func TestGatewayPersistenceTimeout(t *testing.T) {
	s := newFakeStore()
	slow := &slowStore{fakeStore: s, delay: 100 * time.Millisecond}
	g := &gateway{store: slow, timeout: 10 * time.Millisecond, chunkSize: 5}

	_, err := g.replace(context.Background(), "2026-08-28", bucketQuotes("2026-08-28", 5))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	var terr *TimeoutError
	assert.ErrorAs(t, err, &terr)
}

// slowStore delays Clean to trip the persistence timeout.
type slowStore struct {
	*fakeStore
	delay time.Duration
}

func (s *slowStore) DeleteOtherBuckets(ctx context.Context, keep string) (int64, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return s.fakeStore.DeleteOtherBuckets(ctx, keep)
}
