package historian

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/sevens/internal/cache"
	"github.com/jason-s-yu/sevens/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records what the historian persists.
type fakeStore struct {
	mu       sync.Mutex
	batches  [][]cache.ActionRecord
	fail     error
	swept    []time.Time
	abandons int64
}

func (fs *fakeStore) InsertActions(_ context.Context, records []cache.ActionRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.fail != nil {
		return fs.fail
	}
	fs.batches = append(fs.batches, append([]cache.ActionRecord{}, records...))
	return nil
}

func (fs *fakeStore) MarkAbandoned(_ context.Context, before time.Time) (int64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.swept = append(fs.swept, before)
	return fs.abandons, nil
}

func newTestService(store Store, batchSize int) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := config.Config{
		HistorianQueue:     config.DefaultQueueName,
		HistorianBatchSize: batchSize,
		HistorianFlush:     time.Hour,
		InactivityTimeout:  10 * time.Minute,
	}
	return NewService(nil, store, cfg, logger)
}

func payload(t *testing.T, sid string, idx int) string {
	t.Helper()
	data, err := json.Marshal(cache.ActionRecord{SessionID: sid, ActionIndex: idx, ActionType: "card_played"})
	require.NoError(t, err)
	return string(data)
}

func TestBatchFlushesWhenFull(t *testing.T) {
	store := &fakeStore{}
	hs := newTestService(store, 3)
	ctx := context.Background()

	hs.handlePayload(ctx, payload(t, "S1", 1))
	hs.handlePayload(ctx, payload(t, "S1", 2))
	assert.Empty(t, store.batches)
	assert.Equal(t, 2, hs.pending())

	hs.handlePayload(ctx, payload(t, "S1", 3))
	require.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 3)
	assert.Equal(t, 0, hs.pending())
}

func TestInvalidPayloadsAreSkipped(t *testing.T) {
	store := &fakeStore{}
	hs := newTestService(store, 10)
	ctx := context.Background()

	hs.handlePayload(ctx, "{not json")
	hs.handlePayload(ctx, `{"action_index": 1}`)
	assert.Equal(t, 0, hs.pending())

	require.NoError(t, hs.flush(ctx))
	assert.Empty(t, store.batches, "empty flush is a no-op")
}

func TestFailedFlushKeepsRecords(t *testing.T) {
	store := &fakeStore{fail: errors.New("db down")}
	hs := newTestService(store, 10)
	ctx := context.Background()

	hs.handlePayload(ctx, payload(t, "S1", 1))
	hs.handlePayload(ctx, payload(t, "S1", 2))
	require.Error(t, hs.flush(ctx))
	assert.Equal(t, 2, hs.pending())

	store.mu.Lock()
	store.fail = nil
	store.mu.Unlock()
	hs.handlePayload(ctx, payload(t, "S1", 3))
	require.NoError(t, hs.flush(ctx))

	require.Len(t, store.batches, 1)
	got := store.batches[0]
	require.Len(t, got, 3)
	for i, rec := range got {
		assert.Equal(t, i+1, rec.ActionIndex, "order is preserved across retries")
	}
}

func TestSweepUsesInactivityThreshold(t *testing.T) {
	store := &fakeStore{abandons: 2}
	hs := newTestService(store, 10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	hs.sweep(context.Background(), now)
	require.Len(t, store.swept, 1)
	assert.Equal(t, now.Add(-10*time.Minute), store.swept[0])
}

func TestZeroBatchSizeFlushesEveryRecord(t *testing.T) {
	store := &fakeStore{}
	hs := newTestService(store, 0)
	hs.handlePayload(context.Background(), payload(t, "S1", 1))
	assert.Len(t, store.batches, 1)
}

func TestRepeatedFlushFailuresDropTheBatch(t *testing.T) {
	store := &fakeStore{fail: errors.New("constraint violation")}
	hs := newTestService(store, 100)
	ctx := context.Background()

	hs.handlePayload(ctx, payload(t, "S1", 1))
	for i := 1; i < maxFlushAttempts; i++ {
		require.Error(t, hs.flush(ctx))
		assert.Equal(t, 1, hs.pending(), "kept after attempt %d", i)
	}
	require.Error(t, hs.flush(ctx))
	assert.Equal(t, 0, hs.pending())

	// later records start with a clean slate
	store.mu.Lock()
	store.fail = nil
	store.mu.Unlock()
	hs.handlePayload(ctx, payload(t, "S1", 2))
	require.NoError(t, hs.flush(ctx))
	require.Len(t, store.batches, 1)
	require.Len(t, store.batches[0], 1)
	assert.Equal(t, 2, store.batches[0][0].ActionIndex)
}
