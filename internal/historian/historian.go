// internal/historian/historian.go pops session action records from a Redis queue and
// persists them to PostgreSQL in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/sevens/internal/cache"
	"github.com/jason-s-yu/sevens/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Store is the persistence side of the historian.
type Store interface {
	InsertActions(ctx context.Context, records []cache.ActionRecord) error
	MarkAbandoned(ctx context.Context, before time.Time) (int64, error)
}

// Service encapsulates the Redis + DB logic for capturing session actions
// and marking sessions abandoned when an inactivity threshold is reached.
type Service struct {
	rdb    *redis.Client
	store  Store
	logger *logrus.Logger

	queue      string
	batchSize  int
	flushDelay time.Duration
	inactivity time.Duration
	sweepEvery time.Duration

	batchMu  sync.Mutex
	batch    []cache.ActionRecord
	failures int // consecutive failed flushes of the current batch
}

// maxFlushAttempts is how many consecutive failed flushes a batch survives before it is dropped.
const maxFlushAttempts = 3

// NewService builds a historian from the process configuration.
func NewService(rdb *redis.Client, store Store, cfg config.Config, logger *logrus.Logger) *Service {
	batchSize := cfg.HistorianBatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	flushDelay := cfg.HistorianFlush
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	inactivity := cfg.InactivityTimeout
	if inactivity <= 0 {
		inactivity = 10 * time.Minute
	}
	return &Service{
		rdb:        rdb,
		store:      store,
		logger:     logger,
		queue:      cfg.HistorianQueue,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		inactivity: inactivity,
		sweepEvery: time.Minute,
		batch:      make([]cache.ActionRecord, 0, batchSize),
	}
}

// Run starts the read, flush and inactivity loops and blocks until ctx is cancelled.
// Whatever is still batched is flushed before returning.
func (hs *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); hs.readRedisLoop(ctx) }()
	go func() { defer wg.Done(); hs.flushLoop(ctx) }()
	go func() { defer wg.Done(); hs.inactivityLoop(ctx) }()

	hs.logger.Infof("historian started, queue %s", hs.queue)
	<-ctx.Done()
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.flush(flushCtx); err != nil {
		hs.logger.Errorf("final flush: %v", err)
	}
	hs.logger.Info("historian shutting down")
}

// readRedisLoop continuously uses BLPop to retrieve records from the queue.
func (hs *Service) readRedisLoop(ctx context.Context) {
	for ctx.Err() == nil {
		// a short timeout keeps cancellation responsive
		res, err := hs.rdb.BLPop(ctx, 3*time.Second, hs.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			hs.logger.Errorf("BLPop: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		// res[0] is the queue name and res[1] the payload
		if len(res) < 2 {
			continue
		}
		hs.handlePayload(ctx, res[1])
	}
}

func (hs *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := hs.flush(ctx); err != nil {
				hs.logger.Errorf("flush: %v", err)
			}
		}
	}
}

// inactivityLoop periodically marks sessions idle for longer than the threshold as abandoned.
func (hs *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			hs.sweep(ctx, now)
		}
	}
}

// handlePayload decodes one queued record and batches it, flushing when the batch is full.
func (hs *Service) handlePayload(ctx context.Context, payload string) {
	var rec cache.ActionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		hs.logger.Warnf("invalid action record: %v", err)
		return
	}
	if rec.SessionID == "" {
		hs.logger.Warn("action record without session id, skipping")
		return
	}

	hs.batchMu.Lock()
	hs.batch = append(hs.batch, rec)
	full := len(hs.batch) >= hs.batchSize
	hs.batchMu.Unlock()

	if full {
		if err := hs.flush(ctx); err != nil {
			hs.logger.Errorf("flush: %v", err)
		}
	}
}

// flush writes the pending batch. On failure the records are kept for the next attempt,
// unless the batch has now failed maxFlushAttempts times in a row, in which case it is dropped.
func (hs *Service) flush(ctx context.Context) error {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return nil
	}
	pending := hs.batch
	hs.batch = make([]cache.ActionRecord, 0, hs.batchSize)
	hs.batchMu.Unlock()

	if err := hs.store.InsertActions(ctx, pending); err != nil {
		hs.batchMu.Lock()
		hs.failures++
		if hs.failures >= maxFlushAttempts {
			hs.failures = 0
			hs.batchMu.Unlock()
			hs.logger.WithFields(logrus.Fields{
				"records":  len(pending),
				"attempts": maxFlushAttempts,
			}).Errorf("dropping action records after repeated flush failures: %v", err)
			return err
		}
		hs.batch = append(pending, hs.batch...)
		hs.batchMu.Unlock()
		return err
	}
	hs.batchMu.Lock()
	hs.failures = 0
	hs.batchMu.Unlock()
	hs.logger.Debugf("flushed %d actions to DB", len(pending))
	return nil
}

func (hs *Service) sweep(ctx context.Context, now time.Time) {
	n, err := hs.store.MarkAbandoned(ctx, now.Add(-hs.inactivity))
	if err != nil {
		hs.logger.Errorf("inactivity sweep: %v", err)
		return
	}
	if n > 0 {
		hs.logger.Infof("marked %d sessions abandoned due to inactivity", n)
	}
}

// pending reports the number of batched records.
func (hs *Service) pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}
