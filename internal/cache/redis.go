// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ActionRecord holds the minimal info needed by the historian for one session event.
type ActionRecord struct {
	SessionID     string                 `json:"session_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorID       uuid.UUID              `json:"actor_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"` // epoch millis
}

// ConnectRedis opens a client for addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RecordFromEvent flattens a game event into an ActionRecord.
func RecordFromEvent(ev game.GameEvent) ActionRecord {
	rec := ActionRecord{
		SessionID:     ev.SessionID,
		ActionIndex:   ev.Seq,
		ActionType:    string(ev.Type),
		ActionPayload: make(map[string]interface{}, len(ev.Payload)+2),
		Timestamp:     ev.Time.UnixMilli(),
	}
	if ev.User != nil {
		rec.ActorID = ev.User.ID
		if ev.User.Name != "" {
			rec.ActionPayload["name"] = ev.User.Name
		}
	}
	if ev.Card != nil {
		rec.ActionPayload["card"] = map[string]interface{}{
			"suit": string(ev.Card.Suit),
			"rank": int(ev.Card.Rank),
		}
	}
	for k, v := range ev.Payload {
		rec.ActionPayload[k] = v
	}
	return rec
}

// PublishAction serializes the given record to JSON, then pushes it to the Redis queue.
func PublishAction(ctx context.Context, rdb *redis.Client, queue string, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := rdb.RPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queue, err)
	}
	return nil
}

// Recorder is a game.EventListener that ships every event to a Redis list.
// OnGameEvent only enqueues; Run does the network work.
type Recorder struct {
	rdb     *redis.Client
	queue   string
	logger  *logrus.Logger
	records chan ActionRecord
}

// NewRecorder builds a Recorder with a buffer of size pending records.
func NewRecorder(rdb *redis.Client, queue string, size int, logger *logrus.Logger) *Recorder {
	return &Recorder{
		rdb:     rdb,
		queue:   queue,
		logger:  logger,
		records: make(chan ActionRecord, size),
	}
}

// OnGameEvent enqueues ev. When the buffer is full the record is dropped with a warning.
func (r *Recorder) OnGameEvent(ev game.GameEvent) {
	rec := RecordFromEvent(ev)
	select {
	case r.records <- rec:
	default:
		r.logger.WithFields(logrus.Fields{
			"session": rec.SessionID,
			"index":   rec.ActionIndex,
			"type":    rec.ActionType,
		}).Warn("action log buffer full, dropping record")
	}
}

// Run pushes queued records until ctx is cancelled, then drains what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case rec := <-r.records:
			r.publish(ctx, rec)
		}
	}
}

func (r *Recorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		select {
		case rec := <-r.records:
			r.publish(ctx, rec)
		default:
			return
		}
	}
}

func (r *Recorder) publish(ctx context.Context, rec ActionRecord) {
	if err := PublishAction(ctx, r.rdb, r.queue, rec); err != nil {
		r.logger.Errorf("action log: %v", err)
	}
}
