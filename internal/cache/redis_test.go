package cache

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/game"
	"github.com/jason-s-yu/sevens/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRecordFromEvent(t *testing.T) {
	pid := uuid.New()
	at := time.UnixMilli(1_700_000_000_000)
	c := models.Card{Suit: models.SuitHearts, Rank: models.RankQueen}

	rec := RecordFromEvent(game.GameEvent{
		Type:      game.EventCardPlayed,
		SessionID: "ABCD1234",
		Seq:       9,
		User:      &game.EventUser{ID: pid, Name: "Alice"},
		Card:      &c,
		Payload:   map[string]interface{}{"cards_left": 3},
		Time:      at,
	})

	assert.Equal(t, "ABCD1234", rec.SessionID)
	assert.Equal(t, 9, rec.ActionIndex)
	assert.Equal(t, pid, rec.ActorID)
	assert.Equal(t, "card_played", rec.ActionType)
	assert.Equal(t, at.UnixMilli(), rec.Timestamp)
	assert.Equal(t, "Alice", rec.ActionPayload["name"])
	assert.Equal(t, 3, rec.ActionPayload["cards_left"])
	assert.Equal(t, map[string]interface{}{"suit": "hearts", "rank": 12}, rec.ActionPayload["card"])

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action_type":"card_played"`)
}

func TestRecordFromEventWithoutActor(t *testing.T) {
	rec := RecordFromEvent(game.GameEvent{Type: game.EventPlayerTurn, SessionID: "S", Seq: 1})
	assert.Equal(t, uuid.Nil, rec.ActorID)
	assert.NotNil(t, rec.ActionPayload)
	assert.Empty(t, rec.ActionPayload)
}

func TestRecorderDropsWhenFull(t *testing.T) {
	r := NewRecorder(nil, "q", 1, quietLogger())

	// no Run loop: the second event must not block
	done := make(chan struct{})
	go func() {
		r.OnGameEvent(game.GameEvent{Type: game.EventPlayerJoined, Seq: 1})
		r.OnGameEvent(game.GameEvent{Type: game.EventPlayerJoined, Seq: 2})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnGameEvent blocked on a full buffer")
	}
	require.Len(t, r.records, 1)
	assert.Equal(t, 1, (<-r.records).ActionIndex)
}

// TestPublishToRedis needs a local Redis; it is skipped when none is reachable.
func TestPublishToRedis(t *testing.T) {
	ctx := context.Background()
	rdb, err := ConnectRedis(ctx, "localhost:6379", 0)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer rdb.Close()

	queue := "sevens_test_" + uuid.NewString()
	defer rdb.Del(ctx, queue)

	rec := ActionRecord{SessionID: "TEST0001", ActionIndex: 1, ActionType: "player_joined", ActionPayload: map[string]interface{}{}}
	require.NoError(t, PublishAction(ctx, rdb, queue, rec))

	raw, err := rdb.LPop(ctx, queue).Result()
	require.NoError(t, err)
	var got ActionRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, rec.SessionID, got.SessionID)
	assert.Equal(t, rec.ActionType, got.ActionType)
}
