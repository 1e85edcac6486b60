// internal/database/archive.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/sevens/internal/cache"
	"github.com/jason-s-yu/sevens/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	status          TEXT NOT NULL DEFAULT 'waiting',
	winner_id       UUID,
	first_action_at TIMESTAMPTZ NOT NULL,
	last_action_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS session_actions (
	session_id   TEXT NOT NULL REFERENCES sessions(id),
	action_index INT NOT NULL,
	actor_id     UUID,
	action_type  TEXT NOT NULL,
	payload      JSONB NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (session_id, action_index)
);
`

// Archive persists action records drained by the historian. It is an audit trail only;
// nothing reads it back into the engine.
type Archive struct {
	pool *pgxpool.Pool
}

// NewArchive wraps an open pool.
func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// EnsureSchema creates the archive tables if they are missing.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create archive schema: %w", err)
	}
	return nil
}

// statusAfter maps an action type to the session status it implies, or "" for no change.
func statusAfter(actionType string) string {
	switch game.GameEventType(actionType) {
	case game.EventGameStarted:
		return string(game.StatusPlaying)
	case game.EventGameEnd:
		return string(game.StatusFinished)
	}
	return ""
}

// InsertActions writes a batch of records in one transaction and keeps the per-session
// summary row current. Re-delivered records are ignored.
func (a *Archive) InsertActions(ctx context.Context, records []cache.ActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, a.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			at := time.UnixMilli(rec.Timestamp)
			payload, err := json.Marshal(rec.ActionPayload)
			if err != nil {
				return fmt.Errorf("marshal payload for %s#%d: %w", rec.SessionID, rec.ActionIndex, err)
			}

			batch.Queue(`
				INSERT INTO sessions (id, first_action_at, last_action_at)
				VALUES ($1, $2, $2)
				ON CONFLICT (id) DO UPDATE SET last_action_at = GREATEST(sessions.last_action_at, $2)
			`, rec.SessionID, at)

			batch.Queue(`
				INSERT INTO session_actions (session_id, action_index, actor_id, action_type, payload, created_at)
				VALUES ($1, $2, NULLIF($3, '00000000-0000-0000-0000-000000000000'::uuid), $4, $5, $6)
				ON CONFLICT (session_id, action_index) DO NOTHING
			`, rec.SessionID, rec.ActionIndex, rec.ActorID, rec.ActionType, payload, at)

			if st := statusAfter(rec.ActionType); st != "" {
				batch.Queue(`UPDATE sessions SET status = $2 WHERE id = $1 AND status <> 'finished'`, rec.SessionID, st)
			}
			if game.GameEventType(rec.ActionType) == game.EventGameEnd {
				batch.Queue(`UPDATE sessions SET winner_id = $2 WHERE id = $1 AND winner_id IS NULL`, rec.SessionID, rec.ActorID)
			}
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert %d action records: %w", len(records), err)
		}
		return nil
	})
}

// MarkAbandoned flags unfinished sessions with no activity since before.
func (a *Archive) MarkAbandoned(ctx context.Context, before time.Time) (int64, error) {
	tag, err := a.pool.Exec(ctx, `
		UPDATE sessions SET status = 'abandoned'
		WHERE status IN ('waiting', 'playing') AND last_action_at < $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
