// internal/game/events.go
package game

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/models"
	log "github.com/sirupsen/logrus"
)

// GameEventType is an enum-like type for broadcasting session changes.
type GameEventType string

const (
	EventPlayerJoined GameEventType = "player_joined"
	EventGameStarted  GameEventType = "game_started"
	EventCardPlayed   GameEventType = "card_played"
	EventTurnPassed   GameEventType = "turn_passed"
	EventPlayerTurn   GameEventType = "player_turn"
	EventGameEnd      GameEventType = "game_end"
)

// EventUser identifies the acting player in an event.
type EventUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

// GameEvent is a public record of one change to a session. It never carries hand contents.
type GameEvent struct {
	Type      GameEventType          `json:"type"`
	SessionID string                 `json:"session_id"`
	Seq       int                    `json:"seq"`
	User      *EventUser             `json:"user,omitempty"`
	Card      *models.Card           `json:"card,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Time      time.Time              `json:"time"`
}

// EventListener receives every event emitted by sessions of a registry.
// It is called with the session lock held and must not block or call back into the session.
type EventListener interface {
	OnGameEvent(ev GameEvent)
}

// ListenerFunc adapts a plain function to EventListener.
type ListenerFunc func(ev GameEvent)

func (f ListenerFunc) OnGameEvent(ev GameEvent) { f(ev) }

// EventToBytes marshals a GameEvent into JSON bytes.
// Logs a warning and returns empty JSON "{}" on marshalling error.
func EventToBytes(ev GameEvent) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Warnf("failed to marshal GameEvent type %s: %v", ev.Type, err)
		return []byte("{}")
	}
	return data
}
