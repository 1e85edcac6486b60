// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/jason-s-yu/sevens/internal/game"
	"github.com/sirupsen/logrus"
)

// subscriptionBuffer is how many events a slow websocket may fall behind before events are dropped.
const subscriptionBuffer = 64

// Subscription receives every event of one session.
type Subscription struct {
	SessionID string
	Events    chan game.GameEvent
}

// Hub fans registry events out to the websocket connections watching each session.
// OnGameEvent runs under the session lock, so delivery never blocks.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	logger *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers interest in sessionID. The returned func unsubscribes and is safe to call twice.
func (h *Hub) Subscribe(sessionID string) (*Subscription, func()) {
	sub := &Subscription{
		SessionID: sessionID,
		Events:    make(chan game.GameEvent, subscriptionBuffer),
	}
	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[sessionID], sub)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
		})
	}
}

// Subscribers returns the number of live subscriptions for sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}

// OnGameEvent implements game.EventListener.
func (h *Hub) OnGameEvent(ev game.GameEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[ev.SessionID] {
		select {
		case sub.Events <- ev:
		default:
			h.logger.WithFields(logrus.Fields{
				"game":  ev.SessionID,
				"event": ev.Type,
				"seq":   ev.Seq,
			}).Warn("websocket subscriber is behind, dropping event")
		}
	}
}
