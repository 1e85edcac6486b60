// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/game"
	"github.com/jason-s-yu/sevens/internal/middleware"
	"github.com/sirupsen/logrus"
)

const (
	wsSubprotocol  = "sevens"
	wsWriteTimeout = 5 * time.Second
)

// GameMessage is an incoming websocket frame.
type GameMessage struct {
	Type string       `json:"type"`
	Card *CardPayload `json:"card,omitempty"`
}

// syncStateMessage carries the connected player's view.
type syncStateMessage struct {
	Type  string    `json:"type"`
	State game.View `json:"state"`
}

// GameWSHandler upgrades /api/ws?game_id&player_id to a websocket for a seated player.
// The socket receives every event of the session followed by a fresh view, and accepts
// play_card, pass_turn and ping frames.
func GameWSHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gameID := q.Get("game_id")
		if err := requireGameID(gameID); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		playerID, err := parsePlayerID(q.Get("player_id"))
		if err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		sess, ok := gs.Registry.GetSession(gameID)
		if !ok {
			writeError(w, gs.Logger, fmt.Errorf("%w: game %s", game.ErrNotFound, game.NormalizeID(gameID)))
			return
		}
		if !sess.HasPlayer(playerID) {
			writeError(w, gs.Logger, fmt.Errorf("%w: not a player in this game", game.ErrForbidden))
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{wsSubprotocol},
			OriginPatterns: gs.OriginPatterns,
		})
		if err != nil {
			gs.Logger.Warnf("websocket accept error for game %s: %v", sess.ID, err)
			return
		}
		defer c.CloseNow()

		if c.Subprotocol() != wsSubprotocol {
			gs.Logger.Warnf("client for game %s connected with invalid subprotocol %q", sess.ID, c.Subprotocol())
			c.Close(BadSubprotocolError, "client must use the sevens subprotocol")
			return
		}
		middleware.LogWebSocketConnect(gs.Logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Subscribe before the first view so no event between the two is lost.
		sub, unsubscribe := gs.Hub.Subscribe(sess.ID)
		defer unsubscribe()

		if err := sendWsMessage(ctx, c, syncStateMessage{Type: "sync_state", State: sess.View(playerID)}); err != nil {
			middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, r.URL.Path, err)
			return
		}

		go func() {
			defer cancel()
			pushEvents(ctx, c, sess, playerID, sub, gs.Logger)
		}()

		err = readGameMessages(ctx, c, gs, sess.ID, playerID)
		middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// pushEvents forwards hub events to the socket until ctx ends or a write fails.
func pushEvents(ctx context.Context, c *websocket.Conn, sess *game.Session, playerID uuid.UUID, sub *Subscription, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sub.Events:
			if err := writeRaw(ctx, c, game.EventToBytes(ev)); err != nil {
				logger.Debugf("stopping event push for %s in game %s: %v", playerID, sess.ID, err)
				return
			}
			if err := sendWsMessage(ctx, c, syncStateMessage{Type: "sync_state", State: sess.View(playerID)}); err != nil {
				logger.Debugf("stopping event push for %s in game %s: %v", playerID, sess.ID, err)
				return
			}
		}
	}
}

// readGameMessages handles client frames until the connection closes. A normal closure returns nil.
func readGameMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, gameID string, playerID uuid.UUID) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			c.Close(UnsupportedDataError, "only text frames are accepted")
			return nil
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWsError(ctx, c, "invalid JSON format")
			continue
		}
		gs.Logger.Debugf("received %q from %s in game %s", msg.Type, playerID, gameID)

		switch msg.Type {
		case "ping":
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
		case "play_card":
			if msg.Card == nil {
				sendWsError(ctx, c, "missing card")
				continue
			}
			card, err := msg.Card.ToCard()
			if err == nil {
				err = gs.Registry.PlayCard(gameID, playerID, card)
			}
			if err != nil {
				sendWsError(ctx, c, clientMessage(gs.Logger, err))
			}
		case "pass_turn":
			if err := gs.Registry.PassTurn(gameID, playerID); err != nil {
				sendWsError(ctx, c, clientMessage(gs.Logger, err))
			}
		default:
			sendWsError(ctx, c, fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

// sendWsMessage marshals message and writes it with a timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return writeRaw(ctx, c, data)
}

func writeRaw(ctx context.Context, c *websocket.Conn, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
