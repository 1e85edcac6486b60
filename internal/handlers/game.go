// internal/handlers/game.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/game"
)

// CreateGameHandler opens a session and seats the caller as host.
func CreateGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		id, host := gs.Registry.CreateSession(req.HostName)
		gs.Logger.WithField("game", id).Info("game created")
		writeJSON(w, http.StatusOK, JoinResponse{GameID: id, PlayerID: host})
	}
}

// JoinGameHandler seats a new player in a waiting session.
func JoinGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinGameRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		pid, err := gs.Registry.JoinSession(req.GameID, req.PlayerName)
		if err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, JoinResponse{GameID: game.NormalizeID(req.GameID), PlayerID: pid})
	}
}

// StartGameHandler deals the cards. Only the host may call it.
func StartGameHandler(gs *GameServer) http.HandlerFunc {
	return playerAction(gs, func(gameID string, pid uuid.UUID) error {
		return gs.Registry.StartSession(gameID, pid)
	})
}

// PassTurnHandler passes the caller's turn when they have no legal move.
func PassTurnHandler(gs *GameServer) http.HandlerFunc {
	return playerAction(gs, func(gameID string, pid uuid.UUID) error {
		return gs.Registry.PassTurn(gameID, pid)
	})
}

// PlayCardHandler plays one card from the caller's hand.
func PlayCardHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayCardRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		pid, c, err := req.Validate()
		if err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		if err := gs.Registry.PlayCard(req.GameID, pid, c); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// GameStateHandler returns the session as seen by ?player_id. An unknown or malformed
// player id yields the public view with an empty hand.
func GameStateHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gameID := q.Get("game_id")
		if err := requireGameID(gameID); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		pid, err := uuid.Parse(strings.TrimSpace(q.Get("player_id")))
		if err != nil {
			pid = uuid.Nil
		}
		v, err := gs.Registry.GetView(gameID, pid)
		if err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// playerAction decodes a PlayerRequest and runs fn, answering {"success": true} on success.
func playerAction(gs *GameServer, fn func(gameID string, pid uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		pid, err := req.Validate()
		if err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		if err := fn(req.GameID, pid); err != nil {
			writeError(w, gs.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
