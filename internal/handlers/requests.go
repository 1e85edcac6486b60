// internal/handlers/requests.go
package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/models"
)

// errBadRequest marks malformed client input rejected before it reaches the engine.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// CreateGameRequest is the body of POST /api/create_game.
type CreateGameRequest struct {
	HostName string `json:"host_name"`
}

// JoinGameRequest is the body of POST /api/join_game.
type JoinGameRequest struct {
	GameID     string `json:"game_id"`
	PlayerName string `json:"player_name"`
}

func (req JoinGameRequest) Validate() error {
	return requireGameID(req.GameID)
}

// PlayerRequest identifies a player acting in a game. Used by start_game and pass_turn.
type PlayerRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// Validate checks the ids and returns the parsed player id.
func (req PlayerRequest) Validate() (uuid.UUID, error) {
	if err := requireGameID(req.GameID); err != nil {
		return uuid.Nil, err
	}
	return parsePlayerID(req.PlayerID)
}

// CardPayload is a card as exchanged with clients.
type CardPayload struct {
	Suit string `json:"suit"`
	Rank int    `json:"rank"`
}

// ToCard converts the payload into an engine card.
func (cp CardPayload) ToCard() (models.Card, error) {
	c, err := models.NewCard(cp.Suit, cp.Rank)
	if err != nil {
		return models.Card{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return c, nil
}

// PlayCardRequest is the body of POST /api/play_card.
type PlayCardRequest struct {
	GameID   string       `json:"game_id"`
	PlayerID string       `json:"player_id"`
	Card     *CardPayload `json:"card"`
}

// Validate checks every field and returns the parsed player id and card.
func (req PlayCardRequest) Validate() (uuid.UUID, models.Card, error) {
	pid, err := PlayerRequest{GameID: req.GameID, PlayerID: req.PlayerID}.Validate()
	if err != nil {
		return uuid.Nil, models.Card{}, err
	}
	if req.Card == nil {
		return uuid.Nil, models.Card{}, badRequest("missing card")
	}
	c, err := req.Card.ToCard()
	if err != nil {
		return uuid.Nil, models.Card{}, err
	}
	return pid, c, nil
}

// JoinResponse is returned by create_game and join_game.
type JoinResponse struct {
	GameID   string    `json:"game_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func requireGameID(id string) error {
	if strings.TrimSpace(id) == "" {
		return badRequest("missing game_id")
	}
	return nil
}

func parsePlayerID(s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, badRequest("missing player_id")
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, badRequest("invalid player_id")
	}
	return id, nil
}
