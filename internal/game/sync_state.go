// internal/game/sync_state.go
package game

import (
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/models"
)

// PlayerView is the public state of one seat from the perspective of the requesting player.
type PlayerView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"card_count"`
	IsCurrent bool      `json:"is_current"`
	IsMe      bool      `json:"is_me"`
	IsHost    bool      `json:"is_host"`
	Passed    bool      `json:"passed"`
}

// View is the player-specific snapshot returned by View. Only MyHand reveals cards.
type View struct {
	SessionID       string        `json:"game_id"`
	Status          Status        `json:"status"`
	HostID          uuid.UUID     `json:"host"`
	Players         []PlayerView  `json:"players"`
	Board           Board         `json:"board"`
	MyHand          []models.Card `json:"my_hand"`
	ValidMoves      []models.Card `json:"valid_moves"`
	CurrentPlayerID *uuid.UUID    `json:"current_player_id"`
	IsMyTurn        bool          `json:"is_my_turn"`
	WinnerID        *uuid.UUID    `json:"winner"`
	WinnerName      string        `json:"winner_name,omitempty"`
	Rankings        []uuid.UUID   `json:"rankings"`
	PlayerCount     int           `json:"player_count"`
}

// View builds a snapshot of the session for forPlayer. An unknown player gets an empty
// hand and is_me=false everywhere.
func (s *Session) View(forPlayer uuid.UUID) View {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	current := s.currentPlayerID()
	v := View{
		SessionID:   s.ID,
		Status:      s.Status,
		HostID:      s.HostID,
		Players:     make([]PlayerView, 0, len(s.PlayerOrder)),
		Board:       s.Board.Clone(),
		MyHand:      []models.Card{},
		ValidMoves:  []models.Card{},
		IsMyTurn:    current != uuid.Nil && current == forPlayer,
		Rankings:    slices.Clone(s.Rankings),
		PlayerCount: len(s.Players),
	}
	if current != uuid.Nil {
		v.CurrentPlayerID = &current
	}

	if me, ok := s.Players[forPlayer]; ok {
		v.MyHand = slices.Clone(me.Hand)
		if s.Status == StatusPlaying {
			v.ValidMoves = LegalMoves(me.Hand, s.Board)
		}
	}

	if s.WinnerID != uuid.Nil {
		winner := s.WinnerID
		v.WinnerID = &winner
		if p, ok := s.Players[winner]; ok {
			v.WinnerName = p.Name
		}
	}

	for _, id := range s.PlayerOrder {
		p := s.Players[id]
		v.Players = append(v.Players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			CardCount: len(p.Hand),
			IsCurrent: id == current,
			IsMe:      id == forPlayer,
			IsHost:    id == s.HostID,
			Passed:    p.Passed,
		})
	}
	return v
}
