// internal/game/session.go
package game

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/models"
	log "github.com/sirupsen/logrus"
)

// Status is the lifecycle phase of a session. It only ever moves forward.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	MinPlayers = 2
	MaxPlayers = 6

	defaultHostName   = "Host"
	defaultPlayerName = "Player"
	maxNameLen        = 24
)

// anchorCard opens the game: whoever is dealt it leads, and it is played automatically.
var anchorCard = models.Card{Suit: models.SuitDiamonds, Rank: models.AnchorRank}

// Session holds the entire state for a single game in memory.
// Exported methods lock Mu; lowercase helpers assume the caller already holds it.
type Session struct {
	ID     string
	Status Status
	HostID uuid.UUID

	Players          map[uuid.UUID]*models.Player
	PlayerOrder      []uuid.UUID
	CurrentTurnIndex int
	Board            Board

	WinnerID uuid.UUID
	Rankings []uuid.UUID

	CreatedAt    time.Time
	LastActivity time.Time

	Mu sync.Mutex

	seq int

	// emit forwards events to the registry listeners. May be nil.
	emit func(ev GameEvent)

	// newDeck supplies a shuffled 52-card deck at start.
	newDeck func() []models.Card
}

// newSession builds a waiting session with the host seated.
func newSession(id, hostName string, newDeck func() []models.Card, emit func(GameEvent)) (*Session, *models.Player) {
	now := time.Now()
	s := &Session{
		ID:           id,
		Status:       StatusWaiting,
		Players:      make(map[uuid.UUID]*models.Player),
		PlayerOrder:  []uuid.UUID{},
		Board:        NewBoard(),
		Rankings:     []uuid.UUID{},
		CreatedAt:    now,
		LastActivity: now,
		emit:         emit,
		newDeck:      newDeck,
	}
	if s.newDeck == nil {
		s.newDeck = func() []models.Card { return BuildDeck(nil) }
	}
	host := s.addPlayer(cleanName(hostName, defaultHostName))
	s.HostID = host.ID
	return s, host
}

// Join seats a new player. Only allowed while waiting and below MaxPlayers.
func (s *Session) Join(name string) (*models.Player, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.Status != StatusWaiting {
		return nil, fmt.Errorf("%w: session %s has already started", ErrInvalidState, s.ID)
	}
	if len(s.Players) >= MaxPlayers {
		return nil, fmt.Errorf("%w: max %d players", ErrFull, MaxPlayers)
	}

	p := s.addPlayer(cleanName(name, defaultPlayerName))
	s.fire(GameEvent{
		Type: EventPlayerJoined,
		User: &EventUser{ID: p.ID, Name: p.Name},
		Payload: map[string]interface{}{
			"player_count": len(s.PlayerOrder),
		},
	})
	return p, nil
}

// Start deals the deck over PlayerOrder and hands the first turn to whoever holds the
// seven of diamonds, which is placed on the board for them.
func (s *Session) Start(requester uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if requester != s.HostID {
		return fmt.Errorf("%w: only the host can start the game", ErrForbidden)
	}
	if len(s.Players) < MinPlayers {
		return fmt.Errorf("%w: need at least %d players", ErrInsufficientPlayers, MinPlayers)
	}
	if s.Status != StatusWaiting {
		return fmt.Errorf("%w: session %s has already started", ErrInvalidState, s.ID)
	}

	hands := Deal(s.PlayerOrder, s.newDeck())
	starter := -1
	for i, id := range s.PlayerOrder {
		if slices.Contains(hands[id], anchorCard) {
			starter = i
			break
		}
	}
	if starter < 0 {
		return fmt.Errorf("%w: deck is missing the %s", ErrInvalidState, anchorCard)
	}

	for _, id := range s.PlayerOrder {
		p := s.Players[id]
		p.Hand = hands[id]
		p.Passed = false
	}
	starterID := s.PlayerOrder[starter]
	s.Players[starterID].RemoveCard(anchorCard)
	s.Board = NewBoard()
	s.Board.Place(anchorCard)
	s.CurrentTurnIndex = starter
	s.Status = StatusPlaying

	log.Debugf("session %s started with %d players, %s leads", s.ID, len(s.PlayerOrder), starterID)
	opened := anchorCard
	s.fire(GameEvent{
		Type: EventGameStarted,
		User: s.eventUser(starterID),
		Card: &opened,
		Payload: map[string]interface{}{
			"player_order": slices.Clone(s.PlayerOrder),
		},
	})
	s.broadcastPlayerTurn()
	return nil
}

// PlayCard places card for playerID. The card must be one of the player's legal moves.
// Emptying the hand ends the game immediately with playerID as the winner.
func (s *Session) PlayCard(playerID uuid.UUID, card models.Card) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.Status != StatusPlaying {
		return fmt.Errorf("%w: game not in progress", ErrInvalidState)
	}
	if playerID != s.currentPlayerID() {
		return ErrNotYourTurn
	}
	p := s.Players[playerID]
	if !slices.Contains(LegalMoves(p.Hand, s.Board), card) {
		return fmt.Errorf("%w: %s cannot be played", ErrIllegalMove, card)
	}

	p.RemoveCard(card)
	s.Board.Place(card)
	p.Passed = false
	s.fire(GameEvent{
		Type: EventCardPlayed,
		User: s.eventUser(playerID),
		Card: &card,
		Payload: map[string]interface{}{
			"cards_left": len(p.Hand),
		},
	})

	if len(p.Hand) == 0 {
		s.finish(playerID)
		return nil
	}
	s.advanceTurn()
	s.broadcastPlayerTurn()
	return nil
}

// PassTurn skips playerID's turn. Only allowed when the player has no legal move.
func (s *Session) PassTurn(playerID uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.Status != StatusPlaying {
		return fmt.Errorf("%w: game not in progress", ErrInvalidState)
	}
	if playerID != s.currentPlayerID() {
		return ErrNotYourTurn
	}
	p := s.Players[playerID]
	if len(LegalMoves(p.Hand, s.Board)) > 0 {
		return fmt.Errorf("%w: you have valid moves", ErrCannotPass)
	}

	p.Passed = true
	s.fire(GameEvent{Type: EventTurnPassed, User: s.eventUser(playerID)})
	s.advanceTurn()
	s.broadcastPlayerTurn()
	return nil
}

// HasPlayer reports whether id is seated in the session.
func (s *Session) HasPlayer(id uuid.UUID) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	_, ok := s.Players[id]
	return ok
}

// addPlayer appends a fresh player to the seating order.
func (s *Session) addPlayer(name string) *models.Player {
	p := &models.Player{
		ID:   uuid.New(),
		Name: name,
		Hand: []models.Card{},
	}
	s.Players[p.ID] = p
	s.PlayerOrder = append(s.PlayerOrder, p.ID)
	return p
}

// currentPlayerID is the player whose turn it is, or uuid.Nil outside of play.
func (s *Session) currentPlayerID() uuid.UUID {
	if s.Status != StatusPlaying || len(s.PlayerOrder) == 0 {
		return uuid.Nil
	}
	return s.PlayerOrder[s.CurrentTurnIndex]
}

// advanceTurn moves the cursor to the next seat that still holds cards, wrapping around.
// A game ends on the first empty hand, so a full scan that finds nobody means the
// session invariants are broken; the cursor is left alone and false is returned.
func (s *Session) advanceTurn() bool {
	n := len(s.PlayerOrder)
	next := (s.CurrentTurnIndex + 1) % n
	for range n {
		if len(s.Players[s.PlayerOrder[next]].Hand) > 0 {
			s.CurrentTurnIndex = next
			return true
		}
		next = (next + 1) % n
	}
	log.WithFields(log.Fields{
		"session": s.ID,
		"index":   s.CurrentTurnIndex,
	}).Error("advanceTurn: no player has cards left, turn index unchanged")
	return false
}

// finish ends the game with winnerID.
func (s *Session) finish(winnerID uuid.UUID) {
	s.Status = StatusFinished
	s.WinnerID = winnerID
	if !slices.Contains(s.Rankings, winnerID) {
		s.Rankings = append(s.Rankings, winnerID)
	}
	log.Debugf("session %s finished, winner %s", s.ID, winnerID)
	s.fire(GameEvent{
		Type: EventGameEnd,
		User: s.eventUser(winnerID),
		Payload: map[string]interface{}{
			"rankings": slices.Clone(s.Rankings),
		},
	})
}

func (s *Session) broadcastPlayerTurn() {
	s.fire(GameEvent{Type: EventPlayerTurn, User: s.eventUser(s.currentPlayerID())})
}

func (s *Session) eventUser(id uuid.UUID) *EventUser {
	p, ok := s.Players[id]
	if !ok {
		return &EventUser{ID: id}
	}
	return &EventUser{ID: p.ID, Name: p.Name}
}

// fire stamps ev with the session id and next sequence number and hands it to emit.
func (s *Session) fire(ev GameEvent) {
	s.seq++
	s.LastActivity = time.Now()
	ev.SessionID = s.ID
	ev.Seq = s.seq
	ev.Time = s.LastActivity
	if s.emit != nil {
		s.emit(ev)
	}
}

// cleanName trims a display name, caps its length and falls back to def when empty.
func cleanName(name, def string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return def
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}
