// internal/game/registry.go
package game

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/models"
)

// sessionIDLen is the length of the shareable session code.
const sessionIDLen = 8

// Registry maps session ids to live sessions. It is the only state shared across sessions:
// its lock guards the map, while each Session serialises its own operations.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	listenersMu sync.RWMutex
	listeners   []EventListener

	// NewDeck supplies the deck dealt at start. Defaults to a uniformly shuffled deck.
	NewDeck func() []models.Card

	newID func() string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		NewDeck:  func() []models.Card { return BuildDeck(nil) },
		newID:    newSessionID,
	}
}

// newSessionID derives an 8 character uppercase code from a random UUID.
func newSessionID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionIDLen])
}

// NormalizeID canonicalises a client-supplied session id.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// AddListener registers l to receive events from every session in the registry.
func (r *Registry) AddListener(l EventListener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, l)
}

func (r *Registry) dispatch(ev GameEvent) {
	r.listenersMu.RLock()
	ls := r.listeners
	r.listenersMu.RUnlock()
	for _, l := range ls {
		l.OnGameEvent(ev)
	}
}

// CreateSession opens a new waiting session with hostName seated as host.
func (r *Registry) CreateSession(hostName string) (string, uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for _, taken := r.sessions[id]; taken; _, taken = r.sessions[id] {
		id = r.newID()
	}
	s, host := newSession(id, hostName, r.NewDeck, r.dispatch)
	r.sessions[id] = s
	return id, host.ID
}

// GetSession looks up a session by id (case-insensitive).
func (r *Registry) GetSession(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[NormalizeID(id)]
	return s, ok
}

// Len is the number of sessions held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) lookup(id string) (*Session, error) {
	s, ok := r.GetSession(id)
	if !ok {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, NormalizeID(id))
	}
	return s, nil
}

// JoinSession seats playerName in session id and returns the new player's id.
func (r *Registry) JoinSession(id, playerName string) (uuid.UUID, error) {
	s, err := r.lookup(id)
	if err != nil {
		return uuid.Nil, err
	}
	p, err := s.Join(playerName)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// StartSession deals and begins play. Only the host may start.
func (r *Registry) StartSession(id string, requester uuid.UUID) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	return s.Start(requester)
}

// PlayCard plays card for playerID in session id.
func (r *Registry) PlayCard(id string, playerID uuid.UUID, card models.Card) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	return s.PlayCard(playerID, card)
}

// PassTurn passes playerID's turn in session id.
func (r *Registry) PassTurn(id string, playerID uuid.UUID) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	return s.PassTurn(playerID)
}

// GetView returns the session as seen by playerID.
func (r *Registry) GetView(id string, playerID uuid.UUID) (View, error) {
	s, err := r.lookup(id)
	if err != nil {
		return View{}, err
	}
	return s.View(playerID), nil
}
