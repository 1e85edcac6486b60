package models

import (
	"slices"

	"github.com/google/uuid"
)

// Player is a seat in a session. Hand is only ever exposed to its owner.
type Player struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Hand   []Card    `json:"-"`
	Passed bool      `json:"passed"`
}

// HasCard reports whether the player holds c.
func (p *Player) HasCard(c Card) bool {
	return slices.Contains(p.Hand, c)
}

// RemoveCard drops c from the hand, keeping the order of the remaining cards.
// Returns false if the card was not held.
func (p *Player) RemoveCard(c Card) bool {
	idx := slices.Index(p.Hand, c)
	if idx < 0 {
		return false
	}
	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	return true
}
