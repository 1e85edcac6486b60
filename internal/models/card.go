// internal/models/card.go
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit is one of the four French suits, serialised by its lowercase name.
type Suit string

const (
	SuitDiamonds Suit = "diamonds"
	SuitHearts   Suit = "hearts"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Suits lists every suit in deck-building order.
var Suits = []Suit{SuitDiamonds, SuitHearts, SuitClubs, SuitSpades}

// Rank is a card rank from 2 to 14 (11=J, 12=Q, 13=K, 14=A).
type Rank int

const (
	RankTwo   Rank = 2
	RankSeven Rank = 7
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankAce   Rank = 14
)

const (
	MinRank = RankTwo
	MaxRank = RankAce

	// AnchorRank is the only rank that can open a suit.
	AnchorRank = RankSeven
)

// ParseSuit validates a suit name coming from a client. Matching is case-insensitive.
func ParseSuit(s string) (Suit, error) {
	suit := Suit(strings.ToLower(strings.TrimSpace(s)))
	if !suit.Valid() {
		return "", fmt.Errorf("invalid suit %q", s)
	}
	return suit, nil
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case SuitDiamonds, SuitHearts, SuitClubs, SuitSpades:
		return true
	}
	return false
}

// Valid reports whether r is within 2..14.
func (r Rank) Valid() bool {
	return r >= MinRank && r <= MaxRank
}

func (r Rank) String() string {
	switch r {
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	case RankAce:
		return "A"
	}
	return strconv.Itoa(int(r))
}

// Card is an immutable (suit, rank) pair. Two cards are equal iff both fields match.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard builds a card from untrusted input, rejecting unknown suits and out-of-range ranks.
func NewCard(suit string, rank int) (Card, error) {
	s, err := ParseSuit(suit)
	if err != nil {
		return Card{}, err
	}
	r := Rank(rank)
	if !r.Valid() {
		return Card{}, fmt.Errorf("invalid rank %d, must be between %d and %d", rank, MinRank, MaxRank)
	}
	return Card{Suit: s, Rank: r}, nil
}

func (c Card) String() string {
	return c.Rank.String() + " of " + string(c.Suit)
}

// suitIndex orders suits for hand display.
func suitIndex(s Suit) int {
	for i, v := range Suits {
		if v == s {
			return i
		}
	}
	return len(Suits)
}

// Less orders cards by suit (deck order) then rank.
func (c Card) Less(o Card) bool {
	if c.Suit != o.Suit {
		return suitIndex(c.Suit) < suitIndex(o.Suit)
	}
	return c.Rank < o.Rank
}
