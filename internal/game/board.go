// internal/game/board.go
package game

import (
	"github.com/jason-s-yu/sevens/internal/models"
)

// Board maps each suit to the ascending run of ranks played on it.
// A non-empty run is always a contiguous interval that contains 7.
type Board map[models.Suit][]models.Rank

// NewBoard returns a board with an empty run for every suit.
func NewBoard() Board {
	b := make(Board, len(models.Suits))
	for _, s := range models.Suits {
		b[s] = []models.Rank{}
	}
	return b
}

// Extent returns the lowest and highest rank played on suit, or ok=false if the suit is unopened.
func (b Board) Extent(suit models.Suit) (lo, hi models.Rank, ok bool) {
	run := b[suit]
	if len(run) == 0 {
		return 0, 0, false
	}
	return run[0], run[len(run)-1], true
}

// CanPlace reports whether c extends its suit's run: the anchor on an unopened suit,
// otherwise one below the low end or one above the high end. Invalid cards never fit.
func (b Board) CanPlace(c models.Card) bool {
	if !c.Suit.Valid() || !c.Rank.Valid() {
		return false
	}
	lo, hi, ok := b.Extent(c.Suit)
	if !ok {
		return c.Rank == models.AnchorRank
	}
	return c.Rank == lo-1 || c.Rank == hi+1
}

// Place adds c to the board if it is a legal extension and reports whether it did.
func (b Board) Place(c models.Card) bool {
	if !b.CanPlace(c) {
		return false
	}
	run := b[c.Suit]
	if len(run) > 0 && c.Rank < run[0] {
		b[c.Suit] = append([]models.Rank{c.Rank}, run...)
	} else {
		b[c.Suit] = append(run, c.Rank)
	}
	return true
}

// Count is the number of cards on the board.
func (b Board) Count() int {
	n := 0
	for _, run := range b {
		n += len(run)
	}
	return n
}

// Clone deep-copies the board so callers outside the session lock can read it.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for s, run := range b {
		out[s] = append([]models.Rank{}, run...)
	}
	return out
}

// LegalMoves returns the cards in hand that may be played on b, in hand order.
func LegalMoves(hand []models.Card, b Board) []models.Card {
	valid := []models.Card{}
	for _, c := range hand {
		if b.CanPlace(c) {
			valid = append(valid, c)
		}
	}
	return valid
}
