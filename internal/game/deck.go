// internal/game/deck.go
package game

import (
	"math/rand"
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sevens/internal/models"
)

// DeckSize is the number of distinct cards in a standard deck.
const DeckSize = 52

// BuildDeck returns a freshly allocated 52-card deck in uniformly random order.
// If r is nil the package-level source is used, which is safe for concurrent use.
func BuildDeck(r *rand.Rand) []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for _, s := range models.Suits {
		for rnk := models.MinRank; rnk <= models.MaxRank; rnk++ {
			deck = append(deck, models.Card{Suit: s, Rank: rnk})
		}
	}

	swap := func(i, j int) { deck[i], deck[j] = deck[j], deck[i] }
	if r != nil {
		r.Shuffle(len(deck), swap)
	} else {
		rand.Shuffle(len(deck), swap)
	}
	return deck
}

// Deal hands out the deck round-robin: card i goes to order[i % len(order)].
// Each resulting hand is sorted by suit then rank for display.
func Deal(order []uuid.UUID, deck []models.Card) map[uuid.UUID][]models.Card {
	hands := make(map[uuid.UUID][]models.Card, len(order))
	if len(order) == 0 {
		return hands
	}
	for _, id := range order {
		hands[id] = make([]models.Card, 0, len(deck)/len(order)+1)
	}
	for i, c := range deck {
		id := order[i%len(order)]
		hands[id] = append(hands[id], c)
	}
	for id := range hands {
		slices.SortStableFunc(hands[id], func(a, b models.Card) int {
			switch {
			case a.Less(b):
				return -1
			case b.Less(a):
				return 1
			}
			return 0
		})
	}
	return hands
}
