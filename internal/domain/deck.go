package domain

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrDeckExhausted is returned when more cards are requested than the deck holds.
var ErrDeckExhausted = errors.New("not enough cards in deck")

// NewDeck returns a fresh copy of the full card set.
func NewDeck() []Card {
	deck := make([]Card, len(DeckValues))
	copy(deck, DeckValues[:])
	return deck
}

// IsValidCard reports whether c belongs to the card set.
func IsValidCard(c Card) bool {
	for _, v := range DeckValues {
		if v == c {
			return true
		}
	}
	return false
}

// Draw shuffles a replenished deck and deals n distinct cards from the front.
func Draw(rng *rand.Rand, n int) ([]Card, error) {
	if n < 0 || n > len(DeckValues) {
		return nil, fmt.Errorf("draw %d: %w", n, ErrDeckExhausted)
	}
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck[:n:n], nil
}
