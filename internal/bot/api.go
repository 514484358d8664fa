package bot

import (
	"math/rand"

	"bluffmarket/internal/domain"
)

// Strategy labels how a quote was produced.
type Strategy string

const (
	StrategyStraight Strategy = "straight"
	StrategyBluffing Strategy = "bluffing"
)

// Decision is the quote an opponent announces for its card.
type Decision struct {
	Quote    domain.Quote
	Bluffing bool
	Strategy Strategy
}

// Brain is the interface that all opponent quoting policies implement.
// Implementations must return a quote with Bid < Ask for every card.
type Brain interface {
	Decide(card domain.Card, rng *rand.Rand) Decision
}
