package bot

import (
	"math/rand"

	botinternal "bluffmarket/internal/bot/internal"
	"bluffmarket/internal/domain"
)

// AggressiveBot masks its card with a skew toward the deck average plus noise,
// and on a bluff shifts the whole band a fixed distance the wrong way.
type AggressiveBot struct {
	Tuning Tuning
}

// Decide draws the bluff decision first and the noise second, so a seeded rng
// always produces the same pair of draws per call.
func (b *AggressiveBot) Decide(card domain.Card, rng *rand.Rand) Decision {
	t := b.Tuning
	bluffing := rng.Float64() < t.BluffProbability

	value := float64(card)
	adjusted := domain.ExpectedTotal(card)
	adjusted += botinternal.SkewCorrection(value, domain.DeckAverage, t.SkewFactor)
	adjusted += botinternal.Noise(rng.Float64(), t.NoiseAmplitude)
	if bluffing {
		adjusted += t.BluffShift * botinternal.BluffDirection(value, domain.DeckAverage)
	}

	bid, ask := botinternal.Band(adjusted, 2)
	d := Decision{
		Quote:    domain.Quote{Bid: bid, Ask: ask},
		Bluffing: bluffing,
		Strategy: StrategyStraight,
	}
	if bluffing {
		d.Strategy = StrategyBluffing
	}
	return d
}
