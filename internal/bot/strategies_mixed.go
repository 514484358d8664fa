package bot

import (
	"math/rand"

	"bluffmarket/internal/domain"
)

// MixedBot picks the transparent or the aggressive policy with equal odds
// on every decision.
type MixedBot struct {
	Transparent TransparentBot
	Aggressive  AggressiveBot
}

func (b *MixedBot) Decide(card domain.Card, rng *rand.Rand) Decision {
	if rng.Intn(2) == 0 {
		return b.Transparent.Decide(card, rng)
	}
	return b.Aggressive.Decide(card, rng)
}
