package bot

import (
	"math/rand"

	"bluffmarket/internal/domain"
)

// Agent is a named computer opponent seated for one round.
type Agent struct {
	Name     string
	Strategy Brain
}

// Play produces the opponent's public quote and narration for its card.
func (a *Agent) Play(card domain.Card, rng *rand.Rand) domain.Opponent {
	d := a.Strategy.Decide(card, rng)
	return domain.Opponent{
		Name:      a.Name,
		Card:      card,
		Quote:     d.Quote,
		Bluffing:  d.Bluffing,
		Strategy:  string(d.Strategy),
		Narration: Narrate(a.Name, d, rng),
	}
}
