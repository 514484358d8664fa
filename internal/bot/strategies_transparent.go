package bot

import (
	"math/rand"

	botinternal "bluffmarket/internal/bot/internal"
	"bluffmarket/internal/domain"
)

// TransparentBot quotes a tight, honest band around the value its card implies.
type TransparentBot struct{}

func (b *TransparentBot) Decide(card domain.Card, _ *rand.Rand) Decision {
	bid, ask := botinternal.Band(domain.ExpectedTotal(card), 1)
	return Decision{
		Quote:    domain.Quote{Bid: bid, Ask: ask},
		Strategy: StrategyStraight,
	}
}
