package market

import "bluffmarket/internal/domain"

// Result is the scored outcome of one round.
type Result struct {
	Policy            Policy
	ArbitrageFound    bool
	Profit            int
	TooHonest         bool
	BluffingOpponents []string
	Buyer             string
	Seller            string
}

// Engine scores a player's quote against the opponents on the table.
type Engine struct {
	detector Detector
	policy   Policy
}

// NewEngine builds an engine for a policy.
func NewEngine(p Policy) (*Engine, error) {
	d, err := NewDetector(p)
	if err != nil {
		return nil, err
	}
	return &Engine{detector: d, policy: p}, nil
}

// Policy returns the policy the engine was built with.
func (e *Engine) Policy() Policy { return e.policy }

// Score resolves a round. Profit is never negative.
func (e *Engine) Score(player domain.Quote, playerCard domain.Card, opponents []domain.Opponent) Result {
	spread := e.detector.Detect(player, opponents)
	r := Result{
		Policy:            e.policy,
		ArbitrageFound:    spread.Found,
		TooHonest:         TooHonest(player, playerCard),
		BluffingOpponents: domain.BluffingNames(opponents),
	}
	if spread.Found && spread.Profit > 0 {
		r.Profit = spread.Profit
		r.Buyer = spread.Buyer
		r.Seller = spread.Seller
	}
	return r
}

// TooHonest reports whether the quote straddles the value the player's own
// card implies by at least one on each side. Wide quotes count too.
func TooHonest(q domain.Quote, card domain.Card) bool {
	honest := domain.HonestValue(card)
	return q.Bid <= honest-1 && q.Ask >= honest+1
}
