package market

import (
	"fmt"

	"bluffmarket/internal/domain"
)

// PlayerName labels the player's own quote when it is one side of a spread.
const PlayerName = "you"

// Spread is a detected cross between a buyer and a seller.
type Spread struct {
	Found  bool
	Profit int
	Buyer  string // party whose bid is lifted
	Seller string // party whose ask is hit
}

// Detector finds the most profitable cross under one policy.
type Detector interface {
	Name() string
	Detect(player domain.Quote, opponents []domain.Opponent) Spread
}

// NewDetector returns the detector for a policy.
func NewDetector(p Policy) (Detector, error) {
	switch p {
	case PolicyGlobalBestSpread:
		return GlobalBestSpread{}, nil
	case PolicyPlayerEnabled:
		return PlayerEnabled{}, nil
	default:
		return nil, fmt.Errorf("new detector: %w: %q", ErrUnknownPolicy, p)
	}
}

// GlobalBestSpread pools the player's and all opponents' quotes.
type GlobalBestSpread struct{}

func (GlobalBestSpread) Name() string { return string(PolicyGlobalBestSpread) }

// Detect compares the best bid against the best ask across the pool. Ties
// keep the earliest party, so the player wins ties against opponents.
func (GlobalBestSpread) Detect(player domain.Quote, opponents []domain.Opponent) Spread {
	bestBid, buyer := player.Bid, PlayerName
	bestAsk, seller := player.Ask, PlayerName
	for _, o := range opponents {
		if o.Quote.Bid > bestBid {
			bestBid, buyer = o.Quote.Bid, o.Name
		}
		if o.Quote.Ask < bestAsk {
			bestAsk, seller = o.Quote.Ask, o.Name
		}
	}
	if bestBid <= bestAsk {
		return Spread{}
	}
	return Spread{Found: true, Profit: bestBid - bestAsk, Buyer: buyer, Seller: seller}
}

// PlayerEnabled scans ordered opponent pairs for a seller asking below a
// buyer's bid, and counts a pair only when the player's quote spans it.
type PlayerEnabled struct{}

func (PlayerEnabled) Name() string { return string(PolicyPlayerEnabled) }

func (PlayerEnabled) Detect(player domain.Quote, opponents []domain.Opponent) Spread {
	var best Spread
	for _, seller := range opponents {
		for _, buyer := range opponents {
			if seller.Quote.Ask >= buyer.Quote.Bid {
				continue
			}
			if player.Bid > seller.Quote.Ask || player.Ask < buyer.Quote.Bid {
				continue
			}
			if profit := buyer.Quote.Bid - seller.Quote.Ask; profit > best.Profit {
				best = Spread{Found: true, Profit: profit, Buyer: buyer.Name, Seller: seller.Name}
			}
		}
	}
	return best
}
