package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidQuote is the single user-facing error class for rejected submissions.
var ErrInvalidQuote = errors.New("invalid quote")

// Quote is a bid/ask pair. A valid quote always has Bid < Ask.
type Quote struct {
	Bid int `json:"bid"`
	Ask int `json:"ask"`
}

// NewQuote validates and builds a quote.
func NewQuote(bid, ask int) (Quote, error) {
	if bid >= ask {
		return Quote{}, fmt.Errorf("%w: bid %d must be less than ask %d", ErrInvalidQuote, bid, ask)
	}
	return Quote{Bid: bid, Ask: ask}, nil
}

// ParseQuote builds a quote from raw player input.
func ParseQuote(bidText, askText string) (Quote, error) {
	bidText = strings.TrimSpace(bidText)
	askText = strings.TrimSpace(askText)
	if bidText == "" || askText == "" {
		return Quote{}, fmt.Errorf("%w: both a bid and an ask are required", ErrInvalidQuote)
	}
	bid, err := parsePrice("bid", bidText)
	if err != nil {
		return Quote{}, err
	}
	ask, err := parsePrice("ask", askText)
	if err != nil {
		return Quote{}, err
	}
	return NewQuote(bid, ask)
}

func parsePrice(field, text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q must be a whole number", ErrInvalidQuote, field, text)
	}
	return n, nil
}

// Spread returns the quote width.
func (q Quote) Spread() int { return q.Ask - q.Bid }

// Valid reports whether the bid is strictly below the ask.
func (q Quote) Valid() bool { return q.Bid < q.Ask }

func (q Quote) String() string {
	return fmt.Sprintf("%d–%d", q.Bid, q.Ask)
}

// ExpectedTotal is the market fair value implied by knowing only this card.
func ExpectedTotal(c Card) float64 {
	return BaseExpectedTotal - DeckAverage + float64(c)
}

// HonestValue is the whole-number fair value a card implies.
func HonestValue(c Card) int {
	return int(math.Floor(ExpectedTotal(c)))
}

// FloorInt floors a price to the integer grid quotes live on.
func FloorInt(v float64) int {
	return int(math.Floor(v))
}
