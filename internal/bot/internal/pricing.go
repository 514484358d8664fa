// Package internal holds the pricing arithmetic shared by the opponent brains.
package internal

import "math"

// Band builds a bid/ask band of the given half width around center. Both
// sides are floored, so the width is always exactly 2*halfWidth.
func Band(center float64, halfWidth int) (bid, ask int) {
	bid = int(math.Floor(center - float64(halfWidth)))
	ask = int(math.Floor(center + float64(halfWidth)))
	return bid, ask
}

// SkewCorrection pushes low cards up and high cards down toward the deck
// average so the quote does not map one-to-one onto the card.
func SkewCorrection(card, deckAverage, factor float64) float64 {
	return factor * (deckAverage - card)
}

// Noise maps a uniform sample u in [0,1) onto [-amplitude, amplitude).
func Noise(u, amplitude float64) float64 {
	return (u*2 - 1) * amplitude
}

// BluffDirection returns the sign of the bluff shift: cards at or above the
// deck average pretend to be low, cards below it pretend to be high.
func BluffDirection(card, deckAverage float64) float64 {
	if card >= deckAverage {
		return -1
	}
	return 1
}
