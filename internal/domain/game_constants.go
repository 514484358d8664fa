package domain

const (
	// TotalRounds is the fixed number of rounds in one session.
	TotalRounds = 5
	// OpponentCount is the number of computer-controlled opponents seated each round.
	OpponentCount = 3
	// CardsPerRound is one card for the player plus one per opponent.
	CardsPerRound = OpponentCount + 1

	// DeckAverage is the mean value of DeckValues.
	DeckAverage = 7.65
	// BaseExpectedTotal is the combined value of four average cards in an honest market.
	BaseExpectedTotal = 61.2

	// DefaultPlayerName is used when the player leaves the name blank.
	DefaultPlayerName = "You"
)

// DeckValues is the fixed card set every round is dealt from.
var DeckValues = [...]Card{-10, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 20}
