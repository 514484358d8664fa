package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Card is a single numeric card value from DeckValues.
type Card int

// Phase represents the lifecycle stage of a session.
type Phase string

const (
	// PhaseAwaitingSetup is the pre-game state where name and difficulty are chosen.
	PhaseAwaitingSetup Phase = "awaiting_setup"
	// PhaseRoundInProgress is waiting for the player's quote.
	PhaseRoundInProgress Phase = "round_in_progress"
	// PhaseRoundResolved has scored a quote and is pausing before the next round.
	PhaseRoundResolved Phase = "round_resolved"
	// PhaseGameOver holds the final score until reset.
	PhaseGameOver Phase = "game_over"
)

// Difficulty selects the opponents' quoting behaviour.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ErrUnknownDifficulty is returned for difficulty names outside easy/medium/hard.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty normalizes a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// Opponent is a computer-controlled party for a single round.
type Opponent struct {
	Name      string
	Card      Card
	Quote     Quote
	Bluffing  bool
	Strategy  string
	Narration string
}

// Round holds everything dealt for the round currently on the table.
type Round struct {
	Index      int
	PlayerCard Card
	Opponents  []Opponent
}

// RoundOutcome is the result of scoring one player submission.
type RoundOutcome struct {
	Round                int      `json:"round"`
	PlayerQuote          Quote    `json:"player_quote"`
	ArbitrageFound       bool     `json:"arbitrage_found"`
	Profit               int      `json:"profit"`
	TooHonest            bool     `json:"too_honest"`
	BluffingOpponents    []string `json:"bluffing_opponents"`
	Buyer                string   `json:"buyer,omitempty"`
	Seller               string   `json:"seller,omitempty"`
	CumulativeScoreAfter int      `json:"cumulative_score_after"`
	IsFinalRound         bool     `json:"is_final_round"`
}

// OpponentQuoteView is the public part of an opponent: the card stays hidden.
type OpponentQuoteView struct {
	Name      string `json:"name"`
	Bid       int    `json:"bid"`
	Ask       int    `json:"ask"`
	Narration string `json:"narration"`
}

// RoundView is the snapshot handed to the presentation layer.
type RoundView struct {
	Phase           Phase               `json:"phase"`
	YourCard        Card                `json:"your_card"`
	OpponentQuotes  []OpponentQuoteView `json:"opponent_quotes"`
	RoundIndex      int                 `json:"round_index"`
	TotalRounds     int                 `json:"total_rounds"`
	CumulativeScore int                 `json:"cumulative_score"`
}

// Session is the state of one player's game, owned by whoever drives it.
type Session struct {
	ID         string
	Phase      Phase
	PlayerName string
	Difficulty Difficulty

	Round       int // 1-based, never above TotalRounds
	TotalRounds int
	Score       int

	Current     *Round
	LastOutcome *RoundOutcome

	// Generation increments on every start, resolve and reset so that pacing
	// commands already applied or issued for an earlier game are stale.
	Generation uint64
	Pending    *PacingCommand
}

// NextStep is what a pacing command will do when it fires.
type NextStep string

const (
	NextRound    NextStep = "next_round"
	NextGameOver NextStep = "game_over"
)

// PacingCommand asks the presentation layer to call back after Delay.
type PacingCommand struct {
	Token uint64
	Delay time.Duration
	Next  NextStep
}

// PhaseLabel returns the match label phase for a session.
func (s *Session) PhaseLabel() string {
	if s == nil {
		return string(PhaseAwaitingSetup)
	}
	return string(s.Phase)
}
