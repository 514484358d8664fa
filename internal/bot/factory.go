package bot

import (
	"fmt"

	"bluffmarket/internal/domain"
)

// NewBrain creates the quoting policy for a difficulty tier.
func NewBrain(difficulty domain.Difficulty, tuning Tuning) (Brain, error) {
	switch difficulty {
	case domain.DifficultyEasy:
		return &TransparentBot{}, nil
	case domain.DifficultyMedium:
		return &MixedBot{Aggressive: AggressiveBot{Tuning: tuning}}, nil
	case domain.DifficultyHard:
		return &AggressiveBot{Tuning: tuning}, nil
	default:
		return nil, fmt.Errorf("new brain: %w: %q", domain.ErrUnknownDifficulty, difficulty)
	}
}
