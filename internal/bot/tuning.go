package bot

import (
	"errors"
	"fmt"
)

// Tuning parameterizes the aggressive quoting policy.
type Tuning struct {
	// BluffProbability is the chance per round that the opponent bluffs.
	BluffProbability float64
	// BluffShift is how far a bluff moves the quote away from fair value.
	BluffShift float64
	// NoiseAmplitude bounds the symmetric jitter added to every quote.
	NoiseAmplitude float64
	// SkewFactor scales how strongly quotes are pulled toward the deck average.
	SkewFactor float64
}

// DefaultTuning mirrors the behaviour of the hard opponents in the browser game.
var DefaultTuning = Tuning{
	BluffProbability: 0.7,
	BluffShift:       6,
	NoiseAmplitude:   2,
	SkewFactor:       0.5,
}

// Validate rejects tunings that would make the policy meaningless.
func (t Tuning) Validate() error {
	var errs []error
	if t.BluffProbability < 0 || t.BluffProbability > 1 {
		errs = append(errs, fmt.Errorf("bluff probability %v outside [0,1]", t.BluffProbability))
	}
	if t.BluffShift < 0 {
		errs = append(errs, fmt.Errorf("bluff shift %v must not be negative", t.BluffShift))
	}
	if t.NoiseAmplitude < 0 {
		errs = append(errs, fmt.Errorf("noise amplitude %v must not be negative", t.NoiseAmplitude))
	}
	if t.SkewFactor < 0 || t.SkewFactor > 1 {
		errs = append(errs, fmt.Errorf("skew factor %v outside [0,1]", t.SkewFactor))
	}
	return errors.Join(errs...)
}
