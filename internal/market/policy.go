package market

import (
	"errors"
	"fmt"
	"strings"
)

// Policy selects how a crossed market is detected.
type Policy string

const (
	// PolicyGlobalBestSpread pools every quote on the table and books the
	// gap between the highest bid and the lowest ask.
	PolicyGlobalBestSpread Policy = "global_best_spread"
	// PolicyPlayerEnabled only books opponent-to-opponent crosses that the
	// player's own quote brackets.
	PolicyPlayerEnabled Policy = "player_enabled"
)

// ErrUnknownPolicy is returned for unrecognised policy names.
var ErrUnknownPolicy = errors.New("unknown arbitrage policy")

// ParsePolicy normalizes a policy name; blank selects the default.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyGlobalBestSpread, nil
	case PolicyGlobalBestSpread, PolicyPlayerEnabled:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}
