package bot

import (
	"fmt"
	"math/rand"
)

var bluffNarrations = []string{
	"%s quickly says %s. You think: “Too smooth. They might be bluffing.”",
	"%s posts %s. Their voice is steady, but something feels off.",
	"%s says %s. You wonder: \"Too clean to be real?\"",
}

var straightNarrations = []string{
	"%s says %s. Sounds like they're just doing math.",
	"%s shrugs and offers %s. Honest?",
	"%s mumbles %s. Not sure they’re hiding anything.",
}

// Narrate renders the table talk for an opponent's decision. The template
// pool depends on the bluff flag; the pick within the pool is uniform.
func Narrate(name string, d Decision, rng *rand.Rand) string {
	pool := straightNarrations
	if d.Bluffing {
		pool = bluffNarrations
	}
	return fmt.Sprintf(pool[rng.Intn(len(pool))], name, d.Quote.String())
}
