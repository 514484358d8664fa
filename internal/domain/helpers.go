package domain

// LabelPayload holds the values advertised in a match label.
type LabelPayload struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// GameName identifies this game in match labels.
const GameName = "bluffmarket"

// ComputeLabel derives the advertised label from session state. A match is
// open only while no player has been seated.
func ComputeLabel(s *Session, seated bool) LabelPayload {
	return LabelPayload{Open: !seated, Game: GameName, Phase: s.PhaseLabel()}
}

// BluffingNames lists the opponents that skewed their quote this round.
func BluffingNames(opponents []Opponent) []string {
	names := make([]string, 0, len(opponents))
	for _, o := range opponents {
		if o.Bluffing {
			names = append(names, o.Name)
		}
	}
	return names
}

// Quotes returns the opponents' quotes in seat order.
func Quotes(opponents []Opponent) []Quote {
	out := make([]Quote, len(opponents))
	for i, o := range opponents {
		out[i] = o.Quote
	}
	return out
}
