package nakama

import (
	"strconv"

	"bluffmarket/internal/app"
	"bluffmarket/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var marshalOptions = protojson.MarshalOptions{EmitUnpopulated: true}

// decodeFields parses a JSON object payload. An empty payload has no fields.
func decodeFields(data []byte) (map[string]*structpb.Value, error) {
	if len(data) == 0 {
		return map[string]*structpb.Value{}, nil
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st.GetFields(), nil
}

func encodeFields(fields map[string]interface{}) ([]byte, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return marshalOptions.Marshal(st)
}

// priceText returns a price field as typed by the client. Numbers are
// rendered without exponent so fractional input still fails validation.
func priceText(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	default:
		return ""
	}
}

func viewFields(v domain.RoundView) map[string]interface{} {
	quotes := make([]interface{}, 0, len(v.OpponentQuotes))
	for _, q := range v.OpponentQuotes {
		quotes = append(quotes, map[string]interface{}{
			"name":      q.Name,
			"bid":       q.Bid,
			"ask":       q.Ask,
			"narration": q.Narration,
		})
	}
	return map[string]interface{}{
		"phase":            string(v.Phase),
		"your_card":        int(v.YourCard),
		"opponent_quotes":  quotes,
		"round_index":      v.RoundIndex,
		"total_rounds":     v.TotalRounds,
		"cumulative_score": v.CumulativeScore,
	}
}

func outcomeFields(o domain.RoundOutcome) map[string]interface{} {
	bluffing := make([]interface{}, 0, len(o.BluffingOpponents))
	for _, name := range o.BluffingOpponents {
		bluffing = append(bluffing, name)
	}
	return map[string]interface{}{
		"round":              o.Round,
		"player_bid":         o.PlayerQuote.Bid,
		"player_ask":         o.PlayerQuote.Ask,
		"arbitrage_found":    o.ArbitrageFound,
		"profit":             o.Profit,
		"too_honest":         o.TooHonest,
		"bluffing_opponents": bluffing,
		"buyer":              o.Buyer,
		"seller":             o.Seller,
		"cumulative_score":   o.CumulativeScoreAfter,
		"is_final_round":     o.IsFinalRound,
	}
}

func hintFields(h app.Hint) map[string]interface{} {
	return map[string]interface{}{
		"card":        int(h.Card),
		"expected":    h.Expected,
		"neutral_bid": h.NeutralBid,
		"neutral_ask": h.NeutralAsk,
	}
}

func gameOverFields(p app.GameOverPayload) map[string]interface{} {
	return map[string]interface{}{
		"session_id":  p.SessionID,
		"player_name": p.PlayerName,
		"score":       p.FinalScore,
		"receipt":     p.Receipt,
	}
}

func sessionStartedFields(p app.SessionStartedPayload) map[string]interface{} {
	return map[string]interface{}{
		"session_id":  p.SessionID,
		"player_name": p.PlayerName,
		"difficulty":  string(p.Difficulty),
	}
}

func errorFields(code int, message string) map[string]interface{} {
	return map[string]interface{}{
		"code":    code,
		"message": message,
	}
}
