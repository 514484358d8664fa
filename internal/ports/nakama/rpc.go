package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateMatchResponse is the payload returned to clients after opening a table.
type CreateMatchResponse struct {
	MatchID string `json:"match_id"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcCreateMatch, rpcCreateMatch)
}

// rpcCreateMatch always opens a new match. Every table seats a single human,
// so there is nothing to search for.
func rpcCreateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	matchID, err := nk.MatchCreate(ctx, MatchNameBluffMarket, map[string]interface{}{})
	if err != nil {
		logger.Error("CreateMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	logger.Info("CreateMatch [User:%s]: Created match %s", userID, matchID)
	b, err := json.Marshal(CreateMatchResponse{MatchID: matchID})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
