package nakama

const (
	// RpcCreateMatch is the Nakama RPC id clients call to open a fresh table.
	RpcCreateMatch = "bluff_create_match"

	// MatchNameBluffMarket is the authoritative match handler name registered with Nakama.
	MatchNameBluffMarket = "bluff_market"

	// TickRate is the number of match loop ticks per second.
	TickRate = 10

	configPath     = "data/bluffmarket.toml"
	identitiesPath = "data/bot_identities.json"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartSession int64 = 1
	OpSubmitQuote  int64 = 2
	OpResetSession int64 = 3
	OpRequestHint  int64 = 4
	OpRequestView  int64 = 5

	// Server -> Client events
	OpRoundDealt     int64 = 101
	OpRoundResolved  int64 = 102
	OpGameOver       int64 = 103
	OpSessionReset   int64 = 104
	OpHint           int64 = 105
	OpSessionStarted int64 = 106
	OpGameError      int64 = 190
)

// Error codes carried by OpGameError.
const (
	ErrCodeBadPayload   = 1
	ErrCodeInvalidQuote = 2
	ErrCodeWrongPhase   = 3
	ErrCodeGameOver     = 4
	ErrCodeBadSetup     = 5
	ErrCodeInternal     = 6
)
