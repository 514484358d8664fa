package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"bluffmarket/internal/app"
	"bluffmarket/internal/bot"
	"bluffmarket/internal/config"
	"bluffmarket/internal/domain"
	"bluffmarket/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Tick      int64             `json:"tick"`       // Current tick of the match
	HumanID   string            `json:"human_id"`   // The one player seated at this table, empty until joined
	PacingDue int64             `json:"pacing_due"` // Tick at which the pending pacing command fires, 0 when idle
	Presence  runtime.Presence  `json:"-"`          // Presence of the seated player for targeted messaging
	App       *app.Service      `json:"-"`          // Session use-cases
	Session   *domain.Session   `json:"-"`          // Session played at this table
	Accounts  ports.AccountPort `json:"-"`          // Profile lookups for default player names
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities(identitiesPath); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		config.ApplyRuntimeEnv(&cfg, env)
	}
	svc, err := app.NewServiceFromConfig(nil, cfg)
	if err != nil {
		logger.Warn("MatchInit: Invalid configuration, falling back to defaults: %v", err)
		svc = app.NewService(nil)
	}

	state := &MatchState{
		App:      svc,
		Accounts: NewNakamaAccountAdapter(nk),
	}
	state.Session = svc.NewSession()

	label, err := encodeLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// A table seats one player. The same player may rejoin after a reconnect.
	if matchState.HumanID != "" && matchState.HumanID != presence.GetUserId() {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		if matchState.HumanID != "" && matchState.HumanID != p.GetUserId() {
			logger.Warn("MatchJoin: User %s joined but the seat is taken by %s.", p.GetUserId(), matchState.HumanID)
			continue
		}
		matchState.HumanID = p.GetUserId()
		matchState.Presence = p
		logger.Debug("MatchJoin: User %s seated.", p.GetUserId())
	}

	mh.updateLabel(matchState, dispatcher, logger)

	// Bring a rejoining client up to date.
	mh.sendToPlayer(matchState, dispatcher, logger, OpRoundDealt, viewFields(matchState.App.CurrentRoundView(matchState.Session)))

	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		if p.GetUserId() == matchState.HumanID {
			logger.Info("MatchLeave: User %s left, terminating match.", p.GetUserId())
			return nil
		}
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		if msg.GetUserId() != matchState.HumanID {
			logger.Warn("MatchLoop: Ignoring message from unseated user %s", msg.GetUserId())
			continue
		}
		switch msg.GetOpCode() {
		case OpStartSession:
			mh.handleStartSession(ctx, matchState, dispatcher, logger, msg)
		case OpSubmitQuote:
			mh.handleSubmitQuote(ctx, matchState, dispatcher, logger, msg)
		case OpResetSession:
			mh.handleResetSession(ctx, matchState, dispatcher, logger)
		case OpRequestHint:
			mh.handleHint(matchState, dispatcher, logger)
		case OpRequestView:
			mh.sendToPlayer(matchState, dispatcher, logger, OpRoundDealt, viewFields(matchState.App.CurrentRoundView(matchState.Session)))
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processPacing(ctx, matchState, dispatcher, logger)

	return matchState
}

// processPacing fires the pending pacing command once its tick arrives.
func (mh *matchHandler) processPacing(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	pending := state.Session.Pending
	if pending == nil || state.PacingDue == 0 || state.Tick < state.PacingDue {
		return
	}
	state.PacingDue = 0

	events, err := state.App.Advance(state.Session, pending.Token)
	if err != nil {
		logger.Debug("Pacing: Dropping command %d: %v", pending.Token, err)
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleStartSession(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	fields, err := decodeFields(msg.GetData())
	if err != nil {
		logger.Warn("StartSession: Invalid payload from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, ErrCodeBadPayload, "payload must be a JSON object")
		return
	}

	name := strings.TrimSpace(fields["player_name"].GetStringValue())
	if name == "" && state.Accounts != nil {
		if displayName, err := state.Accounts.DisplayName(ctx, msg.GetUserId()); err != nil {
			logger.Warn("StartSession: Could not look up display name for %s: %v", msg.GetUserId(), err)
		} else {
			name = displayName
		}
	}
	difficulty := domain.Difficulty(fields["difficulty"].GetStringValue())

	events, err := state.App.StartSession(state.Session, name, difficulty)
	if err != nil {
		logger.Warn("StartSession: Rejected for %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
	logger.Info("StartSession: Session %s started for %s (%s).", state.Session.ID, state.Session.PlayerName, state.Session.Difficulty)
}

func (mh *matchHandler) handleSubmitQuote(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	fields, err := decodeFields(msg.GetData())
	if err != nil {
		logger.Warn("SubmitQuote: Invalid payload from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, ErrCodeBadPayload, "payload must be a JSON object")
		return
	}

	_, events, err := state.App.SubmitQuoteText(state.Session, priceText(fields["bid"]), priceText(fields["ask"]))
	if err != nil {
		logger.Warn("SubmitQuote: Rejected for %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleResetSession(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	state.PacingDue = 0
	for _, ev := range state.App.ResetSession(state.Session) {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
	logger.Debug("ResetSession: Session %s back to setup.", state.Session.ID)
}

func (mh *matchHandler) handleHint(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	hint, err := state.App.Hint(state.Session)
	if err != nil {
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}
	mh.sendToPlayer(state, dispatcher, logger, OpHint, hintFields(hint))
}

func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var fields map[string]interface{}

	switch ev.Kind {
	case app.EventSessionStarted:
		opCode = OpSessionStarted
		fields = sessionStartedFields(ev.Payload.(app.SessionStartedPayload))
	case app.EventRoundDealt:
		opCode = OpRoundDealt
		fields = viewFields(ev.Payload.(app.RoundDealtPayload).View)
	case app.EventRoundResolved:
		opCode = OpRoundResolved
		fields = outcomeFields(ev.Payload.(app.RoundResolvedPayload).Outcome)
	case app.EventPacingRequested:
		// Scheduled on the match clock, not sent to the client.
		cmd := ev.Payload.(app.PacingRequestedPayload).Command
		state.PacingDue = state.Tick + pacingTicks(cmd.Delay)
		logger.Debug("Pacing: Command %d (%s) due at tick %d", cmd.Token, cmd.Next, state.PacingDue)
		return
	case app.EventGameOver:
		opCode = OpGameOver
		p := ev.Payload.(app.GameOverPayload)
		fields = gameOverFields(p)
		logger.Info("GameOver: Session %s finished with score %d", p.SessionID, p.FinalScore)
	case app.EventSessionReset:
		opCode = OpSessionReset
		fields = map[string]interface{}{"session_id": ev.Payload.(app.SessionResetPayload).SessionID}
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := encodeFields(fields)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}
	dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true)
}

// sendToPlayer sends a message to the seated player only.
func (mh *matchHandler) sendToPlayer(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, fields map[string]interface{}) {
	if state.Presence == nil {
		logger.Warn("Cannot send op %d: no player seated", opCode)
		return
	}
	bytes, err := encodeFields(fields)
	if err != nil {
		logger.Error("Failed to marshal op %d: %v", opCode, err)
		return
	}
	dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{state.Presence}, nil, true)
}

// sendError sends an error event to the seated player.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	mh.sendToPlayer(state, dispatcher, logger, OpGameError, errorFields(code, message))
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuote):
		return ErrCodeInvalidQuote
	case errors.Is(err, app.ErrGameOver):
		return ErrCodeGameOver
	case errors.Is(err, app.ErrRoundNotInProgress), errors.Is(err, app.ErrNotAwaitingSetup):
		return ErrCodeWrongPhase
	case errors.Is(err, domain.ErrUnknownDifficulty):
		return ErrCodeBadSetup
	default:
		return ErrCodeInternal
	}
}

// pacingTicks converts a delay to match ticks, never less than one.
func pacingTicks(d time.Duration) int64 {
	ticks := int64(math.Ceil(d.Seconds() * TickRate))
	if ticks < 1 {
		return 1
	}
	return ticks
}

func encodeLabel(state *MatchState) (string, error) {
	label := domain.ComputeLabel(state.Session, state.HumanID != "")
	b, err := json.Marshal(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
