package nakama

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"bluffmarket/internal/app"
	"bluffmarket/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{opCode: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) opCodes() []int64 {
	out := make([]int64, 0, len(md.messages))
	for _, m := range md.messages {
		out = append(out, m.opCode)
	}
	return out
}

func (md *mockDispatcher) last(t *testing.T, opCode int64) map[string]*structpb.Value {
	t.Helper()
	for i := len(md.messages) - 1; i >= 0; i-- {
		if md.messages[i].opCode == opCode {
			st := &structpb.Struct{}
			if err := protojson.Unmarshal(md.messages[i].data, st); err != nil {
				t.Fatalf("Failed to unmarshal op %d: %v", opCode, err)
			}
			return st.GetFields()
		}
	}
	t.Fatalf("No message with op %d in %v", opCode, md.opCodes())
	return nil
}

func (md *mockDispatcher) reset() { md.messages = nil }

// fakePresence overrides only what the handler reads.
type fakePresence struct {
	runtime.Presence
	userID string
}

func (p fakePresence) GetUserId() string { return p.userID }

type fakeMatchData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (m fakeMatchData) GetUserId() string { return m.userID }
func (m fakeMatchData) GetOpCode() int64  { return m.opCode }
func (m fakeMatchData) GetData() []byte   { return m.data }

type mockAccounts struct {
	name string
	err  error
}

func (m mockAccounts) DisplayName(ctx context.Context, userID string) (string, error) {
	return m.name, m.err
}

func newTestState(seed int64) *MatchState {
	svc := app.NewService(rand.New(rand.NewSource(seed)))
	return &MatchState{App: svc, Session: svc.NewSession()}
}

func seat(t *testing.T, handler *matchHandler, state *MatchState, dispatcher *mockDispatcher, userID string) {
	t.Helper()
	handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{fakePresence{userID: userID}})
	if state.HumanID != userID {
		t.Fatalf("HumanID = %q, want %q", state.HumanID, userID)
	}
}

func loop(handler *matchHandler, state *MatchState, dispatcher *mockDispatcher, tick int64, msgs ...runtime.MatchData) interface{} {
	return handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, msgs)
}

func msg(userID string, opCode int64, data string) runtime.MatchData {
	return fakeMatchData{userID: userID, opCode: opCode, data: []byte(data)}
}

func TestMatchJoinAttempt_SingleHuman(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestState(1)

	if _, ok, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, fakePresence{userID: "user-1"}, nil); !ok {
		t.Fatalf("Expected first player to be accepted")
	}
	seat(t, handler, state, dispatcher, "user-1")

	tests := []struct {
		name   string
		userID string
		want   bool
	}{
		{name: "SecondHuman", userID: "user-2", want: false},
		{name: "Rejoin", userID: "user-1", want: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, ok, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, fakePresence{userID: test.userID}, nil)
			if ok != test.want {
				t.Fatalf("join attempt = %t, want %t", ok, test.want)
			}
		})
	}
}

func TestMatchJoin_UpdatesLabelAndSendsView(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestState(1)

	seat(t, handler, state, dispatcher, "user-1")

	if dispatcher.labelUpdates != 1 {
		t.Fatalf("label updates = %d, want 1", dispatcher.labelUpdates)
	}
	if want := `{"open":false,"game":"bluffmarket","phase":"awaiting_setup"}`; dispatcher.lastLabel != want {
		t.Fatalf("label = %s, want %s", dispatcher.lastLabel, want)
	}
	view := dispatcher.last(t, OpRoundDealt)
	if view["phase"].GetStringValue() != string(domain.PhaseAwaitingSetup) {
		t.Fatalf("view phase = %v", view["phase"])
	}
	if got := dispatcher.messages[0].presences; len(got) != 1 || got[0].GetUserId() != "user-1" {
		t.Fatalf("view should be sent to the seated player only")
	}
}

func TestMatchLeave_TerminatesWhenPlayerLeaves(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestState(1)
	seat(t, handler, state, dispatcher, "user-1")

	if got := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{fakePresence{userID: "user-2"}}); got == nil {
		t.Fatalf("Unrelated leave should not terminate the match")
	}
	if got := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{fakePresence{userID: "user-1"}}); got != nil {
		t.Fatalf("Expected nil state when the player leaves")
	}
}

func TestMatchLoop_PlaysRoundWithPacing(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestState(42)
	seat(t, handler, state, dispatcher, "user-1")
	dispatcher.reset()

	loop(handler, state, dispatcher, 1, msg("user-1", OpStartSession, `{"player_name":"Ada","difficulty":"hard"}`))
	codes := dispatcher.opCodes()
	if len(codes) != 2 || codes[0] != OpSessionStarted || codes[1] != OpRoundDealt {
		t.Fatalf("op codes = %v, want [%d %d]", codes, OpSessionStarted, OpRoundDealt)
	}
	view := dispatcher.last(t, OpRoundDealt)
	if n := len(view["opponent_quotes"].GetListValue().GetValues()); n != domain.OpponentCount {
		t.Fatalf("opponent quotes = %d, want %d", n, domain.OpponentCount)
	}
	if state.Session.PlayerName != "Ada" {
		t.Fatalf("player name = %q", state.Session.PlayerName)
	}

	dispatcher.reset()
	loop(handler, state, dispatcher, 2, msg("user-1", OpSubmitQuote, `{"bid":"40","ask":80}`))
	outcome := dispatcher.last(t, OpRoundResolved)
	if outcome["round"].GetNumberValue() != 1 || outcome["player_bid"].GetNumberValue() != 40 {
		t.Fatalf("outcome = %v", outcome)
	}
	wantDue := int64(2) + pacingTicks(app.DefaultPacingDelay)
	if state.PacingDue != wantDue {
		t.Fatalf("pacing due = %d, want %d", state.PacingDue, wantDue)
	}

	dispatcher.reset()
	loop(handler, state, dispatcher, wantDue-1)
	if len(dispatcher.messages) != 0 {
		t.Fatalf("Expected no messages before pacing is due, got %v", dispatcher.opCodes())
	}
	loop(handler, state, dispatcher, wantDue)
	view = dispatcher.last(t, OpRoundDealt)
	if view["round_index"].GetNumberValue() != 2 {
		t.Fatalf("round index = %v, want 2", view["round_index"])
	}
	if state.PacingDue != 0 || state.Session.Phase != domain.PhaseRoundInProgress {
		t.Fatalf("state after pacing = due %d phase %s", state.PacingDue, state.Session.Phase)
	}
}

func TestMatchLoop_FullGameSendsGameOver(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestState(5)
	seat(t, handler, state, dispatcher, "user-1")

	tick := int64(1)
	loop(handler, state, dispatcher, tick, msg("user-1", OpStartSession, `{"difficulty":"easy"}`))
	for i := 0; i < domain.TotalRounds; i++ {
		tick++
		loop(handler, state, dispatcher, tick, msg("user-1", OpSubmitQuote, `{"bid":30,"ask":90}`))
		tick = state.PacingDue
		loop(handler, state, dispatcher, tick)
	}

	over := dispatcher.last(t, OpGameOver)
	if int(over["score"].GetNumberValue()) != state.Session.Score {
		t.Fatalf("game over score = %v, want %d", over["score"], state.Session.Score)
	}
	if state.Session.Phase != domain.PhaseGameOver {
		t.Fatalf("phase = %s, want game_over", state.Session.Phase)
	}

	dispatcher.reset()
	loop(handler, state, dispatcher, tick+1, msg("user-1", OpSubmitQuote, `{"bid":30,"ask":90}`))
	if code := dispatcher.last(t, OpGameError)["code"].GetNumberValue(); code != ErrCodeGameOver {
		t.Fatalf("error code = %v, want %d", code, ErrCodeGameOver)
	}
}

func TestMatchLoop_RejectsBadQuotes(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantCode int
	}{
		{name: "Fractional", payload: `{"bid":59.5,"ask":62}`, wantCode: ErrCodeInvalidQuote},
		{name: "MissingAsk", payload: `{"bid":59}`, wantCode: ErrCodeInvalidQuote},
		{name: "Inverted", payload: `{"bid":"64","ask":"59"}`, wantCode: ErrCodeInvalidQuote},
		{name: "NotJSON", payload: `bid=59`, wantCode: ErrCodeBadPayload},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := &matchHandler{}
			dispatcher := &mockDispatcher{}
			state := newTestState(9)
			seat(t, handler, state, dispatcher, "user-1")
			loop(handler, state, dispatcher, 1, msg("user-1", OpStartSession, `{"difficulty":"medium"}`))
			dispatcher.reset()

			loop(handler, state, dispatcher, 2, msg("user-1", OpSubmitQuote, test.payload))
			if code := dispatcher.last(t, OpGameError)["code"].GetNumberValue(); int(code) != test.wantCode {
				t.Fatalf("error code = %v, want %d", code, test.wantCode)
			}
			if state.Session.Phase != domain.PhaseRoundInProgress || state.PacingDue != 0 {
				t.Fatalf("rejected quote changed state: phase %s due %d", state.Session.Phase, state.PacingDue)
			}
		})
	}
}

func TestMatchLoop_ResetMakesPacingStale(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestState(3)
	seat(t, handler, state, dispatcher, "user-1")

	loop(handler, state, dispatcher, 1, msg("user-1", OpStartSession, `{"difficulty":"easy"}`))
	loop(handler, state, dispatcher, 2, msg("user-1", OpSubmitQuote, `{"bid":50,"ask":70}`))
	due := state.PacingDue

	dispatcher.reset()
	loop(handler, state, dispatcher, 3, msg("user-1", OpResetSession, ``))
	dispatcher.last(t, OpSessionReset)
	if state.PacingDue != 0 {
		t.Fatalf("pacing due = %d after reset, want 0", state.PacingDue)
	}

	dispatcher.reset()
	loop(handler, state, dispatcher, due+1)
	if len(dispatcher.messages) != 0 {
		t.Fatalf("stale pacing produced messages: %v", dispatcher.opCodes())
	}
	if state.Session.Phase != domain.PhaseAwaitingSetup {
		t.Fatalf("phase = %s, want awaiting_setup", state.Session.Phase)
	}
}

func TestMatchLoop_HintAndView(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestState(4)
	seat(t, handler, state, dispatcher, "user-1")

	dispatcher.reset()
	loop(handler, state, dispatcher, 1, msg("user-1", OpRequestHint, ``))
	if code := dispatcher.last(t, OpGameError)["code"].GetNumberValue(); code != ErrCodeWrongPhase {
		t.Fatalf("hint before start code = %v, want %d", code, ErrCodeWrongPhase)
	}

	loop(handler, state, dispatcher, 2, msg("user-1", OpStartSession, `{"difficulty":"easy"}`))
	loop(handler, state, dispatcher, 3, msg("user-1", OpRequestHint, ``))
	hint := dispatcher.last(t, OpHint)
	if int(hint["card"].GetNumberValue()) != int(state.Session.Current.PlayerCard) {
		t.Fatalf("hint card = %v, want %d", hint["card"], state.Session.Current.PlayerCard)
	}

	dispatcher.reset()
	loop(handler, state, dispatcher, 4, msg("user-1", OpRequestView, ``))
	first := dispatcher.messages[0].data
	loop(handler, state, dispatcher, 5, msg("user-1", OpRequestView, ``))
	if string(first) != string(dispatcher.messages[1].data) {
		t.Fatalf("repeated views differ")
	}
}

func TestMatchLoop_IgnoresUnseatedUsers(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestState(6)
	seat(t, handler, state, dispatcher, "user-1")
	dispatcher.reset()

	loop(handler, state, dispatcher, 1, msg("user-2", OpStartSession, `{"difficulty":"easy"}`))
	if state.Session.Phase != domain.PhaseAwaitingSetup || len(dispatcher.messages) != 0 {
		t.Fatalf("message from unseated user was processed")
	}
}

func TestStartSession_DisplayNameFallback(t *testing.T) {
	tests := []struct {
		name     string
		accounts mockAccounts
		want     string
	}{
		{name: "DisplayName", accounts: mockAccounts{name: "Nova"}, want: "Nova"},
		{name: "LookupFails", accounts: mockAccounts{err: errors.New("boom")}, want: domain.DefaultPlayerName},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := &matchHandler{}
			dispatcher := &mockDispatcher{}
			state := newTestState(2)
			state.Accounts = test.accounts
			seat(t, handler, state, dispatcher, "user-1")

			loop(handler, state, dispatcher, 1, msg("user-1", OpStartSession, `{"player_name":" ","difficulty":"easy"}`))
			if state.Session.PlayerName != test.want {
				t.Fatalf("player name = %q, want %q", state.Session.PlayerName, test.want)
			}
		})
	}
}

func TestPriceText(t *testing.T) {
	tests := []struct {
		name  string
		value *structpb.Value
		want  string
	}{
		{name: "String", value: structpb.NewStringValue(" 60 "), want: " 60 "},
		{name: "Whole", value: structpb.NewNumberValue(60), want: "60"},
		{name: "Fraction", value: structpb.NewNumberValue(59.5), want: "59.5"},
		{name: "Negative", value: structpb.NewNumberValue(-3), want: "-3"},
		{name: "Missing", value: nil, want: ""},
		{name: "Bool", value: structpb.NewBoolValue(true), want: ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := priceText(test.value); got != test.want {
				t.Fatalf("priceText() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestPacingTicks(t *testing.T) {
	tests := []struct {
		delay time.Duration
		want  int64
	}{
		{delay: 3 * time.Second, want: 30},
		{delay: 3500 * time.Millisecond, want: 35},
		{delay: 50 * time.Millisecond, want: 1},
		{delay: 0, want: 1},
	}
	for _, test := range tests {
		if got := pacingTicks(test.delay); got != test.want {
			t.Fatalf("pacingTicks(%v) = %d, want %d", test.delay, got, test.want)
		}
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: domain.ErrInvalidQuote, want: ErrCodeInvalidQuote},
		{err: app.ErrGameOver, want: ErrCodeGameOver},
		{err: app.ErrRoundNotInProgress, want: ErrCodeWrongPhase},
		{err: app.ErrNotAwaitingSetup, want: ErrCodeWrongPhase},
		{err: domain.ErrUnknownDifficulty, want: ErrCodeBadSetup},
		{err: errors.New("other"), want: ErrCodeInternal},
	}
	for _, test := range tests {
		if got := errorCode(test.err); got != test.want {
			t.Fatalf("errorCode(%v) = %d, want %d", test.err, got, test.want)
		}
	}
}
