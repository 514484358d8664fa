package app

import "bluffmarket/internal/domain"

// EventKind identifies emitted session events for the presentation layer.
type EventKind string

const (
	EventSessionStarted  EventKind = "session_started"
	EventRoundDealt      EventKind = "round_dealt"
	EventRoundResolved   EventKind = "round_resolved"
	EventPacingRequested EventKind = "pacing_requested"
	EventGameOver        EventKind = "game_over"
	EventSessionReset    EventKind = "session_reset"
)

// Event is an app event the presentation layer renders or acts on.
type Event struct {
	Kind    EventKind
	Payload any
}

type SessionStartedPayload struct {
	SessionID  string
	PlayerName string
	Difficulty domain.Difficulty
}

type RoundDealtPayload struct {
	View domain.RoundView
}

type RoundResolvedPayload struct {
	Outcome domain.RoundOutcome
}

// PacingRequestedPayload asks the caller to invoke Service.Advance with the
// command's token once the delay has elapsed.
type PacingRequestedPayload struct {
	Command domain.PacingCommand
}

type GameOverPayload struct {
	SessionID  string
	PlayerName string
	FinalScore int
	Receipt    string // empty when receipts are disabled
}

type SessionResetPayload struct {
	SessionID string
}
