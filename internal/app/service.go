package app

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"bluffmarket/internal/bot"
	"bluffmarket/internal/domain"
	"bluffmarket/internal/market"

	"github.com/google/uuid"
)

var (
	ErrNotAwaitingSetup   = errors.New("session already started")
	ErrRoundNotInProgress = errors.New("no round awaiting a quote")
	ErrGameOver           = errors.New("game is over, reset to play again")
	ErrStalePacing        = errors.New("pacing command is stale")
)

// Service contains the session use-cases operating on domain state.
type Service struct {
	rng         *rand.Rand
	engine      *market.Engine
	tuning      bot.Tuning
	names       *bot.NamePool
	pacing      time.Duration
	finalPacing time.Duration
	receipts    *ReceiptService
}

// Option customizes a Service.
type Option func(*Service)

// WithEngine sets the market engine used to score rounds.
func WithEngine(e *market.Engine) Option { return func(s *Service) { s.engine = e } }

// WithTuning sets the aggressive opponents' tuning.
func WithTuning(t bot.Tuning) Option { return func(s *Service) { s.tuning = t } }

// WithNamePool sets the pool opponent names are drawn from.
func WithNamePool(p *bot.NamePool) Option { return func(s *Service) { s.names = p } }

// WithPacing sets the pause before the next round and before game over.
func WithPacing(next, final time.Duration) Option {
	return func(s *Service) {
		s.pacing = next
		s.finalPacing = final
	}
}

// WithReceipts enables signed final-score receipts.
func WithReceipts(r *ReceiptService) Option { return func(s *Service) { s.receipts = r } }

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	engine, _ := market.NewEngine(market.PolicyGlobalBestSpread)
	s := &Service{
		rng:         rng,
		engine:      engine,
		tuning:      bot.DefaultTuning,
		names:       bot.DefaultPool(),
		pacing:      DefaultPacingDelay,
		finalPacing: DefaultFinalPacingDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession returns a session waiting for a name and difficulty.
func (s *Service) NewSession() *domain.Session {
	return &domain.Session{
		ID:          uuid.NewString(),
		Phase:       domain.PhaseAwaitingSetup,
		Round:       1,
		TotalRounds: domain.TotalRounds,
	}
}

// StartSession begins a game for the player and deals the first round.
func (s *Service) StartSession(session *domain.Session, playerName string, difficulty domain.Difficulty) ([]Event, error) {
	if session.Phase != domain.PhaseAwaitingSetup {
		return nil, ErrNotAwaitingSetup
	}
	d, err := domain.ParseDifficulty(string(difficulty))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(playerName)
	if name == "" {
		name = domain.DefaultPlayerName
	}

	session.ID = uuid.NewString()
	session.PlayerName = name
	session.Difficulty = d
	session.Score = 0
	session.Round = 1
	session.TotalRounds = domain.TotalRounds
	session.LastOutcome = nil
	session.Pending = nil
	session.Generation++

	dealt, err := s.dealRound(session)
	if err != nil {
		return nil, err
	}
	events := []Event{{
		Kind:    EventSessionStarted,
		Payload: SessionStartedPayload{SessionID: session.ID, PlayerName: name, Difficulty: d},
	}}
	return append(events, dealt), nil
}

// dealRound draws fresh cards and names and has each opponent quote.
func (s *Service) dealRound(session *domain.Session) (Event, error) {
	cards, err := domain.Draw(s.rng, domain.CardsPerRound)
	if err != nil {
		return Event{}, err
	}
	names, err := s.names.Draw(s.rng, domain.OpponentCount)
	if err != nil {
		return Event{}, err
	}
	brain, err := bot.NewBrain(session.Difficulty, s.tuning)
	if err != nil {
		return Event{}, err
	}

	opponents := make([]domain.Opponent, 0, domain.OpponentCount)
	for i, name := range names {
		agent := &bot.Agent{Name: name, Strategy: brain}
		opponents = append(opponents, agent.Play(cards[i+1], s.rng))
	}

	session.Current = &domain.Round{
		Index:      session.Round,
		PlayerCard: cards[0],
		Opponents:  opponents,
	}
	session.Phase = domain.PhaseRoundInProgress
	return Event{Kind: EventRoundDealt, Payload: RoundDealtPayload{View: s.CurrentRoundView(session)}}, nil
}

// CurrentRoundView snapshots what the player may see. It never mutates the session.
func (s *Service) CurrentRoundView(session *domain.Session) domain.RoundView {
	view := domain.RoundView{
		Phase:           session.Phase,
		RoundIndex:      session.Round,
		TotalRounds:     session.TotalRounds,
		CumulativeScore: session.Score,
		OpponentQuotes:  []domain.OpponentQuoteView{},
	}
	if session.Current == nil {
		return view
	}
	view.YourCard = session.Current.PlayerCard
	for _, o := range session.Current.Opponents {
		view.OpponentQuotes = append(view.OpponentQuotes, domain.OpponentQuoteView{
			Name:      o.Name,
			Bid:       o.Quote.Bid,
			Ask:       o.Quote.Ask,
			Narration: o.Narration,
		})
	}
	return view
}

func checkAcceptingQuotes(session *domain.Session) error {
	switch session.Phase {
	case domain.PhaseRoundInProgress:
		return nil
	case domain.PhaseGameOver:
		return ErrGameOver
	default:
		return fmt.Errorf("%w (phase %s)", ErrRoundNotInProgress, session.Phase)
	}
}

// SubmitQuoteText parses raw player input and submits it.
func (s *Service) SubmitQuoteText(session *domain.Session, bidText, askText string) (domain.RoundOutcome, []Event, error) {
	if err := checkAcceptingQuotes(session); err != nil {
		return domain.RoundOutcome{}, nil, err
	}
	q, err := domain.ParseQuote(bidText, askText)
	if err != nil {
		return domain.RoundOutcome{}, nil, err
	}
	return s.resolve(session, q)
}

// SubmitQuote scores the player's quote for the round in progress.
// Rejected submissions leave the session untouched.
func (s *Service) SubmitQuote(session *domain.Session, bid, ask int) (domain.RoundOutcome, []Event, error) {
	if err := checkAcceptingQuotes(session); err != nil {
		return domain.RoundOutcome{}, nil, err
	}
	q, err := domain.NewQuote(bid, ask)
	if err != nil {
		return domain.RoundOutcome{}, nil, err
	}
	return s.resolve(session, q)
}

func (s *Service) resolve(session *domain.Session, q domain.Quote) (domain.RoundOutcome, []Event, error) {
	round := session.Current
	result := s.engine.Score(q, round.PlayerCard, round.Opponents)

	final := session.Round >= session.TotalRounds
	session.Score += result.Profit
	outcome := domain.RoundOutcome{
		Round:                round.Index,
		PlayerQuote:          q,
		ArbitrageFound:       result.ArbitrageFound,
		Profit:               result.Profit,
		TooHonest:            result.TooHonest,
		BluffingOpponents:    result.BluffingOpponents,
		Buyer:                result.Buyer,
		Seller:               result.Seller,
		CumulativeScoreAfter: session.Score,
		IsFinalRound:         final,
	}
	if !final {
		session.Round++
	}
	session.Phase = domain.PhaseRoundResolved
	session.LastOutcome = &outcome

	session.Generation++
	cmd := domain.PacingCommand{Token: session.Generation, Delay: s.pacing, Next: domain.NextRound}
	if final {
		cmd.Delay = s.finalPacing
		cmd.Next = domain.NextGameOver
	}
	session.Pending = &cmd

	return outcome, []Event{
		{Kind: EventRoundResolved, Payload: RoundResolvedPayload{Outcome: outcome}},
		{Kind: EventPacingRequested, Payload: PacingRequestedPayload{Command: cmd}},
	}, nil
}

// Advance carries out a pacing command once its delay has elapsed. Commands
// issued before a reset, or already applied, are rejected with ErrStalePacing.
func (s *Service) Advance(session *domain.Session, token uint64) ([]Event, error) {
	cmd := session.Pending
	if cmd == nil || cmd.Token != token || session.Phase != domain.PhaseRoundResolved {
		return nil, ErrStalePacing
	}
	session.Pending = nil

	if cmd.Next == domain.NextRound {
		dealt, err := s.dealRound(session)
		if err != nil {
			return nil, err
		}
		return []Event{dealt}, nil
	}

	session.Phase = domain.PhaseGameOver
	payload := GameOverPayload{SessionID: session.ID, PlayerName: session.PlayerName, FinalScore: session.Score}
	if s.receipts != nil {
		receipt, err := s.receipts.Issue(session)
		if err != nil {
			return nil, fmt.Errorf("issue receipt: %w", err)
		}
		payload.Receipt = receipt
	}
	return []Event{{Kind: EventGameOver, Payload: payload}}, nil
}

// ResetSession returns the session to setup from any phase. Outstanding
// pacing commands become stale.
func (s *Service) ResetSession(session *domain.Session) []Event {
	session.Phase = domain.PhaseAwaitingSetup
	session.PlayerName = ""
	session.Difficulty = ""
	session.Score = 0
	session.Round = 1
	session.TotalRounds = domain.TotalRounds
	session.Current = nil
	session.LastOutcome = nil
	session.Pending = nil
	session.Generation++
	return []Event{{Kind: EventSessionReset, Payload: SessionResetPayload{SessionID: session.ID}}}
}

// Hint is the neutral quote the player's own card suggests.
type Hint struct {
	Card       domain.Card
	Expected   float64 // rounded to one decimal
	NeutralBid int
	NeutralAsk int
}

// Hint computes the neutral quote for the round in progress.
func (s *Service) Hint(session *domain.Session) (Hint, error) {
	if err := checkAcceptingQuotes(session); err != nil {
		return Hint{}, err
	}
	card := session.Current.PlayerCard
	e := domain.ExpectedTotal(card)
	return Hint{
		Card:       card,
		Expected:   math.Round(e*10) / 10,
		NeutralBid: domain.FloorInt(e - 1),
		NeutralAsk: domain.FloorInt(e + 1),
	}, nil
}
