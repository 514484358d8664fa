package app

import (
	"errors"
	"testing"
	"time"

	"bluffmarket/internal/domain"

	"github.com/form3tech-oss/jwt-go"
)

func finishedSession() *domain.Session {
	return &domain.Session{
		ID:          "session-1",
		Phase:       domain.PhaseGameOver,
		PlayerName:  "Ada",
		Difficulty:  domain.DifficultyHard,
		Round:       domain.TotalRounds,
		TotalRounds: domain.TotalRounds,
		Score:       23,
	}
}

func TestReceiptRoundTrip(t *testing.T) {
	svc := NewReceiptService("test-secret", "issuer", time.Hour)
	tokenString, err := svc.Issue(finishedSession())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	r, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if r.SessionID != "session-1" || r.PlayerName != "Ada" || r.Score != 23 {
		t.Fatalf("receipt = %+v", r)
	}
	if r.Difficulty != domain.DifficultyHard || r.Rounds != domain.TotalRounds || r.ID == "" {
		t.Fatalf("receipt = %+v", r)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if token.Method != jwt.SigningMethodHS256 {
		t.Fatalf("signing method = %v, want HS256", token.Method.Alg())
	}
}

func TestReceiptRejects(t *testing.T) {
	good := NewReceiptService("test-secret", "issuer", time.Hour)
	tokenString, err := good.Issue(finishedSession())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	expired := NewReceiptService("test-secret", "issuer", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(finishedSession())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	tests := []struct {
		name  string
		svc   *ReceiptService
		token string
	}{
		{name: "wrong secret", svc: NewReceiptService("other", "issuer", time.Hour), token: tokenString},
		{name: "wrong issuer", svc: NewReceiptService("test-secret", "someone-else", time.Hour), token: tokenString},
		{name: "expired", svc: good, token: expiredToken},
		{name: "garbage", svc: good, token: "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.Verify(tt.token); !errors.Is(err, ErrInvalidReceipt) {
				t.Fatalf("err = %v, want ErrInvalidReceipt", err)
			}
		})
	}
}

func TestReceiptIssueRequiresFinishedGame(t *testing.T) {
	svc := NewReceiptService("test-secret", "issuer", time.Hour)
	s := finishedSession()
	s.Phase = domain.PhaseRoundInProgress
	if _, err := svc.Issue(s); err == nil {
		t.Fatalf("expected error for unfinished game")
	}
	if _, err := NewReceiptService("", "issuer", time.Hour).Issue(finishedSession()); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestGameOverCarriesReceipt(t *testing.T) {
	receipts := NewReceiptService("test-secret", "issuer", time.Hour)
	svc := newTestService(77, WithReceipts(receipts))
	s := startedSession(t, svc, domain.DifficultyEasy)

	var over GameOverPayload
	for i := 0; i < domain.TotalRounds; i++ {
		_, evs, err := svc.SubmitQuote(s, 30, 90)
		if err != nil {
			t.Fatalf("submit error: %v", err)
		}
		next, err := svc.Advance(s, evs[1].Payload.(PacingRequestedPayload).Command.Token)
		if err != nil {
			t.Fatalf("advance error: %v", err)
		}
		if next[0].Kind == EventGameOver {
			over = next[0].Payload.(GameOverPayload)
		}
	}
	r, err := receipts.Verify(over.Receipt)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if r.Score != s.Score || r.SessionID != s.ID {
		t.Fatalf("receipt = %+v, session score %d id %s", r, s.Score, s.ID)
	}
}
