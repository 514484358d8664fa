package app

import (
	"errors"
	"fmt"
	"time"

	"bluffmarket/internal/domain"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var ErrInvalidReceipt = errors.New("invalid receipt")

// ReceiptService signs final scores so a client can prove a result later.
type ReceiptService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Receipt is the verified content of a signed final score.
type Receipt struct {
	ID         string
	SessionID  string
	PlayerName string
	Difficulty domain.Difficulty
	Score      int
	Rounds     int
	IssuedAt   time.Time
}

func NewReceiptService(secret, issuer string, ttl time.Duration) *ReceiptService {
	return &ReceiptService{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs the session's final score. Only finished games carry a receipt.
func (s *ReceiptService) Issue(session *domain.Session) (string, error) {
	if s == nil {
		return "", fmt.Errorf("receipt service is nil")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("receipt config is incomplete")
	}
	if session.Phase != domain.PhaseGameOver {
		return "", fmt.Errorf("session %s is %s, not game over", session.ID, session.Phase)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":   s.issuer,
		"sub":   session.ID,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
		"jti":   uuid.NewString(),
		"name":  session.PlayerName,
		"diff":  string(session.Difficulty),
		"score": session.Score,
		"rnds":  session.TotalRounds,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks the signature, issuer and expiry of a receipt.
func (s *ReceiptService) Verify(tokenString string) (*Receipt, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReceipt, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidReceipt
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrInvalidReceipt)
	}

	r := &Receipt{
		ID:         stringClaim(claims, "jti"),
		SessionID:  stringClaim(claims, "sub"),
		PlayerName: stringClaim(claims, "name"),
		Difficulty: domain.Difficulty(stringClaim(claims, "diff")),
		Score:      int(numberClaim(claims, "score")),
		Rounds:     int(numberClaim(claims, "rnds")),
		IssuedAt:   time.Unix(int64(numberClaim(claims, "iat")), 0),
	}
	return r, nil
}

func stringClaim(c jwt.MapClaims, key string) string {
	v, _ := c[key].(string)
	return v
}

// numberClaim reads a numeric claim; encoding/json decodes numbers as float64.
func numberClaim(c jwt.MapClaims, key string) float64 {
	v, _ := c[key].(float64)
	return v
}
