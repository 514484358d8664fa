package domain

import (
	"errors"
	"testing"
)

func TestNewQuote(t *testing.T) {
	tests := []struct {
		name    string
		bid     int
		ask     int
		wantErr bool
	}{
		{name: "valid", bid: 58, ask: 60},
		{name: "one apart", bid: 1, ask: 2},
		{name: "negative prices", bid: -5, ask: -1},
		{name: "equal", bid: 60, ask: 60, wantErr: true},
		{name: "crossed", bid: 61, ask: 60, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuote(tt.bid, tt.ask)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuote) {
					t.Fatalf("err = %v, want ErrInvalidQuote", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Bid != tt.bid || q.Ask != tt.ask || !q.Valid() {
				t.Fatalf("quote = %+v", q)
			}
		})
	}
}

func TestParseQuote(t *testing.T) {
	tests := []struct {
		name    string
		bid     string
		ask     string
		want    Quote
		wantErr bool
	}{
		{name: "plain", bid: "57", ask: "59", want: Quote{Bid: 57, Ask: 59}},
		{name: "whitespace", bid: " 57 ", ask: "\t59\n", want: Quote{Bid: 57, Ask: 59}},
		{name: "missing bid", bid: "", ask: "59", wantErr: true},
		{name: "missing ask", bid: "57", ask: "  ", wantErr: true},
		{name: "non numeric", bid: "abc", ask: "59", wantErr: true},
		{name: "fractional", bid: "57.5", ask: "59", wantErr: true},
		{name: "bid equals ask", bid: "59", ask: "59", wantErr: true},
		{name: "bid above ask", bid: "70", ask: "59", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuote(tt.bid, tt.ask)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuote) {
					t.Fatalf("err = %v, want ErrInvalidQuote", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseQuote() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestQuoteString(t *testing.T) {
	q := Quote{Bid: 57, Ask: 61}
	if got := q.String(); got != "57–61" {
		t.Fatalf("String() = %q", got)
	}
	if q.Spread() != 4 {
		t.Fatalf("Spread() = %d, want 4", q.Spread())
	}
}

func TestExpectedTotal(t *testing.T) {
	tests := []struct {
		card       Card
		wantHonest int
	}{
		{card: 5, wantHonest: 58},   // 58.55
		{card: -10, wantHonest: 43}, // 43.55
		{card: 20, wantHonest: 73},  // 73.55
		{card: 1, wantHonest: 54},   // 54.55
	}
	for _, tt := range tests {
		if got := HonestValue(tt.card); got != tt.wantHonest {
			t.Errorf("HonestValue(%d) = %d, want %d (expected %.2f)", tt.card, got, tt.wantHonest, ExpectedTotal(tt.card))
		}
	}
}
