package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"bluffmarket/internal/app"
	"bluffmarket/internal/domain"
)

var (
	errQuit  = errors.New("quit")
	errReset = errors.New("reset")
)

// console renders a session as plain text and reads commands line by line.
type console struct {
	svc    *app.Service
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func newConsole(svc *app.Service, in io.Reader, out io.Writer, logger *slog.Logger) *console {
	return &console{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run plays sessions until the player quits or input ends.
func (c *console) Run(ctx context.Context) error {
	session := c.svc.NewSession()
	for {
		err := c.playSession(ctx, session)
		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			fmt.Fprintln(c.out, "Bye.")
			return nil
		case errors.Is(err, errReset):
			fmt.Fprintln(c.out, "Session reset.")
			continue
		case err != nil:
			return err
		}
		c.svc.ResetSession(session)
	}
}

// readLine prompts and returns the next trimmed line, or io.EOF.
func (c *console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *console) setup(session *domain.Session) error {
	name, err := c.readLine("Your name (blank for You): ")
	if err != nil {
		return err
	}
	for {
		d, err := c.readLine("Difficulty [easy/medium/hard]: ")
		if err != nil {
			return err
		}
		_, err = c.svc.StartSession(session, name, domain.Difficulty(d))
		if errors.Is(err, domain.ErrUnknownDifficulty) {
			fmt.Fprintln(c.out, "Pick easy, medium or hard.")
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\nWelcome, %s. Quote a market on the sum of all four cards.\n", session.PlayerName)
		return nil
	}
}

// playSession runs one game from setup to game over. A nil return means the
// player wants another game.
func (c *console) playSession(ctx context.Context, session *domain.Session) error {
	if err := c.setup(session); err != nil {
		return err
	}

	for {
		c.renderRound(c.svc.CurrentRoundView(session))

		outcome, events, err := c.promptQuote(session)
		if err != nil {
			return err
		}
		c.renderOutcome(*outcome)

		over, err := c.pace(ctx, session, events)
		if err != nil {
			return err
		}
		if over != nil {
			c.renderGameOver(*over)
			again, err := c.readLine("Play again? [y/N]: ")
			if err != nil {
				return err
			}
			if strings.EqualFold(again, "y") || strings.EqualFold(again, "yes") {
				return nil
			}
			return errQuit
		}
	}
}

// promptQuote reads commands until a quote is accepted.
func (c *console) promptQuote(session *domain.Session) (*domain.RoundOutcome, []app.Event, error) {
	for {
		line, err := c.readLine("Your quote (bid ask), or hint / reset / quit: ")
		if err != nil {
			return nil, nil, err
		}
		fields := strings.Fields(line)
		switch {
		case len(fields) == 0:
			continue
		case strings.EqualFold(fields[0], "quit"):
			return nil, nil, errQuit
		case strings.EqualFold(fields[0], "reset"):
			c.svc.ResetSession(session)
			return nil, nil, errReset
		case strings.EqualFold(fields[0], "hint"):
			h, err := c.svc.Hint(session)
			if err != nil {
				fmt.Fprintln(c.out, err)
				continue
			}
			fmt.Fprintf(c.out, "Hint for your card (%d): expected total about %.1f, neutral quote %d–%d. Try to mask your card!\n",
				h.Card, h.Expected, h.NeutralBid, h.NeutralAsk)
			continue
		}

		bid, ask := fields[0], ""
		if len(fields) > 1 {
			ask = fields[1]
		}
		outcome, events, err := c.svc.SubmitQuoteText(session, bid, ask)
		if errors.Is(err, domain.ErrInvalidQuote) {
			fmt.Fprintln(c.out, err)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return &outcome, events, nil
	}
}

// pace waits out the pacing command and advances. It returns the game over
// payload once the final round has been paced.
func (c *console) pace(ctx context.Context, session *domain.Session, events []app.Event) (*app.GameOverPayload, error) {
	for _, ev := range events {
		if ev.Kind != app.EventPacingRequested {
			continue
		}
		cmd := ev.Payload.(app.PacingRequestedPayload).Command
		if err := c.sleep(ctx, cmd.Delay); err != nil {
			return nil, err
		}
		next, err := c.svc.Advance(session, cmd.Token)
		if err != nil {
			c.logger.Warn("pacing command dropped", slog.Uint64("token", cmd.Token), slog.String("error", err.Error()))
			return nil, nil
		}
		for _, n := range next {
			if n.Kind == app.EventGameOver {
				p := n.Payload.(app.GameOverPayload)
				return &p, nil
			}
		}
	}
	return nil, nil
}

func (c *console) renderRound(v domain.RoundView) {
	fmt.Fprintf(c.out, "\n=== Round %d of %d === Score: %d\n", v.RoundIndex, v.TotalRounds, v.CumulativeScore)
	fmt.Fprintf(c.out, "Your card: %d\n", v.YourCard)
	for _, q := range v.OpponentQuotes {
		fmt.Fprintf(c.out, "  %s\n", q.Narration)
	}
}

func (c *console) renderOutcome(o domain.RoundOutcome) {
	if o.ArbitrageFound {
		fmt.Fprintf(c.out, "Arbitrage! Buy from %s, sell to %s. Profit: %d\n", o.Seller, o.Buyer, o.Profit)
	} else {
		fmt.Fprintln(c.out, "No arbitrage this round. Everyone's playing tight or bluffing well.")
	}
	if o.TooHonest {
		fmt.Fprintln(c.out, "Feedback: your quote closely matches your card. Be careful not to give away your hand.")
	}
	if len(o.BluffingOpponents) > 0 {
		fmt.Fprintf(c.out, "Bluffing: %s\n", strings.Join(o.BluffingOpponents, ", "))
	} else {
		fmt.Fprintln(c.out, "Nobody bluffed.")
	}
	fmt.Fprintf(c.out, "Score: %d\n", o.CumulativeScoreAfter)
}

func (c *console) renderGameOver(p app.GameOverPayload) {
	fmt.Fprintf(c.out, "\nGame over, %s. Total profit: %d\n", p.PlayerName, p.FinalScore)
	if p.Receipt != "" {
		fmt.Fprintf(c.out, "Receipt: %s\n", p.Receipt)
	}
}
