package app

import (
	"fmt"
	"math/rand"

	"bluffmarket/internal/bot"
	"bluffmarket/internal/config"
	"bluffmarket/internal/domain"
	"bluffmarket/internal/market"
)

// NewServiceFromConfig builds a Service from validated configuration.
func NewServiceFromConfig(rng *rand.Rand, cfg config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := market.ParsePolicy(cfg.Game.ArbitragePolicy)
	if err != nil {
		return nil, err
	}
	engine, err := market.NewEngine(policy)
	if err != nil {
		return nil, err
	}
	tuning := bot.Tuning{
		BluffProbability: cfg.Bot.BluffProbability,
		BluffShift:       cfg.Bot.BluffShift,
		NoiseAmplitude:   cfg.Bot.NoiseAmplitude,
		SkewFactor:       cfg.Bot.SkewFactor,
	}
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("bot tuning: %w", err)
	}

	opts := []Option{
		WithEngine(engine),
		WithTuning(tuning),
		WithPacing(cfg.PacingDelay(), cfg.FinalPacingDelay()),
	}
	if cfg.Game.NamePoolPath != "" {
		pool, err := bot.ReadIdentities(cfg.Game.NamePoolPath)
		if err != nil {
			return nil, err
		}
		if pool.Size() < domain.OpponentCount {
			return nil, fmt.Errorf("%w: %s has %d names", bot.ErrPoolTooSmall, cfg.Game.NamePoolPath, pool.Size())
		}
		opts = append(opts, WithNamePool(pool))
	}
	if cfg.Receipt.Secret != "" {
		opts = append(opts, WithReceipts(NewReceiptService(cfg.Receipt.Secret, cfg.Receipt.Issuer, cfg.ReceiptTTL())))
	}
	return NewService(rng, opts...), nil
}
