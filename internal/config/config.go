package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for a Bluff Market deployment.
type Config struct {
	Game     GameConfig    `toml:"game"`
	Bot      BotConfig     `toml:"bot"`
	Receipt  ReceiptConfig `toml:"receipt"`
	LogLevel string        `toml:"log_level"`
}

// GameConfig holds table-level rules. The number of rounds is fixed and
// intentionally absent here.
type GameConfig struct {
	PacingDelay      duration `toml:"pacing_delay"`
	FinalPacingDelay duration `toml:"final_pacing_delay"`
	ArbitragePolicy  string   `toml:"arbitrage_policy"`
	// NamePoolPath points at a bot identities JSON file; empty uses the built-in names.
	NamePoolPath string `toml:"name_pool_path"`
}

// BotConfig tunes the aggressive opponents.
type BotConfig struct {
	BluffProbability float64 `toml:"bluff_probability"`
	BluffShift       float64 `toml:"bluff_shift"`
	NoiseAmplitude   float64 `toml:"noise_amplitude"`
	SkewFactor       float64 `toml:"skew_factor"`
}

// ReceiptConfig controls signed final-score receipts. An empty secret
// disables them.
type ReceiptConfig struct {
	Secret string   `toml:"secret"`
	Issuer string   `toml:"issuer"`
	TTL    duration `toml:"ttl"`
}

// duration wraps time.Duration so the TOML decoder can parse strings like "3s".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the configuration matching the browser game's pacing and
// opponent behaviour.
func Defaults() Config {
	return Config{
		Game: GameConfig{
			PacingDelay:      duration{3 * time.Second},
			FinalPacingDelay: duration{3500 * time.Millisecond},
			ArbitragePolicy:  "global_best_spread",
		},
		Bot: BotConfig{
			BluffProbability: 0.7,
			BluffShift:       6,
			NoiseAmplitude:   2,
			SkewFactor:       0.5,
		},
		Receipt: ReceiptConfig{
			Issuer: "bluffmarket",
			TTL:    duration{time.Hour},
		},
		LogLevel: "info",
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validPolicies = map[string]bool{"global_best_spread": true, "player_enabled": true}

// Validate checks the configuration for consistency and returns a combined
// error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Game.PacingDelay.Duration < 0 {
		errs = append(errs, "game: pacing_delay must not be negative")
	}
	if c.Game.FinalPacingDelay.Duration < 0 {
		errs = append(errs, "game: final_pacing_delay must not be negative")
	}
	if !validPolicies[strings.ToLower(c.Game.ArbitragePolicy)] {
		errs = append(errs, fmt.Sprintf("game: unknown arbitrage_policy %q (valid: global_best_spread, player_enabled)", c.Game.ArbitragePolicy))
	}

	if c.Bot.BluffProbability < 0 || c.Bot.BluffProbability > 1 {
		errs = append(errs, "bot: bluff_probability must be within [0,1]")
	}
	if c.Bot.BluffShift < 0 {
		errs = append(errs, "bot: bluff_shift must not be negative")
	}
	if c.Bot.NoiseAmplitude < 0 {
		errs = append(errs, "bot: noise_amplitude must not be negative")
	}
	if c.Bot.SkewFactor < 0 || c.Bot.SkewFactor > 1 {
		errs = append(errs, "bot: skew_factor must be within [0,1]")
	}

	if c.Receipt.Secret != "" {
		if c.Receipt.Issuer == "" {
			errs = append(errs, "receipt: issuer is required when secret is set")
		}
		if c.Receipt.TTL.Duration <= 0 {
			errs = append(errs, "receipt: ttl must be positive when secret is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// PacingDelay is the pause between a resolved round and the next deal.
func (c *Config) PacingDelay() time.Duration { return c.Game.PacingDelay.Duration }

// FinalPacingDelay is the pause between the last resolved round and game over.
func (c *Config) FinalPacingDelay() time.Duration { return c.Game.FinalPacingDelay.Duration }

// ReceiptTTL is how long a signed score receipt stays valid.
func (c *Config) ReceiptTTL() time.Duration { return c.Receipt.TTL.Duration }
