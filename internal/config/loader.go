package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BLUFF_* environment variable overrides, and
// returns the final Config. An empty path skips the file. The returned
// Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg, os.Getenv)

	return &cfg, nil
}

// ApplyRuntimeEnv overlays lower-case bluff_* keys from a Nakama runtime
// environment map.
func ApplyRuntimeEnv(cfg *Config, env map[string]string) {
	applyEnvOverrides(cfg, func(key string) string {
		return env[strings.ToLower(key)]
	})
}

func applyEnvOverrides(cfg *Config, get func(string) string) {
	setDuration(get, &cfg.Game.PacingDelay, "BLUFF_PACING_DELAY")
	setDuration(get, &cfg.Game.FinalPacingDelay, "BLUFF_FINAL_PACING_DELAY")
	setStr(get, &cfg.Game.ArbitragePolicy, "BLUFF_ARBITRAGE_POLICY")
	setStr(get, &cfg.Game.NamePoolPath, "BLUFF_NAME_POOL_PATH")

	setFloat64(get, &cfg.Bot.BluffProbability, "BLUFF_BOT_BLUFF_PROBABILITY")
	setFloat64(get, &cfg.Bot.BluffShift, "BLUFF_BOT_BLUFF_SHIFT")
	setFloat64(get, &cfg.Bot.NoiseAmplitude, "BLUFF_BOT_NOISE_AMPLITUDE")
	setFloat64(get, &cfg.Bot.SkewFactor, "BLUFF_BOT_SKEW_FACTOR")

	setStr(get, &cfg.Receipt.Secret, "BLUFF_RECEIPT_SECRET")
	setStr(get, &cfg.Receipt.Issuer, "BLUFF_RECEIPT_ISSUER")
	setDuration(get, &cfg.Receipt.TTL, "BLUFF_RECEIPT_TTL")

	setStr(get, &cfg.LogLevel, "BLUFF_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the variable is
// present, non-empty and parses.

func setStr(get func(string) string, dst *string, key string) {
	if v := get(key); v != "" {
		*dst = v
	}
}

func setFloat64(get func(string) string, dst *float64, key string) {
	if v := get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(get func(string) string, dst *duration, key string) {
	if v := get(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
