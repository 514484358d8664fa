package config

import (
	"fmt"
	"sync"
)

var (
	cfg      *Config
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads and validates the process-wide configuration once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := Load(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to load game config: %w", err)
			return
		}
		if err := c.Validate(); err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns a copy of the process-wide configuration, or the
// defaults when none was loaded.
func GetGameConfig() Config {
	if cfg == nil {
		return Defaults()
	}
	return *cfg
}
