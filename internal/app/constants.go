package app

import "time"

// Pacing delays used when no configuration overrides them.
const (
	DefaultPacingDelay      = 3 * time.Second
	DefaultFinalPacingDelay = 3500 * time.Millisecond
)
