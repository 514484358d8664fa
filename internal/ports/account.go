package ports

import "context"

// AccountPort looks up profile details for the seated player.
type AccountPort interface {
	// DisplayName returns the player's display name, falling back to the
	// username when no display name is set.
	DisplayName(ctx context.Context, userID string) (string, error)
}
