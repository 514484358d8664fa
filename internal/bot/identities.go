package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"bluffmarket/internal/domain"
)

// ErrPoolTooSmall is returned when a pool cannot seat the requested opponents.
var ErrPoolTooSmall = errors.New("name pool too small")

// DefaultNames is the opponent name pool used when no identities file is loaded.
var DefaultNames = []string{
	"Jeffrey", "Riya", "Marcus", "Samira", "Leo", "Sam",
	"Avery", "Jimmy", "Todd", "Ella", "Nicole", "Zeke",
}

// BotIdentity is one entry of an identities file.
type BotIdentity struct {
	DisplayName string `json:"display_name"`
	AvatarIndex int    `json:"avatar_index"`
}

// NamePool hands out opponent names without replacement.
type NamePool struct {
	names []string
}

// NewNamePool builds a pool, dropping blank and duplicate names.
func NewNamePool(names []string) *NamePool {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return &NamePool{names: out}
}

// Size returns the number of distinct names in the pool.
func (p *NamePool) Size() int { return len(p.names) }

// Draw samples n distinct names.
func (p *NamePool) Draw(rng *rand.Rand, n int) ([]string, error) {
	if n > len(p.names) {
		return nil, fmt.Errorf("draw %d names from %d: %w", n, len(p.names), ErrPoolTooSmall)
	}
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(p.names))[:n] {
		out = append(out, p.names[i])
	}
	return out, nil
}

// ReadIdentities parses an identities file into a pool.
func ReadIdentities(path string) (*NamePool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	names := make([]string, 0, len(identities))
	for _, identity := range identities {
		names = append(names, identity.DisplayName)
	}
	return NewNamePool(names), nil
}

var (
	loadedPool *NamePool
	loadOnce   sync.Once
	loadErr    error
)

// LoadIdentities loads the process-wide name pool from path once.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		loadedPool, loadErr = ReadIdentities(path)
	})
	return loadErr
}

// DefaultPool returns the loaded pool, or the built-in names when none was
// loaded or the loaded file cannot seat a full table.
func DefaultPool() *NamePool {
	if loadedPool != nil && loadedPool.Size() >= domain.OpponentCount {
		return loadedPool
	}
	return NewNamePool(DefaultNames)
}
