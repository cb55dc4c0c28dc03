package feed

import (
	"context"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
)

// Operation names used for logging and metrics.
const (
	OpLatest = "latest"
	OpPlay   = "play"
)

// Feed is the upstream source of play-by-play snapshots for a game.
type Feed interface {
	// LatestPlay returns the index of the most recent play published for the game.
	LatestPlay(ctx context.Context, gameID string) (int, error)
	// Play returns the full game state as of play n.
	Play(ctx context.Context, gameID string, n int) (games.Snapshot, error)
}
