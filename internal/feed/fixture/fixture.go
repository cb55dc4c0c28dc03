package fixture

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/feed"
	"github.com/preston-bernstein/scorebug/internal/feed/wbsc"
	"github.com/preston-bernstein/scorebug/internal/snapshots"
)

// Feed replays a game previously archived by the WBSC client, for offline replays
// and rehearsals.
type Feed struct {
	store snapshots.Store
}

var _ feed.Feed = (*Feed)(nil)

// New creates a fixture feed backed by an archive store.
func New(store snapshots.Store) *Feed {
	return &Feed{store: store}
}

// NewFromDir is a convenience for an archive directory on disk.
func NewFromDir(dir string) *Feed {
	return New(snapshots.NewFSStore(dir))
}

// LatestPlay returns the last archived play index.
func (f *Feed) LatestPlay(ctx context.Context, gameID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := f.store.LoadLatest(gameID)
	if errors.Is(err, snapshots.ErrNoPlays) {
		return 0, notFound(feed.OpLatest)
	}
	return n, err
}

// Play decodes one archived payload. Missing plays surface as 404s, like the live endpoint.
func (f *Feed) Play(ctx context.Context, gameID string, n int) (games.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return games.Snapshot{}, err
	}
	data, err := f.store.LoadPlay(gameID, n)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return games.Snapshot{}, notFound(feed.OpPlay)
		}
		return games.Snapshot{}, err
	}
	return wbsc.DecodePlay(bytes.NewReader(data), n)
}

func notFound(op string) error {
	return &feed.StatusError{Operation: op, StatusCode: http.StatusNotFound, Body: "not archived"}
}
