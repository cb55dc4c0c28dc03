package testutil

import (
	"context"
	"net/http"
	"sync"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/feed"
)

// StubFeed serves snapshots from memory. Plays without an entry answer 404.
type StubFeed struct {
	mu        sync.Mutex
	latest    int
	latestErr error
	plays     map[int]games.Snapshot
	errs      map[int]error
	requested []int
}

// NewStubFeed returns a feed holding snaps, with the latest play set to the highest index.
func NewStubFeed(snaps ...games.Snapshot) *StubFeed {
	f := &StubFeed{plays: make(map[int]games.Snapshot), errs: make(map[int]error)}
	for _, s := range snaps {
		f.Add(s)
	}
	return f
}

// Add stores a snapshot and raises the latest play if needed.
func (f *StubFeed) Add(s games.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays[s.Play] = s
	if s.Play > f.latest {
		f.latest = s.Play
	}
}

// SetLatest overrides the latest play index.
func (f *StubFeed) SetLatest(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = n
}

// FailLatest makes LatestPlay return err until it is cleared with nil.
func (f *StubFeed) FailLatest(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestErr = err
}

// FailPlay makes Play(n) return err.
func (f *StubFeed) FailPlay(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, n)
		return
	}
	f.errs[n] = err
}

// Requested lists every play index passed to Play, in call order.
func (f *StubFeed) Requested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.requested))
	copy(out, f.requested)
	return out
}

func (f *StubFeed) LatestPlay(ctx context.Context, gameID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return 0, f.latestErr
	}
	if f.latest == 0 {
		return 0, &feed.StatusError{Operation: feed.OpLatest, StatusCode: http.StatusNotFound}
	}
	return f.latest, nil
}

func (f *StubFeed) Play(ctx context.Context, gameID string, n int) (games.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return games.Snapshot{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, n)
	if err, ok := f.errs[n]; ok {
		return games.Snapshot{}, err
	}
	s, ok := f.plays[n]
	if !ok {
		return games.Snapshot{}, &feed.StatusError{Operation: feed.OpPlay, StatusCode: http.StatusNotFound}
	}
	return s, nil
}
