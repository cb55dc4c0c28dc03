package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/metrics"
)

type flakeyFeed struct {
	failures int
	err      error
	calls    int
}

func (f *flakeyFeed) LatestPlay(ctx context.Context, gameID string) (int, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, f.err
	}
	return 42, nil
}

func (f *flakeyFeed) Play(ctx context.Context, gameID string, n int) (games.Snapshot, error) {
	f.calls++
	if f.calls <= f.failures {
		return games.Snapshot{}, f.err
	}
	return games.Snapshot{Play: n}, nil
}

func TestRetryingFeedRetriesAndSucceeds(t *testing.T) {
	ff := &flakeyFeed{failures: 2, err: errors.New("boom")}
	rec := metrics.NewRecorder()
	rf := NewRetryingFeed(ff, slog.Default(), rec, 3, time.Millisecond)

	latest, err := rf.LatestPlay(context.Background(), "g")
	if err != nil {
		t.Fatalf("expected success, got error %v", err)
	}
	if latest != 42 {
		t.Fatalf("unexpected latest %d", latest)
	}
	if ff.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", ff.calls)
	}
	if snap := rec.Snapshot(OpLatest); snap.Calls != 3 || snap.Errors != 2 {
		t.Fatalf("unexpected metrics %+v", snap)
	}
}

func TestRetryingFeedStopsAfterMaxAttempts(t *testing.T) {
	ff := &flakeyFeed{failures: 5, err: errors.New("boom")}
	rf := NewRetryingFeed(ff, nil, nil, 2, time.Millisecond)

	if _, err := rf.Play(context.Background(), "g", 3); err == nil {
		t.Fatal("expected error after retries")
	}
	if ff.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", ff.calls)
	}
}

func TestRetryingFeedDoesNotRetryMalformed(t *testing.T) {
	ff := &flakeyFeed{failures: 5, err: Malformed(errors.New("bad json"))}
	rf := NewRetryingFeed(ff, nil, nil, 3, time.Millisecond)

	_, err := rf.Play(context.Background(), "g", 3)
	if !IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if ff.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", ff.calls)
	}
}

func TestRetryingFeedDoesNotRetryNotFound(t *testing.T) {
	ff := &flakeyFeed{failures: 5, err: &StatusError{Operation: OpPlay, StatusCode: http.StatusNotFound}}
	rf := NewRetryingFeed(ff, nil, nil, 3, time.Millisecond)

	_, err := rf.Play(context.Background(), "g", 99)
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if ff.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", ff.calls)
	}
}

func TestRetryingFeedRespectsContextCancel(t *testing.T) {
	ff := &flakeyFeed{failures: 5, err: errors.New("boom")}
	rf := NewRetryingFeed(ff, nil, nil, 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := rf.LatestPlay(ctx, "g"); err == nil {
		t.Fatal("expected context error")
	}
	if ff.calls > 1 {
		t.Fatalf("expected no retries after cancel, got %d calls", ff.calls)
	}
}

func TestRetryingFeedDefaults(t *testing.T) {
	rf := NewRetryingFeed(&flakeyFeed{}, nil, nil, 0, 0).(*retryingFeed)
	if rf.maxAttempts != defaultRetryAttempts {
		t.Fatalf("expected default attempts, got %d", rf.maxAttempts)
	}
	if rf.newBackOff() == nil {
		t.Fatal("expected backoff policy")
	}
}
