package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/domain/players"
	"github.com/preston-bernstein/scorebug/internal/feed"
	"github.com/preston-bernstein/scorebug/internal/metrics"
	"github.com/preston-bernstein/scorebug/internal/testutil"
)

type countingRenderer struct {
	mu    sync.Mutex
	plays []int
	game  *games.Game
}

func (r *countingRenderer) Render(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plays = append(r.plays, r.game.CurrentPlay)
	return nil
}

type recordingLoader struct {
	loaded []*players.Player
}

func (l *recordingLoader) LoadAll(ctx context.Context, ps []*players.Player) {
	l.loaded = append(l.loaded, ps...)
}

func newGame(t *testing.T, mode games.Mode, replay games.ReplayMode) *games.Game {
	t.Helper()
	g, err := games.New(games.Options{ID: testutil.GameID, Mode: mode, ReplayMode: replay, Resolution: games.DefaultResolution})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func testConfig() Config {
	return Config{
		LiveIdle:          time.Second,
		LiveApply:         3 * time.Second,
		RealtimeTick:      100 * time.Millisecond,
		SequenceInterval:  2 * time.Second,
		NotStartedBackoff: 30 * time.Second,
		FinalGrace:        5 * time.Second,
	}
}

func newPoller(g *games.Game, f feed.Feed, clock *testutil.FakeClock, rec *metrics.Recorder, opts ...Option) (*Poller, *countingRenderer) {
	r := &countingRenderer{game: g}
	opts = append([]Option{WithClock(clock.Now, clock.Sleep)}, opts...)
	return New(g, f, r, nil, rec, testConfig(), opts...), r
}

func start() time.Time {
	return time.Date(2024, 7, 3, 18, 0, 0, 0, time.UTC)
}

func TestRealtimeAppliesPlaysDueByVirtualClock(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplayRealtime)
	f := testutil.NewStubFeed(
		testutil.SampleSnapshot(1, 0),
		testutil.SampleSnapshot(2, 1000),
		testutil.SampleSnapshot(3, 5000),
	)
	clock := testutil.NewFakeClock(start())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed > 1100*time.Millisecond {
			cancel()
		}
	}
	rec := metrics.NewRecorder()
	p, r := newPoller(g, f, clock, rec)

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if g.CurrentPlay != 2 {
		t.Fatalf("expected plays 1 and 2 applied, current play %d", g.CurrentPlay)
	}
	if got := rec.Snapshot("").PlaysApplied; got != 2 {
		t.Fatalf("expected 2 plays applied, got %d", got)
	}
	if len(r.plays) != 3 || r.plays[0] != 0 || r.plays[2] != 2 {
		t.Fatalf("expected pre-game render plus one per play, got %v", r.plays)
	}
	for _, n := range f.Requested() {
		if n == 3 {
			return
		}
	}
	t.Fatalf("expected play 3 to have been looked at, requested %v", f.Requested())
}

func TestRealtimeAppliesBurstInOrder(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplayRealtime)
	f := testutil.NewStubFeed(
		testutil.SampleSnapshot(1, 0),
		testutil.SampleSnapshot(2, 10),
		testutil.SampleSnapshot(3, 20),
		testutil.SampleSnapshot(4, 30),
	)
	f.FailPlay(3, feed.Malformed(errors.New("bad json")))
	clock := testutil.NewFakeClock(start())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed >= 200*time.Millisecond {
			cancel()
		}
	}
	rec := metrics.NewRecorder()
	p, r := newPoller(g, f, clock, rec)

	_ = p.Run(ctx)

	if g.CurrentPlay != 4 {
		t.Fatalf("expected to reach play 4, got %d", g.CurrentPlay)
	}
	want := []int{0, 1, 2, 4}
	if len(r.plays) != len(want) {
		t.Fatalf("expected renders %v, got %v", want, r.plays)
	}
	for i := range want {
		if r.plays[i] != want[i] {
			t.Fatalf("expected renders %v, got %v", want, r.plays)
		}
	}
	if rec.Snapshot("").PlaysSkipped != 1 {
		t.Fatalf("expected malformed play to be skipped")
	}
}

func TestSequenceSkipsMalformedAndEndsOnFinal(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplaySequence)
	f := testutil.NewStubFeed(
		testutil.SampleSnapshot(1, 0),
		testutil.SampleSnapshot(3, 999999),
		testutil.FinalSnapshot(4, 1),
	)
	f.FailPlay(2, feed.Malformed(errors.New("truncated")))
	clock := testutil.NewFakeClock(start())
	rec := metrics.NewRecorder()
	p, _ := newPoller(g, f, clock, rec)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("expected clean stop on final, got %v", err)
	}
	if !g.Ended() || !g.IsFinal() {
		t.Fatalf("expected replay to force-end on final")
	}
	requested := f.Requested()
	want := []int{1, 2, 3, 4}
	if len(requested) != len(want) {
		t.Fatalf("expected requests %v, got %v", want, requested)
	}
	for i := range want {
		if requested[i] != want[i] {
			t.Fatalf("expected requests %v, got %v", want, requested)
		}
	}
	snap := rec.Snapshot("")
	if snap.PlaysApplied != 3 || snap.PlaysSkipped != 1 {
		t.Fatalf("unexpected counters %+v", snap)
	}
	var intervals int
	for _, d := range clock.Sleeps() {
		if d == 2*time.Second {
			intervals++
		}
	}
	if intervals != 2 {
		t.Fatalf("expected one sequence interval per applied play after the first, got %v", clock.Sleeps())
	}
}

func TestSequenceRetriesTransientErrorsWithoutAdvancing(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplaySequence)
	f := testutil.NewStubFeed(testutil.SampleSnapshot(1, 0), testutil.FinalSnapshot(2, 0))
	f.FailPlay(2, &feed.StatusError{Operation: feed.OpPlay, StatusCode: 503})
	clock := testutil.NewFakeClock(start())
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed >= 6*time.Second {
			f.FailPlay(2, nil)
		}
	}
	p, _ := newPoller(g, f, clock, nil)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if g.CurrentPlay != 2 {
		t.Fatalf("expected play 2 once the feed recovered, got %d", g.CurrentPlay)
	}
	for _, n := range f.Requested() {
		if n > 2 {
			t.Fatalf("cursor advanced past failing play: %v", f.Requested())
		}
	}
}

func TestSequenceSkipsMissingPlayBelowLatest(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplaySequence)
	f := testutil.NewStubFeed(
		testutil.SampleSnapshot(1, 0),
		testutil.SampleSnapshot(3, 20),
		testutil.FinalSnapshot(4, 30),
	)
	clock := testutil.NewFakeClock(start())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed > time.Minute {
			cancel()
		}
	}
	rec := metrics.NewRecorder()
	p, _ := newPoller(g, f, clock, rec)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("expected clean stop on final, got %v", err)
	}
	if !g.Ended() || g.CurrentPlay != 4 {
		t.Fatalf("expected replay to reach final play 4, ended=%v play=%d", g.Ended(), g.CurrentPlay)
	}
	if got := countRequests(f.Requested(), 2); got != 1 {
		t.Fatalf("expected missing play 2 requested once, got %d in %v", got, f.Requested())
	}
	snap := rec.Snapshot("")
	if snap.PlaysApplied != 3 || snap.PlaysSkipped != 1 {
		t.Fatalf("unexpected counters %+v", snap)
	}
}

func TestSequenceWaitsForUnpublishedPlay(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplaySequence)
	f := testutil.NewStubFeed(testutil.SampleSnapshot(1, 0))
	clock := testutil.NewFakeClock(start())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed >= 10*time.Second {
			cancel()
		}
	}
	rec := metrics.NewRecorder()
	p, _ := newPoller(g, f, clock, rec)

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if g.CurrentPlay != 1 {
		t.Fatalf("expected to hold at play 1, got %d", g.CurrentPlay)
	}
	if got := countRequests(f.Requested(), 2); got < 2 {
		t.Fatalf("expected play 2 to be retried, requested %v", f.Requested())
	}
	if got := rec.Snapshot("").PlaysSkipped; got != 0 {
		t.Fatalf("expected nothing skipped past the latest play, got %d", got)
	}
}

func TestRealtimeSkipsMissingPlayBelowLatest(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplayRealtime)
	f := testutil.NewStubFeed(
		testutil.SampleSnapshot(1, 0),
		testutil.SampleSnapshot(3, 10),
		testutil.FinalSnapshot(4, 20),
	)
	clock := testutil.NewFakeClock(start())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed > time.Minute {
			cancel()
		}
	}
	rec := metrics.NewRecorder()
	p, _ := newPoller(g, f, clock, rec)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("expected clean stop on final, got %v", err)
	}
	if !g.Ended() || g.CurrentPlay != 4 {
		t.Fatalf("expected replay to reach final play 4, ended=%v play=%d", g.Ended(), g.CurrentPlay)
	}
	if got := countRequests(f.Requested(), 2); got != 1 {
		t.Fatalf("expected missing play 2 requested once, got %d in %v", got, f.Requested())
	}
	if got := rec.Snapshot("").PlaysSkipped; got != 1 {
		t.Fatalf("expected one skipped play, got %d", got)
	}
}

func TestRealtimeStopsAtFinalWithinBurst(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplayRealtime)
	f := testutil.NewStubFeed(
		testutil.SampleSnapshot(1, 0),
		testutil.FinalSnapshot(2, 0),
		testutil.SampleSnapshot(3, 0),
	)
	clock := testutil.NewFakeClock(start())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed > time.Minute {
			cancel()
		}
	}
	rec := metrics.NewRecorder()
	p, _ := newPoller(g, f, clock, rec)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("expected clean stop on final, got %v", err)
	}
	if !g.Ended() || g.CurrentPlay != 2 {
		t.Fatalf("expected replay to end on final play 2, ended=%v play=%d", g.Ended(), g.CurrentPlay)
	}
	if got := countRequests(f.Requested(), 3); got != 0 {
		t.Fatalf("expected play 3 never requested, got %v", f.Requested())
	}
	if got := rec.Snapshot("").PlaysApplied; got != 2 {
		t.Fatalf("expected 2 plays applied, got %d", got)
	}
}

func countRequests(requested []int, n int) int {
	var c int
	for _, r := range requested {
		if r == n {
			c++
		}
	}
	return c
}

func TestLiveFollowsLatestPlayAndWaitsOutGrace(t *testing.T) {
	g := newGame(t, games.ModeLive, "")
	f := testutil.NewStubFeed(testutil.SampleSnapshot(5, 0))
	clock := testutil.NewFakeClock(start())
	var once7, once8 sync.Once
	var finalAt time.Duration
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed >= 2*time.Second {
			once7.Do(func() { f.Add(testutil.SampleSnapshot(7, 0)) })
		}
		if elapsed >= 10*time.Second {
			once8.Do(func() {
				f.Add(testutil.FinalSnapshot(8, 0))
				finalAt = elapsed
			})
		}
	}
	rec := metrics.NewRecorder()
	p, _ := newPoller(g, f, clock, rec)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if g.CurrentPlay != 8 || !g.Ended() {
		t.Fatalf("expected final play 8 and forced end, got play %d ended=%v", g.CurrentPlay, g.Ended())
	}
	for _, n := range f.Requested() {
		if n == 6 {
			t.Fatalf("live mode should jump to the latest play, requested %v", f.Requested())
		}
	}
	if rec.Snapshot("").PlaysApplied != 3 {
		t.Fatalf("expected plays 5, 7 and 8 applied")
	}
	if clock.Elapsed()-finalAt < 5*time.Second {
		t.Fatalf("expected the final grace period to elapse, ended %v after final", clock.Elapsed()-finalAt)
	}
}

func TestLiveGraceResetsWhenGameResumes(t *testing.T) {
	g := newGame(t, games.ModeLive, "")
	f := testutil.NewStubFeed(testutil.FinalSnapshot(1, 0))
	clock := testutil.NewFakeClock(start())
	var once sync.Once
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed >= 3*time.Second {
			once.Do(func() { f.Add(testutil.SampleSnapshot(2, 0)) })
		}
		if elapsed >= time.Minute {
			g.ForceEnd()
		}
	}
	p, _ := newPoller(g, f, clock, nil)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if g.IsFinal() {
		t.Fatalf("expected game to leave the final state")
	}
	if clock.Elapsed() < time.Minute {
		t.Fatalf("expected the loop to run until the external force end, stopped at %v", clock.Elapsed())
	}
}

func TestLiveMalformedPlayIsRetried(t *testing.T) {
	g := newGame(t, games.ModeLive, "")
	f := testutil.NewStubFeed(testutil.SampleSnapshot(5, 0), testutil.SampleSnapshot(6, 0))
	f.SetLatest(5)
	clock := testutil.NewFakeClock(start())
	var addOnce, fixOnce sync.Once
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed >= time.Second {
			addOnce.Do(func() {
				f.SetLatest(6)
				f.FailPlay(6, feed.Malformed(nil))
			})
		}
		if elapsed >= 5*time.Second {
			fixOnce.Do(func() { f.FailPlay(6, nil) })
		}
		if elapsed >= 20*time.Second {
			cancel()
		}
	}
	p, _ := newPoller(g, f, clock, nil)

	_ = p.Run(ctx)
	if g.CurrentPlay != 6 {
		t.Fatalf("expected play 6 once it parsed, got %d", g.CurrentPlay)
	}
	st := p.Status()
	if !st.IsReady() || st.CurrentPlay != 6 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestNotStartedRetriesOnBackoff(t *testing.T) {
	g := newGame(t, games.ModeLive, "")
	f := testutil.NewStubFeed()
	clock := testutil.NewFakeClock(start())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var once sync.Once
	clock.OnSleep = func(elapsed time.Duration) {
		if elapsed >= time.Minute {
			once.Do(func() { f.Add(testutil.SampleSnapshot(1, 0)) })
		}
		if elapsed >= 2*time.Minute {
			cancel()
		}
	}
	p, r := newPoller(g, f, clock, nil)

	_ = p.Run(ctx)

	sleeps := clock.Sleeps()
	if len(sleeps) < 3 || sleeps[1] != 30*time.Second || sleeps[2] != 30*time.Second {
		t.Fatalf("expected not-started backoff sleeps, got %v", sleeps)
	}
	if !g.Started() {
		t.Fatalf("expected game to start once the feed had a play")
	}
	if r.plays[0] != 0 {
		t.Fatalf("expected pre-game render before the first play")
	}
}

func TestNotStartedStatus(t *testing.T) {
	g := newGame(t, games.ModeLive, "")
	p, _ := newPoller(g, testutil.NewStubFeed(), testutil.NewFakeClock(start()), nil)

	err := p.initialise(context.Background())
	if !errors.Is(err, ErrNotStarted) || !feed.IsNotFound(err) {
		t.Fatalf("expected wrapped not-started error, got %v", err)
	}
	st := p.Status()
	if st.IsReady() || st.Started || st.ConsecutiveFailures != 1 || st.LastError == "" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestPortraitsLoadedForNewPlayers(t *testing.T) {
	g := newGame(t, games.ModeReplay, games.ReplaySequence)
	f := testutil.NewStubFeed(testutil.FinalSnapshot(1, 0))
	loader := &recordingLoader{}
	p, _ := newPoller(g, f, testutil.NewFakeClock(start()), nil, WithPortraits(loader))

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(loader.loaded) != len(testutil.SampleBoxscore()) {
		t.Fatalf("expected every new player to be loaded once, got %d", len(loader.loaded))
	}
}

func TestConfigDefaults(t *testing.T) {
	c := Config{StartDelay: -time.Second}.withDefaults()
	d := DefaultConfig()
	if c.StartDelay != 0 || c.LiveIdle != d.LiveIdle || c.FinalGrace != 120*time.Second || c.FirstReplayPlay != 1 {
		t.Fatalf("unexpected defaults %+v", c)
	}
}
