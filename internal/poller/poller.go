// Package poller drives a game through the feed: it initialises the game, applies
// plays at the cadence of the selected playback mode and re-renders after each one.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/domain/players"
	"github.com/preston-bernstein/scorebug/internal/feed"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/metrics"
	"github.com/preston-bernstein/scorebug/internal/timeutil"
)

// ErrNotStarted is returned by the initialisation step when the first snapshot is unavailable.
var ErrNotStarted = errors.New("game not started")

const (
	skipMalformed = "malformed"
	skipMissing   = "missing"
	readyFailures = 3
)

// Renderer publishes the overlay for the game's current state.
type Renderer interface {
	Render(ctx context.Context) error
}

// PortraitLoader attaches portraits to newly seen players.
type PortraitLoader interface {
	LoadAll(ctx context.Context, ps []*players.Player)
}

// Config holds the loop cadences.
type Config struct {
	// FirstReplayPlay is where replays start.
	FirstReplayPlay int
	// StartDelay is waited once after the initial render so the encoder can pick it up.
	StartDelay time.Duration
	LiveIdle   time.Duration
	LiveApply  time.Duration
	// RealtimeTick is the replay-realtime polling cadence.
	RealtimeTick      time.Duration
	SequenceInterval  time.Duration
	NotStartedBackoff time.Duration
	FinalGrace        time.Duration
}

// DefaultConfig returns the production cadences.
func DefaultConfig() Config {
	return Config{
		FirstReplayPlay:   1,
		StartDelay:        10 * time.Second,
		LiveIdle:          time.Second,
		LiveApply:         3 * time.Second,
		RealtimeTick:      500 * time.Millisecond,
		SequenceInterval:  2 * time.Second,
		NotStartedBackoff: 30 * time.Second,
		FinalGrace:        120 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FirstReplayPlay <= 0 {
		c.FirstReplayPlay = d.FirstReplayPlay
	}
	if c.StartDelay < 0 {
		c.StartDelay = 0
	}
	if c.LiveIdle <= 0 {
		c.LiveIdle = d.LiveIdle
	}
	if c.LiveApply <= 0 {
		c.LiveApply = d.LiveApply
	}
	if c.RealtimeTick <= 0 {
		c.RealtimeTick = d.RealtimeTick
	}
	if c.SequenceInterval <= 0 {
		c.SequenceInterval = d.SequenceInterval
	}
	if c.NotStartedBackoff <= 0 {
		c.NotStartedBackoff = d.NotStartedBackoff
	}
	if c.FinalGrace <= 0 {
		c.FinalGrace = d.FinalGrace
	}
	return c
}

// Poller is the only writer of its game.
type Poller struct {
	game     *games.Game
	feed     feed.Feed
	renderer Renderer
	loader   PortraitLoader
	logger   *slog.Logger
	metrics  *metrics.Recorder
	cfg      Config

	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	// next is the replay cursor: the next play index to fetch.
	next int
	// pending holds a fetched realtime play whose timestamp is still in the future.
	pending *games.Snapshot
	// replay clock anchors
	virtualStart int64
	wallStart    time.Time
	finalSince   time.Time

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the poller loop.
type Status struct {
	Started             bool
	CurrentPlay         int
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the game is running and the feed is not failing repeatedly.
func (s Status) IsReady() bool {
	if !s.Started || s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < readyFailures
}

// Option customises a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock and sleep function, mainly for tests.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithPortraits loads portraits for players as they appear.
func WithPortraits(loader PortraitLoader) Option {
	return func(p *Poller) {
		p.loader = loader
	}
}

// New constructs a Poller for game.
func New(game *games.Game, source feed.Feed, renderer Renderer, logger *slog.Logger, recorder *metrics.Recorder, cfg Config, opts ...Option) *Poller {
	p := &Poller{
		game:     game,
		feed:     source,
		renderer: renderer,
		logger:   logger,
		metrics:  recorder,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run renders the pre-game overlay and loops until the game is force-ended (nil) or
// ctx is cancelled (ctx.Err()).
func (p *Poller) Run(ctx context.Context) error {
	p.logInfo(ctx, "poller started",
		logging.FieldMode, string(p.game.Mode),
		logging.FieldReplayMode, string(p.game.ReplayMode),
	)
	p.render(ctx)
	if err := p.sleep(ctx, p.cfg.StartDelay); err != nil {
		return err
	}

	for {
		if p.game.Ended() {
			p.logInfo(ctx, "poller stopped", logging.FieldPlay, p.game.CurrentPlay)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var wait time.Duration
		if !p.game.Started() {
			if err := p.initialise(ctx); err != nil {
				p.logWarn(ctx, "game has not started, retrying", logging.FieldError, err)
				wait = p.cfg.NotStartedBackoff
			}
		} else {
			p.checkFinal(ctx)
			if p.game.Ended() {
				continue
			}
			wait = p.step(ctx)
		}
		if err := p.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// initialise fetches the first snapshot: the latest play when live, the first replay
// play otherwise.
func (p *Poller) initialise(ctx context.Context) error {
	start := p.now()
	p.recordAttempt(start)

	n := p.cfg.FirstReplayPlay
	if p.game.Mode == games.ModeLive {
		latest, err := p.feed.LatestPlay(ctx, p.game.ID)
		if err != nil {
			p.recordFailure(err, start)
			return fmt.Errorf("%w: %w", ErrNotStarted, err)
		}
		n = latest
	}
	snap, err := p.feed.Play(ctx, p.game.ID, n)
	p.metrics.RecordPollerCycle(p.now().Sub(start), err)
	if err != nil {
		p.recordFailure(err, start)
		return fmt.Errorf("%w: %w", ErrNotStarted, err)
	}

	p.apply(ctx, snap)
	p.next = snap.Play + 1
	p.virtualStart = snap.Timestamp
	p.wallStart = p.now()
	p.recordSuccess(start)
	p.logInfo(ctx, "game initialised", logging.FieldPlay, snap.Play)
	return nil
}

// checkFinal ends replays as soon as the final marker is seen and live games once it
// has persisted for the grace period.
func (p *Poller) checkFinal(ctx context.Context) {
	if !p.game.IsFinal() {
		p.finalSince = time.Time{}
		return
	}
	if p.game.Mode == games.ModeReplay {
		p.logInfo(ctx, "replay reached final play", logging.FieldPlay, p.game.CurrentPlay)
		p.game.ForceEnd()
		return
	}
	now := p.now()
	if p.finalSince.IsZero() {
		p.finalSince = now
		p.logInfo(ctx, "game final, waiting for grace period", logging.FieldPlay, p.game.CurrentPlay)
		return
	}
	if now.Sub(p.finalSince) > p.cfg.FinalGrace {
		p.logInfo(ctx, "final grace period elapsed", logging.FieldPlay, p.game.CurrentPlay)
		p.game.ForceEnd()
	}
}

// step runs one cycle of the active playback mode and returns how long to wait.
func (p *Poller) step(ctx context.Context) time.Duration {
	if p.game.Mode == games.ModeLive {
		return p.stepLive(ctx)
	}
	if p.game.ReplayMode == games.ReplaySequence {
		return p.stepSequence(ctx)
	}
	return p.stepRealtime(ctx)
}

func (p *Poller) stepLive(ctx context.Context) time.Duration {
	start := p.now()
	p.recordAttempt(start)
	latest, err := p.feed.LatestPlay(ctx, p.game.ID)
	if err != nil {
		p.cycleFailed(ctx, start, p.game.CurrentPlay, err)
		return p.cfg.LiveIdle
	}
	if latest <= p.game.CurrentPlay {
		p.cycleDone(start)
		return p.cfg.LiveIdle
	}
	snap, err := p.feed.Play(ctx, p.game.ID, latest)
	if err != nil {
		p.cycleFailed(ctx, start, latest, err)
		return p.cfg.LiveIdle
	}
	p.apply(ctx, snap)
	p.cycleDone(start)
	return p.cfg.LiveApply
}

func (p *Poller) stepSequence(ctx context.Context) time.Duration {
	start := p.now()
	p.recordAttempt(start)
	snap, err := p.feed.Play(ctx, p.game.ID, p.next)
	switch {
	case err == nil:
		p.apply(ctx, snap)
		p.next++
		p.cycleDone(start)
		return p.cfg.SequenceInterval
	case feed.IsMalformed(err):
		p.skip(ctx, p.next, skipMalformed, err)
		p.next++
		p.cycleDone(start)
		return 0
	case p.missingBeforeLatest(ctx, p.next, err):
		p.skip(ctx, p.next, skipMissing, err)
		p.next++
		p.cycleDone(start)
		return 0
	default:
		p.cycleFailed(ctx, start, p.next, err)
		return p.cfg.SequenceInterval
	}
}

// stepRealtime applies, in order, every play whose timestamp is at or before the
// virtual clock.
func (p *Poller) stepRealtime(ctx context.Context) time.Duration {
	start := p.now()
	p.recordAttempt(start)
	virtual := timeutil.Advance(p.virtualStart, start.Sub(p.wallStart))

	for ctx.Err() == nil && !p.game.Ended() {
		snap, err := p.nextRealtime(ctx)
		if err != nil {
			if feed.IsMalformed(err) {
				p.skip(ctx, p.next, skipMalformed, err)
				p.next++
				continue
			}
			if p.missingBeforeLatest(ctx, p.next, err) {
				p.skip(ctx, p.next, skipMissing, err)
				p.next++
				continue
			}
			if feed.IsNotFound(err) {
				// not published yet
				break
			}
			p.cycleFailed(ctx, start, p.next, err)
			return p.cfg.RealtimeTick
		}
		if snap.Timestamp > virtual {
			p.pending = &snap
			break
		}
		p.pending = nil
		p.apply(ctx, snap)
		p.next++
		if p.game.IsFinal() {
			// checkFinal ends the replay before anything after the final play is applied
			break
		}
	}
	p.cycleDone(start)
	return p.cfg.RealtimeTick
}

func (p *Poller) nextRealtime(ctx context.Context) (games.Snapshot, error) {
	if p.pending != nil && p.pending.Play == p.next {
		return *p.pending, nil
	}
	return p.feed.Play(ctx, p.game.ID, p.next)
}

// apply reconciles one snapshot and re-renders.
func (p *Poller) apply(ctx context.Context, snap games.Snapshot) {
	created := p.game.Update(snap)
	if p.loader != nil && len(created) > 0 {
		p.loader.LoadAll(ctx, created)
	}
	p.metrics.RecordPlayApplied(string(p.game.Mode))
	p.setCurrentPlay(snap.Play)
	p.logInfo(ctx, "play applied",
		logging.FieldPlay, snap.Play,
		logging.FieldCount, len(created),
	)
	p.render(ctx)
}

func (p *Poller) render(ctx context.Context) {
	if p.renderer == nil {
		return
	}
	if err := p.renderer.Render(ctx); err != nil && ctx.Err() == nil {
		p.logWarn(ctx, "render failed", logging.FieldPlay, p.game.CurrentPlay, logging.FieldError, err)
	}
}

func (p *Poller) skip(ctx context.Context, play int, reason string, err error) {
	p.metrics.RecordPlaySkipped(reason)
	p.logWarn(ctx, "skipping play", logging.FieldPlay, play, logging.FieldReason, reason, logging.FieldError, err)
}

// missingBeforeLatest reports whether a 404 for play n is a hole in the recording
// rather than a play that has not been published yet. Only a feed that already has a
// later play counts as a hole.
func (p *Poller) missingBeforeLatest(ctx context.Context, n int, err error) bool {
	if !feed.IsNotFound(err) {
		return false
	}
	latest, lerr := p.feed.LatestPlay(ctx, p.game.ID)
	if lerr != nil {
		return false
	}
	return n < latest
}

func (p *Poller) cycleDone(start time.Time) {
	p.metrics.RecordPollerCycle(p.now().Sub(start), nil)
	p.recordSuccess(start)
}

func (p *Poller) cycleFailed(ctx context.Context, start time.Time, play int, err error) {
	p.metrics.RecordPollerCycle(p.now().Sub(start), err)
	p.recordFailure(err, start)
	if ctx.Err() != nil {
		return
	}
	p.logWarn(ctx, "feed poll failed",
		logging.FieldPlay, play,
		logging.FieldError, err,
	)
}

func (p *Poller) log(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, p.logger)
}

func (p *Poller) logInfo(ctx context.Context, msg string, args ...any) {
	logging.Info(p.log(ctx), msg, append([]any{logging.FieldGameID, p.game.ID}, args...)...)
}

func (p *Poller) logWarn(ctx context.Context, msg string, args ...any) {
	logging.Warn(p.log(ctx), msg, append([]any{logging.FieldGameID, p.game.ID}, args...)...)
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.Started = true
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

func (p *Poller) setCurrentPlay(n int) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.CurrentPlay = n
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
