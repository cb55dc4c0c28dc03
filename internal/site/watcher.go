package site

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/scorebug/internal/logging"
)

const (
	defaultWatchEvery = 15 * time.Second
	defaultMisses     = 3
)

// Terminator is the shared force-end flag of a running game.
type Terminator interface {
	ForceEnd()
	Ended() bool
}

// ScoreSource is the part of Client the watcher needs.
type ScoreSource interface {
	CurrentScore(ctx context.Context) (GameInfo, error)
}

// Watcher ends the stream once the website stops listing a game.
type Watcher struct {
	source   ScoreSource
	interval time.Duration
	misses   int
	logger   *slog.Logger
	sleep    func(context.Context, time.Duration) error
}

// NewWatcher polls source every interval and gives up after misses consecutive
// observations without a game. Zero values use 15s and 3.
func NewWatcher(source ScoreSource, interval time.Duration, misses int, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = defaultWatchEvery
	}
	if misses <= 0 {
		misses = defaultMisses
	}
	return &Watcher{source: source, interval: interval, misses: misses, logger: logger, sleep: sleepCtx}
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

// Run polls until game ends or ctx is cancelled. Request errors are logged and do not
// count as misses.
func (w *Watcher) Run(ctx context.Context, game Terminator) error {
	misses := 0
	for !game.Ended() {
		if err := w.sleep(ctx, w.interval); err != nil {
			return err
		}
		if game.Ended() {
			break
		}
		info, err := w.source.CurrentScore(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn(w.logger, "current score unavailable", logging.FieldError, err)
			continue
		}
		if info.HasGame() {
			misses = 0
			continue
		}
		misses++
		logging.Info(w.logger, "no game listed on the website", logging.FieldCount, misses)
		if misses >= w.misses {
			logging.Info(w.logger, "website no longer lists the game, ending stream")
			game.ForceEnd()
		}
	}
	return nil
}
