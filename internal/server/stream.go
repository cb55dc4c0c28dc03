package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/encoder"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/overlay"
	"github.com/preston-bernstein/scorebug/internal/poller"
	"github.com/preston-bernstein/scorebug/internal/site"
)

// Stream is one game on air: its state, the playback loop that owns it, and the
// watchers that may end it.
type Stream struct {
	game    *games.Game
	overlay *overlay.Overlay
	poller  *poller.Poller
	watcher *site.Watcher
	encoder *encoder.Supervisor
	logger  *slog.Logger
}

// newStream wires a stream for gameID. info carries the website's branding and camera
// choice and is the zero value when the game was configured directly.
func (s *Server) newStream(ctx context.Context, gameID string, info site.GameInfo) (*Stream, error) {
	logger := s.logger
	if logger != nil {
		logger = logger.With(
			logging.FieldRunID, uuid.NewString(),
			logging.FieldGameID, gameID,
		)
	}

	home, away := info.Identities(ctx, s.fetcher, logger)
	game, err := games.New(games.Options{
		ID:         gameID,
		Mode:       games.Mode(s.cfg.Playback.Mode),
		ReplayMode: games.ReplayMode(s.cfg.Playback.ReplayMode),
		Resolution: s.cfg.Render.Resolution(),
		Home:       home,
		Away:       away,
	})
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	ov := overlay.New(game, s.compositor, s.publisher, s.store, s.metrics, logger)
	st := &Stream{
		game:    game,
		overlay: ov,
		poller:  poller.New(game, s.feed, ov, logger, s.metrics, s.pollerConfig(), poller.WithPortraits(s.portraits)),
		logger:  logger,
	}
	if s.site != nil && s.cfg.Playback.GameID == "" {
		st.watcher = site.NewWatcher(s.site, s.cfg.Site.PollInterval, s.cfg.Site.Misses, logger)
	}
	if s.cfg.Encoder.Enabled {
		input, tune := s.cfg.Encoder.Camera(info.Camera)
		st.encoder = encoder.NewSupervisor(encoder.Config{
			Binary:        s.cfg.Encoder.Binary,
			Input:         input,
			FineTune:      tune,
			OverlayPath:   s.publisher.Path(),
			Resolution:    s.cfg.Render.Resolution(),
			FrameRate:     s.cfg.Encoder.FrameRate,
			Main:          s.cfg.Encoder.MainOutput,
			Backup:        s.cfg.Encoder.BackupOutput,
			IntroFile:     s.cfg.Encoder.IntroFile,
			EndFile:       s.cfg.Encoder.EndFile,
			WatchInterval: s.cfg.Encoder.WatchInterval,
			Log:           s.encoderLog,
		}, logger, s.metrics)
	}
	return st, nil
}

func (s *Server) pollerConfig() poller.Config {
	p := s.cfg.Playback
	return poller.Config{
		FirstReplayPlay:   p.FirstReplayPlay,
		StartDelay:        p.StartDelay,
		LiveIdle:          p.LiveIdle,
		LiveApply:         p.LiveApply,
		RealtimeTick:      p.RealtimeTick,
		SequenceInterval:  p.SequenceInterval,
		NotStartedBackoff: p.NotStartedBackoff,
		FinalGrace:        p.FinalGrace,
	}
}

// Run publishes the pre-game overlay, starts the encoder and runs the playback loop,
// the website watcher and the encoder watcher until the game is force-ended (nil) or
// ctx is cancelled. The game is always force-ended on return.
func (st *Stream) Run(ctx context.Context) error {
	defer st.game.ForceEnd()

	if err := st.overlay.Render(ctx); err != nil {
		logging.Warn(st.logger, "initial overlay render failed", logging.FieldError, err)
	}
	if st.encoder != nil {
		if err := st.encoder.Start(ctx); err != nil {
			return fmt.Errorf("start encoder: %w", err)
		}
		// the end card still plays after ctx is cancelled
		defer st.encoder.Stop(context.WithoutCancel(ctx))
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		defer st.game.ForceEnd()
		return st.poller.Run(runCtx)
	})
	if st.watcher != nil {
		g.Go(func() error {
			return st.endedOK(st.watcher.Run(runCtx, st.game))
		})
	}
	if st.encoder != nil {
		g.Go(func() error {
			return st.endedOK(st.encoder.Watch(runCtx, st.game))
		})
	}

	err := g.Wait()
	logging.Info(st.logger, "stream finished", logging.FieldPlay, st.game.CurrentPlay)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// endedOK drops the cancellation error a watcher returns because the game ended.
func (st *Stream) endedOK(err error) error {
	if st.game.Ended() && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Game exposes the stream's game state.
func (st *Stream) Game() *games.Game {
	return st.game
}
