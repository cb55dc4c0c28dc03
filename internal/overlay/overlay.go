package overlay

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/metrics"
)

// FrameSink receives every published frame and the state it was rendered from.
type FrameSink interface {
	SetFrame(png []byte, at time.Time)
	SetView(v games.View)
}

// Overlay renders a game and publishes the result.
type Overlay struct {
	game       *games.Game
	compositor *Compositor
	publisher  *Publisher
	sink       FrameSink
	metrics    *metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// New wires an overlay for one game. sink, recorder and logger may be nil.
func New(game *games.Game, compositor *Compositor, publisher *Publisher, sink FrameSink, recorder *metrics.Recorder, logger *slog.Logger) *Overlay {
	return &Overlay{
		game:       game,
		compositor: compositor,
		publisher:  publisher,
		sink:       sink,
		metrics:    recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Render composes and publishes the current frame. It must run on the goroutine that
// updates the game.
func (o *Overlay) Render(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := o.now()
	frame, err := o.publisher.Publish(o.compositor.Compose(o.game))
	elapsed := o.now().Sub(start)
	o.metrics.RecordRender(elapsed, err)
	if err != nil {
		logging.Error(o.logger, "overlay render failed", err,
			logging.FieldGameID, o.game.ID,
			logging.FieldPlay, o.game.CurrentPlay,
		)
		return err
	}

	if o.sink != nil {
		o.sink.SetFrame(frame, start)
		o.sink.SetView(o.game.View())
	}
	logging.Debug(o.logger, "overlay published",
		logging.FieldGameID, o.game.ID,
		logging.FieldPlay, o.game.CurrentPlay,
		logging.FieldPath, o.publisher.Path(),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
	return nil
}
