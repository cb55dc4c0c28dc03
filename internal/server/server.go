package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/preston-bernstein/scorebug/internal/assets"
	"github.com/preston-bernstein/scorebug/internal/config"
	"github.com/preston-bernstein/scorebug/internal/feed"
	httpserver "github.com/preston-bernstein/scorebug/internal/http"
	"github.com/preston-bernstein/scorebug/internal/http/handlers"
	"github.com/preston-bernstein/scorebug/internal/http/middleware"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/metrics"
	"github.com/preston-bernstein/scorebug/internal/overlay"
	"github.com/preston-bernstein/scorebug/internal/portrait"
	"github.com/preston-bernstein/scorebug/internal/render"
	"github.com/preston-bernstein/scorebug/internal/site"
	"github.com/preston-bernstein/scorebug/internal/snapshots"
	"github.com/preston-bernstein/scorebug/internal/store"
)

var metricsSetup = metrics.Setup

// Server streams one game after another and serves their status over HTTP.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	metricsStop   func(context.Context) error
	httpServer    httpServer
	metricsServer httpServer

	store      *store.MemoryStore
	current    *current
	feed       feed.Feed
	site       *site.Client
	fetcher    assets.Fetcher
	portraits  *portrait.Loader
	compositor *overlay.Compositor
	publisher  *overlay.Publisher
	archive    *snapshots.Writer
	encoderLog io.WriteCloser
}

// New wires the long-lived components: metrics, the feed, the renderer and the
// status server. Per-game components are built by each Stream.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(cfg, logger, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	fonts, err := render.NewFonts(cfg.Render.FontFile)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Render.WorkingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create working dir: %w", err)
	}

	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	s := &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		metricsStop:   metricsShutdown,
		metricsServer: metricsSrv,
		store:         store.NewMemoryStore(),
		current:       &current{},
		archive:       buildArchive(cfg),
		compositor:    overlay.NewCompositor(render.New(fonts)),
		publisher:     overlay.NewPublisher(cfg.Render.WorkingDir, cfg.Render.OverlayFile),
	}
	s.feed = newFeedFactory(logger, recorder).build(cfg, s.archive)
	s.fetcher = assets.NewHTTPFetcher(assets.Config{
		Timeout:   cfg.Render.AssetTimeout,
		UserAgent: cfg.Feed.UserAgent,
		Metrics:   recorder,
	})
	s.portraits = portrait.NewLoader(s.fetcher, portrait.NewCropper(cfg.Render.PhotoWidth, buildDetector(cfg), logger), cfg.Render.PlaceholderURL, logger)
	if cfg.Site.BaseURL != "" {
		s.site = site.NewClient(site.Config{BaseURL: cfg.Site.BaseURL, Timeout: cfg.Site.Timeout, Logger: logger})
	}
	if cfg.Encoder.Enabled && cfg.Encoder.LogFile != "" {
		f, err := os.OpenFile(cfg.Encoder.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open encoder log: %w", err)
		}
		s.encoderLog = f
	}
	s.httpServer = s.buildHTTPServer()
	return s, nil
}

func buildDetector(cfg config.Config) portrait.Detector {
	if cfg.Face.Command == "" {
		return portrait.Unavailable{}
	}
	return portrait.ExecDetector{Command: cfg.Face.Command, Args: cfg.Face.Args, Timeout: cfg.Face.Timeout}
}

func (s *Server) buildHTTPServer() httpServer {
	handler := handlers.NewHandler(s.store, s.store, s.logger, s.current.Status)
	var admin *handlers.AdminHandler
	if s.cfg.AdminToken != "" {
		var pruner handlers.Pruner
		if s.archive != nil {
			pruner = s.archive
		}
		admin = handlers.NewAdminHandler(s.current, pruner, s.cfg.AdminToken, s.logger)
	}
	logger := s.logger
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, s.metrics, httpserver.NewRouter(handler, admin))

	return netHTTPServer{srv: &http.Server{
		Addr:         ":" + s.cfg.HTTP.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}}
}

// Run serves status and streams games until ctx is cancelled. With a configured game id
// it streams that game once and returns.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	s.startMetrics()
	s.startServer(stop)
	defer s.gracefulShutdown()

	for {
		gameID, info, err := s.nextGame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = s.stream(ctx, gameID, info)
		if ctx.Err() != nil {
			logging.Info(s.logger, "shutdown signal received")
			return nil
		}
		if err != nil {
			logging.Error(s.logger, "stream failed", err, logging.FieldGameID, gameID)
		}
		if s.cfg.Playback.GameID != "" {
			return err
		}
		if err := sleepCtx(ctx, gameRetryDelay); err != nil {
			return nil
		}
	}
}

func (s *Server) nextGame(ctx context.Context) (string, site.GameInfo, error) {
	if id := s.cfg.Playback.GameID; id != "" {
		return id, site.GameInfo{}, nil
	}
	if s.site == nil {
		return "", site.GameInfo{}, errors.New("no game id and no website configured")
	}
	info, err := s.site.WaitForGame(ctx, s.cfg.Site.WaitInterval)
	if err != nil {
		return "", site.GameInfo{}, err
	}
	return info.GameID(), info, nil
}

func (s *Server) stream(ctx context.Context, gameID string, info site.GameInfo) error {
	st, err := s.newStream(ctx, gameID, info)
	if err != nil {
		return err
	}
	logging.Info(st.logger, "starting stream", logging.FieldMode, s.cfg.Playback.Mode)
	s.current.set(st)
	defer s.current.set(nil)
	return st.Run(ctx)
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", logging.FieldError, err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", logging.FieldError, err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.encoderLog != nil {
		_ = s.encoderLog.Close()
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", logging.FieldError, err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + cfg.Metrics.Port,
				Handler:           mux,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", "addr", srv.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", logging.FieldError, err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the status HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
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
