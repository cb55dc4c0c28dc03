package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/poller"
)

// ViewSource exposes the latest rendered game state.
type ViewSource interface {
	View() (games.View, bool)
}

// FrameSource exposes the latest published overlay frame.
type FrameSource interface {
	Frame() ([]byte, time.Time, bool)
}

// Handler serves the status endpoints of a running stream.
type Handler struct {
	views    ViewSource
	frames   FrameSource
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. Any source may be nil.
func NewHandler(views ViewSource, frames FrameSource, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		views:    views,
		frames:   frames,
		logger:   logger,
		statusFn: statusFn,
	}
}

// ServeHTTP dispatches on path so the handler can be mounted without a router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		h.Health(w, r)
	case "/ready":
		h.Ready(w, r)
	case "/game":
		h.Game(w, r)
	case "/overlay.png":
		h.Overlay(w, r)
	default:
		writeError(w, r, http.StatusNotFound, "not found", h.logger)
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether the game loop is running and the feed is healthy.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "currentPlay": status.CurrentPlay}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Game returns the state the last overlay was rendered from.
func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	if h.views == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no game running", h.logger)
		return
	}
	view, ok := h.views.View()
	if !ok {
		writeError(w, r, http.StatusNotFound, "game not rendered yet", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view, h.logger)
}

// Overlay returns the last published overlay frame as PNG.
func (h *Handler) Overlay(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	if h.frames == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no game running", h.logger)
		return
	}
	frame, at, ok := h.frames.Frame()
	if !ok {
		writeError(w, r, http.StatusNotFound, "overlay not rendered yet", h.logger)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(frame)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Last-Modified", at.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(frame); err != nil {
		logging.Debug(loggerFromContext(r, h.logger), "overlay write aborted", logging.FieldError, err)
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string, logger *slog.Logger) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", logger)
	return false
}
