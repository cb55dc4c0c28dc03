package handlers

import (
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/scorebug/internal/http/requestutil"
	"github.com/preston-bernstein/scorebug/internal/logging"
)

// Current is the stream the admin endpoints act on. An empty GameID means no game is running.
type Current interface {
	GameID() string
	ForceEnd()
	Ended() bool
}

// Pruner removes stale archived games.
type Pruner interface {
	Prune(keep string) ([]string, error)
}

// AdminHandler exposes operator endpoints guarded by a bearer token.
type AdminHandler struct {
	game   Current
	pruner Pruner
	token  string
	logger *slog.Logger
}

// NewAdminHandler constructs an AdminHandler. An empty token disables every endpoint.
func NewAdminHandler(game Current, pruner Pruner, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		game:   game,
		pruner: pruner,
		token:  token,
		logger: logger,
	}
}

// EndGame raises the force-end flag so every stream task winds down.
func (h *AdminHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	gameID := h.currentID()
	if gameID == "" {
		writeError(w, r, http.StatusServiceUnavailable, "no game running", logger)
		return
	}
	already := h.game.Ended()
	h.game.ForceEnd()
	if !already {
		logging.Info(logger, "admin ended game", logging.FieldGameID, gameID)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ended", "gameId": gameID, "alreadyEnded": already}, logger)
}

// PruneArchive deletes archived games older than the retention window, keeping the current one.
func (h *AdminHandler) PruneArchive(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	if h.pruner == nil {
		writeError(w, r, http.StatusServiceUnavailable, "archive not configured", logger)
		return
	}
	removed, err := h.pruner.Prune(h.currentID())
	if err != nil {
		logging.Warn(logger, "admin prune failed", logging.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "failed to prune archive", logger)
		return
	}
	if removed == nil {
		removed = []string{}
	}
	logging.Info(logger, "admin pruned archive", logging.FieldCount, len(removed))
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "removed": removed}, logger)
}

func (h *AdminHandler) currentID() string {
	if h.game == nil {
		return ""
	}
	return h.game.GameID()
}

func (h *AdminHandler) guard(w http.ResponseWriter, r *http.Request) bool {
	if !requireMethod(w, r, http.MethodPost, h.logger) {
		return false
	}
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return false
	}
	return true
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	return r.Header.Get("Authorization") == "Bearer "+h.token
}
