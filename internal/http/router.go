package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/scorebug/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux. admin may be nil.
func NewRouter(handler *handlers.Handler, admin *handlers.AdminHandler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/ready", handler.Ready)
	mux.HandleFunc("/game", handler.Game)
	mux.HandleFunc("/overlay.png", handler.Overlay)
	if admin != nil {
		mux.HandleFunc("/admin/end", admin.EndGame)
		mux.HandleFunc("/admin/prune", admin.PruneArchive)
	}
	return mux
}
