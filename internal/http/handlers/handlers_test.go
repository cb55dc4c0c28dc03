package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/http/middleware"
	"github.com/preston-bernstein/scorebug/internal/poller"
	"github.com/preston-bernstein/scorebug/internal/store"
	"github.com/preston-bernstein/scorebug/internal/testutil"
)

func renderedStore() *store.MemoryStore {
	ms := store.NewMemoryStore()
	ms.SetView(games.View{ID: testutil.GameID, Started: true, CurrentPlay: 12, Inning: "3", Count: "1-2"})
	ms.SetFrame([]byte("\x89PNG-frame"), time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC))
	return ms
}

func readyStatus() poller.Status {
	return poller.Status{Started: true, CurrentPlay: 12, LastSuccess: time.Now()}
}

func TestHealth(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	rr := testutil.Serve(h, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	req = req.WithContext(ctx)
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req)

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "shutting down" {
		t.Fatalf("unexpected error %q", resp["error"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewHandler(renderedStore(), renderedStore(), nil, nil)

	for _, path := range []string{"/health", "/ready", "/game", "/overlay.png"} {
		rr := testutil.Serve(h, http.MethodPost, path, nil)
		testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
		if got := rr.Header().Get("Allow"); got != http.MethodGet {
			t.Fatalf("%s: expected Allow GET, got %q", path, got)
		}
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)
	rr := testutil.Serve(h, http.MethodGet, "/games/today", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestReady(t *testing.T) {
	t.Run("no status function", func(t *testing.T) {
		h := NewHandler(nil, nil, nil, nil)
		rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("ready", func(t *testing.T) {
		h := NewHandler(nil, nil, nil, readyStatus)
		rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp map[string]any
		testutil.DecodeJSON(t, rr, &resp)
		if resp["status"] != "ready" {
			t.Fatalf("expected ready, got %v", resp["status"])
		}
		if resp["currentPlay"] != float64(12) {
			t.Fatalf("expected currentPlay 12, got %v", resp["currentPlay"])
		}
	})

	t.Run("not started", func(t *testing.T) {
		h := NewHandler(nil, nil, nil, func() poller.Status { return poller.Status{} })
		rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

		var resp map[string]string
		testutil.DecodeJSON(t, rr, &resp)
		if resp["error"] != "not ready" {
			t.Fatalf("expected not ready, got %q", resp["error"])
		}
	})

	t.Run("failing feed surfaces last error", func(t *testing.T) {
		h := NewHandler(nil, nil, nil, func() poller.Status {
			return poller.Status{Started: true, LastSuccess: time.Now(), ConsecutiveFailures: 5, LastError: "feed down"}
		})
		rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

		var resp map[string]string
		testutil.DecodeJSON(t, rr, &resp)
		if resp["error"] != "feed down" {
			t.Fatalf("expected last error, got %q", resp["error"])
		}
	})
}

func TestGame(t *testing.T) {
	h := NewHandler(renderedStore(), nil, nil, nil)

	rr := testutil.Serve(h, http.MethodGet, "/game", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var view games.View
	testutil.DecodeJSON(t, rr, &view)
	if view.ID != testutil.GameID || view.CurrentPlay != 12 || view.Count != "1-2" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestGameNotRenderedYet(t *testing.T) {
	h := NewHandler(store.NewMemoryStore(), nil, nil, nil)
	rr := testutil.Serve(h, http.MethodGet, "/game", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestGameWithoutSource(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)
	rr := testutil.Serve(h, http.MethodGet, "/game", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestOverlay(t *testing.T) {
	h := NewHandler(nil, renderedStore(), nil, nil)

	rr := testutil.Serve(h, http.MethodGet, "/overlay.png", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	if got := rr.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("expected no-store, got %q", got)
	}
	if got := rr.Header().Get("Last-Modified"); got != "Sat, 01 Jun 2024 18:00:00 GMT" {
		t.Fatalf("unexpected Last-Modified %q", got)
	}
	if rr.Body.String() != "\x89PNG-frame" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestOverlayNotRenderedYet(t *testing.T) {
	h := NewHandler(nil, store.NewMemoryStore(), nil, nil)
	rr := testutil.Serve(h, http.MethodGet, "/overlay.png", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestOverlayWithoutSource(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)
	rr := testutil.Serve(h, http.MethodGet, "/overlay.png", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestErrorsCarryRequestIDThroughMiddleware(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	h := middleware.LoggingMiddleware(logger, nil, NewHandler(nil, nil, logger, nil))

	req := httptest.NewRequest(http.MethodGet, "/game", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := testutil.ServeRequest(h, req)

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["requestId"] != "req-42" {
		t.Fatalf("expected request id in error body, got %+v", resp)
	}
}
