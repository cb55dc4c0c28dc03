package wbsc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/feed"
	"github.com/preston-bernstein/scorebug/internal/logging"
)

// Archiver receives every payload the client decoded successfully.
type Archiver interface {
	WritePlay(gameID string, play int, payload []byte) error
	WriteLatest(gameID string, play int) error
}

// Config controls how the client reaches the game data endpoint.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Archive    Archiver
	Logger     *slog.Logger
}

// Client fetches play-by-play documents from the WBSC game data endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient httpDoer
	archive    Archiver
	logger     *slog.Logger
}

var _ feed.Feed = (*Client)(nil)

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		userAgent:  resolveUserAgent(cfg.UserAgent),
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		archive:    cfg.Archive,
		logger:     cfg.Logger,
	}
}

// LatestPlay returns the most recent play index published for the game.
func (c *Client) LatestPlay(ctx context.Context, gameID string) (int, error) {
	body, err := c.get(ctx, feed.OpLatest, fmt.Sprintf("%s/%s/latest.json", c.baseURL, gameID))
	if err != nil {
		return 0, err
	}
	n, err := DecodeLatest(bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	if c.archive != nil {
		if err := c.archive.WriteLatest(gameID, n); err != nil {
			logging.Warn(c.logger, "archive latest failed", logging.FieldGameID, gameID, logging.FieldError, err)
		}
	}
	return n, nil
}

// Play returns the game state as of play n.
func (c *Client) Play(ctx context.Context, gameID string, n int) (games.Snapshot, error) {
	body, err := c.get(ctx, feed.OpPlay, fmt.Sprintf("%s/%s/play%d.json", c.baseURL, gameID, n))
	if err != nil {
		return games.Snapshot{}, err
	}
	snap, err := DecodePlay(bytes.NewReader(body), n)
	if err != nil {
		return games.Snapshot{}, err
	}
	if c.archive != nil {
		if err := c.archive.WritePlay(gameID, n, body); err != nil {
			logging.Warn(c.logger, "archive play failed", logging.FieldGameID, gameID, logging.FieldPlay, n, logging.FieldError, err)
		}
	}
	return snap, nil
}

func (c *Client) get(ctx context.Context, op, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &feed.StatusError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
}
