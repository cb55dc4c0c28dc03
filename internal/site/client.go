package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/scorebug/internal/logging"
)

const (
	currentScorePath   = "/game/current_score"
	defaultTimeout     = 30 * time.Second
	defaultWaitEvery   = 60 * time.Second
	maxCurrentScoreLen = 1 << 20
	maxErrorBody       = 512
)

// ErrNoGame is returned by WaitForGame attempts while nothing streamable is on air.
var ErrNoGame = errors.New("no streamable game")

// Config controls how the website is reached.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client reads the website's current-score endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient constructs a website client.
func NewClient(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    client,
		logger:  cfg.Logger,
	}
}

// CurrentScore fetches the website's view of the game on air.
func (c *Client) CurrentScore(ctx context.Context) (GameInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+currentScorePath, nil)
	if err != nil {
		return GameInfo{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return GameInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return GameInfo{}, fmt.Errorf("current score: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var info GameInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCurrentScoreLen)).Decode(&info); err != nil {
		return GameInfo{}, fmt.Errorf("decode current score: %w", err)
	}
	return info, nil
}

// WaitForGame polls every interval until a streamable game is listed or ctx ends.
// A non-positive interval uses one minute.
func (c *Client) WaitForGame(ctx context.Context, interval time.Duration) (GameInfo, error) {
	if interval <= 0 {
		interval = defaultWaitEvery
	}
	op := func() (GameInfo, error) {
		info, err := c.CurrentScore(ctx)
		if err != nil {
			return GameInfo{}, err
		}
		if !info.Streamable() {
			return GameInfo{}, ErrNoGame
		}
		return info, nil
	}
	notify := func(err error, next time.Duration) {
		if errors.Is(err, ErrNoGame) {
			logging.Debug(c.logger, "no game on air", logging.FieldDurationMS, next.Milliseconds())
			return
		}
		logging.Warn(c.logger, "current score unavailable", logging.FieldError, err)
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	info, err := backoff.RetryNotifyWithData(op, b, notify)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return GameInfo{}, ctxErr
		}
		return GameInfo{}, err
	}
	logging.Info(c.logger, "game found", logging.FieldGameID, info.GameID())
	return info, nil
}
