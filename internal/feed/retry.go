package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
	maxBackoff           = 2 * time.Second
)

// retryingFeed wraps a Feed with bounded exponential backoff and per-attempt metrics.
type retryingFeed struct {
	inner       Feed
	logger      *slog.Logger
	metrics     *metrics.Recorder
	maxAttempts int
	newBackOff  func() backoff.BackOff
}

// NewRetryingFeed wraps the given feed with retries. If maxAttempts/initial are <= 0, defaults are used.
// Malformed payloads, 404s and context cancellation are returned without retrying.
func NewRetryingFeed(inner Feed, logger *slog.Logger, recorder *metrics.Recorder, maxAttempts int, initial time.Duration) Feed {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initial <= 0 {
		initial = defaultBackoff
	}
	return &retryingFeed{
		inner:       inner,
		logger:      logger,
		metrics:     recorder,
		maxAttempts: maxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxBackoff
			b.MaxElapsedTime = 0
			return b
		},
	}
}

func (r *retryingFeed) LatestPlay(ctx context.Context, gameID string) (int, error) {
	return retry(ctx, r, OpLatest, gameID, func() (int, error) {
		return r.inner.LatestPlay(ctx, gameID)
	})
}

func (r *retryingFeed) Play(ctx context.Context, gameID string, n int) (games.Snapshot, error) {
	return retry(ctx, r, OpPlay, gameID, func() (games.Snapshot, error) {
		return r.inner.Play(ctx, gameID, n)
	}, logging.FieldPlay, n)
}

func retry[T any](ctx context.Context, r *retryingFeed, op, gameID string, call func() (T, error), args ...any) (T, error) {
	attempt := 0
	operation := func() (T, error) {
		attempt++
		start := time.Now()
		v, err := call()
		r.metrics.RecordFeedAttempt(op, time.Since(start), err)
		if err != nil && !retryable(ctx, err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxAttempts-1)), ctx)
	notify := func(err error, delay time.Duration) {
		r.logWarn(ctx, "feed retry", append([]any{
			"operation", op,
			logging.FieldGameID, gameID,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"delay_ms", delay.Milliseconds(),
			logging.FieldError, err,
		}, args...)...)
	}

	v, err := backoff.RetryNotifyWithData(operation, policy, notify)
	if err != nil && attempt >= r.maxAttempts {
		r.logWarn(ctx, "feed fetch failed", append([]any{
			"operation", op,
			logging.FieldGameID, gameID,
			"attempts", attempt,
			logging.FieldError, err,
		}, args...)...)
	}
	return v, err
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	return !IsMalformed(err) && !IsNotFound(err)
}

func (r *retryingFeed) logWarn(ctx context.Context, msg string, args ...any) {
	logging.Warn(logging.FromContext(ctx, r.logger), msg, args...)
}
