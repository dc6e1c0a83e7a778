// Package retry runs remote calls with bounded, deterministic exponential
// backoff and a per-status-code policy.
//
// Policy, evaluated on every failure:
//   - 401: never retried, returned at once as an AuthError.
//   - 404: never retried, reported as "no content" (found == false, nil error).
//   - 429: retried; a Retry-After directive overrides the computed delay.
//   - 5xx, network failures and anything else: retried with backoff.
//
// The delay before retry i (1-indexed) is BaseDelay * 2^(i-1). There is no
// jitter so tests can assert exact delays.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/slurpgg/bloom-wikisync/internal/logging"
)

// Defaults used when a Config field is zero.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Config configures the retry budget.
type Config struct {
	// MaxAttempts is the number of attempts including the first one.
	MaxAttempts int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
}

// DefaultConfig returns the standard budget: 3 attempts, 1s base.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// StatusCoder is implemented by errors that carry an HTTP-style status.
type StatusCoder interface {
	StatusCode() int
}

// RetryAfterer is implemented by errors that carry an explicit retry delay.
type RetryAfterer interface {
	RetryAfter() (time.Duration, bool)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Observer is notified before every backoff wait. reason is one of
// "rate_limited", "server_error", "network", "other".
type Observer func(label string, attempt int, reason string, delay time.Duration)

// Executor applies the retry policy to operations.
type Executor struct {
	cfg      Config
	logger   *slog.Logger
	sleep    SleepFunc
	observer Observer
}

// Option customizes an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for retry notices.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithSleep replaces the wait function (tests record delays with it).
func WithSleep(fn SleepFunc) Option {
	return func(e *Executor) { e.sleep = fn }
}

// WithObserver registers a callback invoked before each backoff wait.
func WithObserver(fn Observer) Option {
	return func(e *Executor) { e.observer = fn }
}

// NewExecutor creates an executor. Zero config fields take the defaults.
func NewExecutor(cfg Config, opts ...Option) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	e := &Executor{cfg: cfg, sleep: sleepContext}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrDiscard(e.logger)
	return e
}

// Config returns the effective configuration.
func (e *Executor) Config() Config {
	return e.cfg
}

// Backoff returns the computed delay before retry number attempt (1-indexed).
func (e *Executor) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return e.cfg.BaseDelay * time.Duration(1<<(attempt-1))
}

// Do runs op under the retry policy.
//
// It returns (value, true, nil) on success and (zero, false, nil) when the
// content source reports not-found. Every other outcome is an error: an
// *AuthError for 401, an *ExhaustedError once the attempt budget is spent,
// or the context error if ctx is cancelled while waiting.
func Do[T any](ctx context.Context, e *Executor, label string, op func(context.Context) (T, error)) (T, bool, error) {
	var zero T

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, true, nil
		}

		status := statusOf(err)
		switch {
		case status == http.StatusUnauthorized:
			return zero, false, &AuthError{Label: label, Cause: err}
		case status == http.StatusNotFound:
			e.logger.Warn("content not found, skipping", slog.String("label", label), slog.Int("status", status))
			return zero, false, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, false, ctxErr
		}

		// Don't wait after the last attempt
		if attempt == e.cfg.MaxAttempts {
			return zero, false, &ExhaustedError{Label: label, Attempts: attempt, Last: err}
		}

		delay := e.Backoff(attempt)
		reason := classify(status, err)
		if reason == "rate_limited" {
			if d, ok := retryAfterOf(err); ok {
				delay = d
			}
		}

		e.logger.Warn("remote call failed, retrying",
			slog.String("label", label),
			slog.String("reason", reason),
			slog.Int("status", status),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", e.cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
		if e.observer != nil {
			e.observer(label, attempt, reason, delay)
		}

		if err := e.sleep(ctx, delay); err != nil {
			return zero, false, err
		}
	}

	// Unreachable: the loop always returns on its last attempt.
	return zero, false, &ExhaustedError{Label: label, Attempts: e.cfg.MaxAttempts}
}

func statusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

func retryAfterOf(err error) (time.Duration, bool) {
	var ra RetryAfterer
	if errors.As(err, &ra) {
		return ra.RetryAfter()
	}
	return 0, false
}

func classify(status int, err error) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 500:
		return "server_error"
	case status == 0 && err != nil:
		return "network"
	default:
		return "other"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
