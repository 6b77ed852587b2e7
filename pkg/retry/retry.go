// Package retry runs operations with exponential backoff.
//
// It is used for infrastructure connections (the status history database).
// The OpenSky client never retries on its own: the tracker treats a failed
// fetch as a signal to fall back, not to try harder.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"
)

// Config configures retry behavior with exponential backoff.
type Config struct {
	// MaxRetries is the maximum number of retry attempts (default: 3)
	MaxRetries int

	// InitialDelay is the initial backoff delay (default: 1 second)
	InitialDelay time.Duration

	// MaxDelay is the maximum backoff delay (default: 60 seconds)
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier (default: 2.0 for exponential)
	Multiplier float64

	// RespectRetryAfter uses the error's retry hint if available (default: true)
	RespectRetryAfter bool
}

// DefaultConfig returns sensible defaults for retry behavior.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		InitialDelay:      time.Second,
		MaxDelay:          60 * time.Second,
		Multiplier:        2.0,
		RespectRetryAfter: true,
	}
}

// RetryAfterHinter is implemented by errors that carry a server-provided
// wait time, such as opensky.RateLimitError.
type RetryAfterHinter interface {
	RetryAfterHint() time.Duration
}

// Do executes fn until it succeeds, the retries are exhausted, or ctx is done.
//
// Example usage:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoResult is Do for functions that return a value along with an error.
// On failure the last returned value is passed back with the error.
func DoResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("retry cancelled: %w", err)
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}
		result = res
		lastErr = err

		if attempt == cfg.MaxRetries {
			break
		}

		// delay = min(InitialDelay * Multiplier^attempt, MaxDelay)
		delay = time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt)))
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		var hinter RetryAfterHinter
		if cfg.RespectRetryAfter && errors.As(err, &hinter) {
			if hint := hinter.RetryAfterHint(); hint > 0 {
				delay = hint
			}
		}

		log.Printf("attempt %d/%d failed: %v (retry in %v)", attempt+1, cfg.MaxRetries+1, err, delay)
	}

	return result, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}
