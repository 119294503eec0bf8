// Package retry provides exponential backoff for transient failures in
// outbound infrastructure calls.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mishwarapp/mishwar/internal/pkg/logger"
)

// Config holds retry behavior parameters.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     bool
	// Retryable decides whether an error is worth another attempt.
	// Nil means every error is retryable.
	Retryable func(error) bool
}

// DefaultConfig suits short-lived broker and cache hiccups.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Retrier executes functions with exponential backoff.
type Retrier struct {
	config Config
}

// New creates a retrier with the given configuration.
func New(config Config) *Retrier {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.Multiplier < 1 {
		config.Multiplier = 2.0
	}
	return &Retrier{config: config}
}

// Do runs fn until it succeeds, the attempts are exhausted, or the
// context is cancelled. The last error is returned.
func (r *Retrier) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.delayFor(attempt)
			logger.Debug("Retrying operation",
				logger.String("operation", name),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: retries interrupted: %w", name, ctx.Err())
			case <-time.After(delay):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if r.config.Retryable != nil && !r.config.Retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%s: %d attempts exhausted: %w", name, r.config.MaxRetries+1, lastErr)
}

func (r *Retrier) delayFor(attempt int) time.Duration {
	delay := float64(r.config.BaseDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if max := float64(r.config.MaxDelay); r.config.MaxDelay > 0 && delay > max {
		delay = max
	}
	if r.config.Jitter {
		// Up to 25% randomization spreads out competing retries.
		delay += delay * 0.25 * rand.Float64()
	}
	return time.Duration(delay)
}
