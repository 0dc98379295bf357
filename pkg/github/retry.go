package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v66/github"
)

// RetryConfig defines configuration for retry logic
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// MaxRateLimitWait caps how long a rate-limited call waits for the reset time
	MaxRateLimitWait time.Duration
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:       3,
		InitialDelay:     time.Second,
		MaxDelay:         30 * time.Second,
		BackoffFactor:    2.0,
		MaxRateLimitWait: 5 * time.Minute,
	}
}

// NoRetryConfig disables retries entirely
func NoRetryConfig() *RetryConfig {
	return &RetryConfig{MaxRetries: 0}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

// WithRetry executes an operation, retrying rate-limit and network failures
// with exponential backoff. Only *GitHubError values are ever retried.
func WithRetry(ctx context.Context, operation RetryableOperation, config *RetryConfig) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}

			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		var ghErr *GitHubError
		if !errors.As(err, &ghErr) || !ghErr.IsRetryable() {
			return err
		}

		if attempt == config.MaxRetries {
			break
		}

		// Wait until the primary rate limit resets when the wait is reasonable
		if ghErr.Type == ErrorTypeRateLimit {
			var rateLimitErr *github.RateLimitError
			if errors.As(ghErr.Cause, &rateLimitErr) {
				waitTime := time.Until(rateLimitErr.Rate.Reset.Time)
				if waitTime > 0 && waitTime < config.MaxRateLimitWait {
					if err := sleep(ctx, waitTime); err != nil {
						return err
					}
				}
			}
		}
	}

	if config.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
