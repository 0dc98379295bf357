package github

import (
	"context"
	"sync"
	"time"

	"github.com/google/go-github/v66/github"
)

// RateLimiterStats provides statistics about rate limiter usage
type RateLimiterStats struct {
	RemainingRequests int           `json:"remaining_requests"`
	ResetTime         time.Time     `json:"reset_time"`
	TotalWaits        int64         `json:"total_waits"`
	TotalDelayTime    time.Duration `json:"total_delay_time"`
}

// RateLimiterConfig configures the rate limiter behavior
type RateLimiterConfig struct {
	// MinRemainingRequests is the threshold below which calls are spaced out
	MinRemainingRequests int

	// MaxDelay caps a single wait; a call that still hits the limit is left to the retry policy
	MaxDelay time.Duration
}

// DefaultRateLimiterConfig returns a default rate limiter configuration
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MinRemainingRequests: 50,
		MaxDelay:             30 * time.Second,
	}
}

// RateLimiter spaces out API calls once the remaining quota reported by GitHub runs low.
// It spreads the remaining requests evenly over the time left until the reset.
type RateLimiter struct {
	config *RateLimiterConfig
	mu     sync.Mutex
	now    func() time.Time

	remaining int
	resetTime time.Time
	known     bool

	stats RateLimiterStats
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimiterConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}
	return &RateLimiter{
		config: config,
		now:    time.Now,
	}
}

// Wait blocks until it's safe to make an API call
func (rl *RateLimiter) Wait(ctx context.Context) error {
	delay := rl.GetDelay()
	if delay <= 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	rl.stats.TotalWaits++
	rl.stats.TotalDelayTime += delay
	rl.mu.Unlock()

	return sleep(ctx, delay)
}

// Update records the rate limit information of a response
func (rl *RateLimiter) Update(resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.remaining = resp.Rate.Remaining
	rl.resetTime = resp.Rate.Reset.Time
	rl.known = true
	rl.stats.RemainingRequests = rl.remaining
	rl.stats.ResetTime = rl.resetTime
}

// GetDelay returns the delay to apply before the next API call
func (rl *RateLimiter) GetDelay() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.known || rl.remaining > rl.config.MinRemainingRequests {
		return 0
	}

	untilReset := rl.resetTime.Sub(rl.now())
	if untilReset <= 0 {
		return 0
	}

	delay := untilReset
	if rl.remaining > 0 {
		delay = untilReset / time.Duration(rl.remaining+1)
	}
	if delay > rl.config.MaxDelay {
		delay = rl.config.MaxDelay
	}
	return delay
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.stats
}
