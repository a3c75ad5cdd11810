package connectors

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// RateLimitConfig holds rate limiting configuration for one provider.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative defaults per provider, well
// below each upstream's published limits to avoid eating the user's quota.
var DefaultRateLimits = map[domain.ProviderKind]RateLimitConfig{
	domain.ProviderGoogleDrive: {RequestsPerSecond: 8.0, BurstSize: 10},
	domain.ProviderNotion:      {RequestsPerSecond: 3.0, BurstSize: 5},
	domain.ProviderSlack:       {RequestsPerSecond: 1.0, BurstSize: 3},
	domain.ProviderConfluence:  {RequestsPerSecond: 5.0, BurstSize: 10},
}

// RateLimiter throttles requests to one upstream API using a token
// bucket, with an additional backoff window after 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter with the defaults for the given kind.
func NewRateLimiter(kind domain.ProviderKind) *RateLimiter {
	cfg, ok := DefaultRateLimits[kind]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a limiter with custom configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request may be made, honouring both the token
// bucket and any backoff set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff window after a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}
	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}
