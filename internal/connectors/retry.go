package connectors

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// maxRetries is the number of retries after the initial attempt.
const maxRetries = 2

// baseBackoff is the delay before the first retry; it doubles per attempt.
const baseBackoff = 250 * time.Millisecond

// Retry runs fn up to 1+maxRetries times with exponential backoff.
// Rate-limit, not-found and unauthorized errors are never retried:
// repeating those requests cannot succeed and only burns quota.
func Retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !retryable(err) {
			return err
		}

		backoff := baseBackoff << attempt
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Kind {
		case domain.ProviderRateLimited, domain.ProviderNotFound, domain.ProviderUnauthorized:
			return false
		}
	}
	return true
}
