package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// Provider fetches documents from one workplace source.
// Each provider kind (gdrive, notion, slack, confluence) has exactly one
// implementation, selected through a static lookup table in the gateway.
//
// Every method maps to one upstream HTTP request, or a bounded pagination
// loop capped at the requested maximum. Implementations retry transient
// upstream failures at most twice with exponential backoff, then surface
// domain.ProviderError{Unavailable}. Rate-limit responses are surfaced as
// domain.ProviderError{RateLimited} without retrying.
type Provider interface {
	// Kind returns the provider identifier.
	Kind() domain.ProviderKind

	// Search returns documents matching the query text, most relevant
	// first as ranked by the upstream API. Results carry snippets, not
	// full content.
	Search(ctx context.Context, text string, maxResults int) ([]domain.Document, error)

	// Fetch returns one document with full content.
	// Returns domain.ProviderError{NotFound} if the id does not exist.
	Fetch(ctx context.Context, id string) (*domain.Document, error)

	// Recent returns documents modified at or after since, newest first.
	Recent(ctx context.Context, since time.Time, maxResults int) ([]domain.Document, error)
}

// ProviderSet is the static lookup table from kind to adapter.
// Kinds without a configured adapter are simply absent.
type ProviderSet map[domain.ProviderKind]Provider
