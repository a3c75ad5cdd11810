package driving

import (
	"context"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// SearchRequest is a validated search_documents call.
type SearchRequest struct {
	Query      string
	Sources    []domain.ProviderKind
	MaxResults int
}

// SearchResponse carries merged results plus per-source warnings.
// Warnings name sources that failed or were skipped for lack of scope;
// their presence does not make the response an error.
type SearchResponse struct {
	Results  []domain.Document
	Warnings []string
}

// UpdatesRequest is a validated get_recent_updates call.
type UpdatesRequest struct {
	Sources    []domain.ProviderKind
	Days       int
	MaxResults int
}

// SummarizeRequest is a validated summarize_content call.
// DocumentIDs are composite "source:id" identifiers.
type SummarizeRequest struct {
	DocumentIDs []string
	MaxLength   int
}

// SummarizeResponse carries one summary per successfully fetched document.
type SummarizeResponse struct {
	Summaries []domain.Summary
	Warnings  []string
}

// GatewayService dispatches tool operations across provider adapters.
// Every method takes an already-authenticated caller; scope filtering,
// caching, fan-out, and merging happen inside the service.
type GatewayService interface {
	// SearchDocuments fans the query out to the scope-permitted subset
	// of the requested sources and merges results by relevance.
	SearchDocuments(ctx context.Context, caller *domain.CallerIdentity, req SearchRequest) (*SearchResponse, error)

	// GetDocument fetches one document with full content from a single
	// provider.
	GetDocument(ctx context.Context, caller *domain.CallerIdentity, source domain.ProviderKind, documentID string) (*domain.Document, error)

	// RecentUpdates fans out to the scope-permitted sources and merges
	// results newest first.
	RecentUpdates(ctx context.Context, caller *domain.CallerIdentity, req UpdatesRequest) (*SearchResponse, error)

	// SummarizeContent fetches each referenced document and produces an
	// extractive summary per document.
	SummarizeContent(ctx context.Context, caller *domain.CallerIdentity, req SummarizeRequest) (*SummarizeResponse, error)
}

// AuthService validates bearer tokens and resolves caller identities.
type AuthService interface {
	// Authorize validates the bearer token (and, when the proxy gate is
	// enabled, the proxy trust header) and returns the caller identity.
	// The operation name is recorded in the audit log.
	Authorize(ctx context.Context, bearerToken, trustHeader, operation string) (*domain.CallerIdentity, error)
}
