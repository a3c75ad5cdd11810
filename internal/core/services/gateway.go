package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/workplace-mcp/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driving.GatewayService = (*Gateway)(nil)

// GatewayConfig tunes caching and fan-out behaviour.
type GatewayConfig struct {
	// SearchTTL is the cache lifetime for search_documents results.
	SearchTTL time.Duration

	// DocumentTTL is the cache lifetime for fetched documents and
	// summaries.
	DocumentTTL time.Duration

	// UpdatesTTL is the cache lifetime for get_recent_updates results.
	UpdatesTTL time.Duration

	// SourceTimeout bounds each per-provider call during fan-out.
	SourceTimeout time.Duration
}

// DefaultGatewayConfig returns the stock TTLs and fan-out timeout.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		SearchTTL:     5 * time.Minute,
		DocumentTTL:   10 * time.Minute,
		UpdatesTTL:    5 * time.Minute,
		SourceTimeout: 5 * time.Second,
	}
}

// Gateway routes tool operations to provider adapters.
//
// Each request passes through the same pipeline: the requested sources
// are intersected with the caller's scopes, the cache is consulted, the
// surviving sources are fanned out to concurrently, and results are
// merged deterministically and cached. A single failing source degrades
// to a warning; the operation fails only when every source fails.
type Gateway struct {
	providers driven.ProviderSet
	cache     driven.ResultCache
	cfg       GatewayConfig
}

// NewGateway creates a gateway over the given provider set.
// The cache parameter is optional (can be nil to disable caching).
func NewGateway(providers driven.ProviderSet, cache driven.ResultCache, cfg GatewayConfig) *Gateway {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultGatewayConfig().SourceTimeout
	}
	return &Gateway{
		providers: providers,
		cache:     cache,
		cfg:       cfg,
	}
}

// SearchDocuments implements driving.GatewayService.
func (g *Gateway) SearchDocuments(
	ctx context.Context, caller *domain.CallerIdentity, req driving.SearchRequest,
) (*driving.SearchResponse, error) {
	logger.Section("Search Documents")
	logger.Debug("Query: %q, sources: %v, max: %d", req.Query, req.Sources, req.MaxResults)

	sources, warnings, err := g.filterSources(caller, req.Sources)
	if err != nil {
		return nil, err
	}

	key := cacheKey("search", domain.CanonicalText(req.Query),
		domain.CanonicalSources(sources), strconv.Itoa(req.MaxResults), caller.SubjectID)
	if cached, ok := g.cacheGet(key); ok {
		logger.Info("Returning cached search results for %q", req.Query)
		resp := cached.(driving.SearchResponse)
		return &resp, nil
	}

	outcomes := g.fanOut(ctx, sources, func(ctx context.Context, p driven.Provider) ([]domain.Document, error) {
		return p.Search(ctx, req.Query, req.MaxResults)
	})

	docs, failureWarnings, err := collectOutcomes(outcomes)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, failureWarnings...)
	sort.Strings(warnings)

	rankByRelevance(req.Query, docs)
	docs = truncate(docs, req.MaxResults)

	resp := driving.SearchResponse{Results: docs, Warnings: warnings}
	g.cachePut(key, resp, g.cfg.SearchTTL)
	logger.Info("Search merged %d results, %d warnings", len(docs), len(warnings))
	return &resp, nil
}

// RecentUpdates implements driving.GatewayService.
func (g *Gateway) RecentUpdates(
	ctx context.Context, caller *domain.CallerIdentity, req driving.UpdatesRequest,
) (*driving.SearchResponse, error) {
	logger.Section("Recent Updates")
	logger.Debug("Sources: %v, days: %d, max: %d", req.Sources, req.Days, req.MaxResults)

	sources, warnings, err := g.filterSources(caller, req.Sources)
	if err != nil {
		return nil, err
	}

	key := cacheKey("updates", strconv.Itoa(req.Days),
		domain.CanonicalSources(sources), strconv.Itoa(req.MaxResults), caller.SubjectID)
	if cached, ok := g.cacheGet(key); ok {
		logger.Info("Returning cached updates for last %d days", req.Days)
		resp := cached.(driving.SearchResponse)
		return &resp, nil
	}

	since := time.Now().Add(-time.Duration(req.Days) * 24 * time.Hour)
	outcomes := g.fanOut(ctx, sources, func(ctx context.Context, p driven.Provider) ([]domain.Document, error) {
		return p.Recent(ctx, since, req.MaxResults)
	})

	docs, failureWarnings, err := collectOutcomes(outcomes)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, failureWarnings...)
	sort.Strings(warnings)

	rankByModified(docs)
	docs = truncate(docs, req.MaxResults)

	resp := driving.SearchResponse{Results: docs, Warnings: warnings}
	g.cachePut(key, resp, g.cfg.UpdatesTTL)
	return &resp, nil
}

// GetDocument implements driving.GatewayService.
func (g *Gateway) GetDocument(
	ctx context.Context, caller *domain.CallerIdentity, source domain.ProviderKind, documentID string,
) (*domain.Document, error) {
	logger.Section("Get Document")
	logger.Debug("Source: %s, id: %s", source, documentID)

	provider, ok := g.providers[source]
	if !ok {
		return nil, domain.NewProviderError(source, domain.ProviderUnavailable, "provider not configured")
	}
	if !caller.CanRead(source) {
		return nil, domain.NewAuthError(domain.AuthNoScope,
			"caller %s lacks scope %s", caller.SubjectID, source.ReadScope())
	}

	key := cacheKey("document", source.CompositeID(documentID), caller.SubjectID)
	if cached, ok := g.cacheGet(key); ok {
		logger.Info("Returning cached document %s", source.CompositeID(documentID))
		doc := cached.(domain.Document)
		return &doc, nil
	}

	fctx, cancel := context.WithTimeout(ctx, g.cfg.SourceTimeout)
	defer cancel()

	doc, err := provider.Fetch(fctx, documentID)
	if err != nil {
		return nil, wrapSourceError(source, err)
	}

	g.cachePut(key, *doc, g.cfg.DocumentTTL)
	return doc, nil
}

// SummarizeContent implements driving.GatewayService.
func (g *Gateway) SummarizeContent(
	ctx context.Context, caller *domain.CallerIdentity, req driving.SummarizeRequest,
) (*driving.SummarizeResponse, error) {
	logger.Section("Summarize Content")
	logger.Debug("Documents: %v, max length: %d", req.DocumentIDs, req.MaxLength)

	sortedIDs := append([]string(nil), req.DocumentIDs...)
	sort.Strings(sortedIDs)
	key := cacheKey("summarize", joinIDs(sortedIDs), strconv.Itoa(req.MaxLength), caller.SubjectID)
	if cached, ok := g.cacheGet(key); ok {
		logger.Info("Returning cached summaries for %d documents", len(req.DocumentIDs))
		resp := cached.(driving.SummarizeResponse)
		return &resp, nil
	}

	var (
		summaries []domain.Summary
		warnings  []string
		attempted int
	)

	for _, compositeID := range req.DocumentIDs {
		source, id, err := domain.SplitCompositeID(compositeID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", compositeID, err))
			continue
		}

		attempted++
		doc, err := g.GetDocument(ctx, caller, source, id)
		if err != nil {
			warnings = append(warnings, summarizeWarning(compositeID, err))
			continue
		}

		summaries = append(summaries, Summarize(doc, req.MaxLength))
	}

	if attempted > 0 && len(summaries) == 0 {
		return nil, fmt.Errorf("summarize: %w", domain.ErrAllSourcesFailed)
	}

	resp := driving.SummarizeResponse{Summaries: summaries, Warnings: warnings}
	g.cachePut(key, resp, g.cfg.DocumentTTL)
	return &resp, nil
}

// filterSources intersects the requested sources with the providers the
// caller may read. An empty request means every configured provider.
// Sources dropped for missing scope or missing configuration become
// warnings; an empty intersection is an AuthError{NoScope}.
func (g *Gateway) filterSources(
	caller *domain.CallerIdentity, requested []domain.ProviderKind,
) ([]domain.ProviderKind, []string, error) {
	if len(requested) == 0 {
		for _, kind := range domain.AllProviders {
			if _, ok := g.providers[kind]; ok {
				requested = append(requested, kind)
			}
		}
	}

	var (
		allowed  []domain.ProviderKind
		warnings []string
		seen     = make(map[domain.ProviderKind]bool)
	)
	for _, kind := range requested {
		if seen[kind] {
			continue
		}
		seen[kind] = true

		if _, ok := g.providers[kind]; !ok {
			warnings = append(warnings, fmt.Sprintf("%s: skipped (not configured)", kind))
			continue
		}
		if !caller.CanRead(kind) {
			warnings = append(warnings, fmt.Sprintf("%s: skipped (missing scope %s)", kind, kind.ReadScope()))
			continue
		}
		allowed = append(allowed, kind)
	}

	if len(allowed) == 0 {
		return nil, nil, domain.NewAuthError(domain.AuthNoScope,
			"caller %s has no scope for any requested source", caller.SubjectID)
	}
	return allowed, warnings, nil
}

// sourceOutcome is the result of one fanned-out provider call.
type sourceOutcome struct {
	kind domain.ProviderKind
	docs []domain.Document
	err  error
}

// fanOut executes call against every provider concurrently, each bounded
// by the per-source timeout. It returns once every call has completed or
// timed out; a slow source never aborts its siblings.
func (g *Gateway) fanOut(
	ctx context.Context,
	sources []domain.ProviderKind,
	call func(ctx context.Context, p driven.Provider) ([]domain.Document, error),
) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(sources))

	var wg sync.WaitGroup
	for i, kind := range sources {
		wg.Add(1)
		go func(i int, kind domain.ProviderKind) {
			defer wg.Done()

			sctx, cancel := context.WithTimeout(ctx, g.cfg.SourceTimeout)
			defer cancel()

			docs, err := call(sctx, g.providers[kind])
			if err != nil {
				err = wrapSourceError(kind, err)
				logger.Warn("Source %s failed: %v", kind, err)
			}
			outcomes[i] = sourceOutcome{kind: kind, docs: docs, err: err}
		}(i, kind)
	}
	wg.Wait()

	return outcomes
}

// collectOutcomes merges fan-out outcomes into one document list plus
// warnings for failed sources. Returns ErrAllSourcesFailed when nothing
// succeeded.
func collectOutcomes(outcomes []sourceOutcome) ([]domain.Document, []string, error) {
	var (
		docs     []domain.Document
		warnings []string
		failures int
	)
	for _, o := range outcomes {
		if o.err != nil {
			failures++
			if pe, ok := domain.IsProviderError(o.err); ok {
				warnings = append(warnings, fmt.Sprintf("%s: %s", o.kind, pe.Kind))
			} else {
				warnings = append(warnings, fmt.Sprintf("%s: error", o.kind))
			}
			continue
		}
		docs = append(docs, o.docs...)
	}

	if failures == len(outcomes) && failures > 0 {
		return nil, nil, fmt.Errorf("fan-out: %w", domain.ErrAllSourcesFailed)
	}
	return docs, warnings, nil
}

// wrapSourceError normalizes a provider call error into a ProviderError.
// Context deadline expiry becomes kind Timeout so cancelled sources still
// merge as per-source warnings.
func wrapSourceError(kind domain.ProviderKind, err error) error {
	if _, ok := domain.IsProviderError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewProviderError(kind, domain.ProviderTimeout, "deadline elapsed")
	}
	return domain.NewProviderError(kind, domain.ProviderUnavailable, "%v", err)
}

// summarizeWarning renders a per-document failure for the warnings list.
func summarizeWarning(compositeID string, err error) string {
	if pe, ok := domain.IsProviderError(err); ok {
		return fmt.Sprintf("%s: %s", compositeID, pe.Kind)
	}
	if ae, ok := domain.IsAuthError(err); ok {
		return fmt.Sprintf("%s: %s", compositeID, ae.Kind)
	}
	return fmt.Sprintf("%s: error", compositeID)
}

// cacheGet consults the cache when one is configured.
func (g *Gateway) cacheGet(key string) (any, bool) {
	if g.cache == nil {
		return nil, false
	}
	return g.cache.Get(key)
}

// cachePut stores a successful result when a cache is configured.
func (g *Gateway) cachePut(key string, value any, ttl time.Duration) {
	if g.cache == nil || ttl <= 0 {
		return
	}
	g.cache.Put(key, value, ttl)
}

// cacheKey joins key parts with a separator that cannot appear in the
// canonical forms.
func cacheKey(parts ...string) string {
	key := parts[0]
	for _, p := range parts[1:] {
		key += "|" + p
	}
	return key
}

// joinIDs joins document ids for cache keys.
func joinIDs(ids []string) string {
	key := ""
	for i, id := range ids {
		if i > 0 {
			key += ","
		}
		key += id
	}
	return key
}
