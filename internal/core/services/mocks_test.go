package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

// fakeProvider is a scriptable driven.Provider.
type fakeProvider struct {
	kind domain.ProviderKind

	searchDocs []domain.Document
	searchErr  error
	fetchDoc   *domain.Document
	fetchErr   error
	recentDocs []domain.Document
	recentErr  error

	mu          sync.Mutex
	searchCalls int
	fetchCalls  int
	recentCalls int
}

func (p *fakeProvider) Kind() domain.ProviderKind { return p.kind }

func (p *fakeProvider) Search(_ context.Context, _ string, _ int) ([]domain.Document, error) {
	p.mu.Lock()
	p.searchCalls++
	p.mu.Unlock()
	return p.searchDocs, p.searchErr
}

func (p *fakeProvider) Fetch(_ context.Context, _ string) (*domain.Document, error) {
	p.mu.Lock()
	p.fetchCalls++
	p.mu.Unlock()
	return p.fetchDoc, p.fetchErr
}

func (p *fakeProvider) Recent(_ context.Context, _ time.Time, _ int) ([]domain.Document, error) {
	p.mu.Lock()
	p.recentCalls++
	p.mu.Unlock()
	return p.recentDocs, p.recentErr
}

func (p *fakeProvider) calls() (search, fetch, recent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searchCalls, p.fetchCalls, p.recentCalls
}

// slowProvider blocks every call until its context expires.
type slowProvider struct {
	kind domain.ProviderKind
}

func (p *slowProvider) Kind() domain.ProviderKind { return p.kind }

func (p *slowProvider) Search(ctx context.Context, _ string, _ int) ([]domain.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (p *slowProvider) Fetch(ctx context.Context, _ string) (*domain.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (p *slowProvider) Recent(ctx context.Context, _ time.Time, _ int) ([]domain.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// fakeCache records puts and serves gets from a plain map, ignoring TTL.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]any
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]any)}
}

func (c *fakeCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Put(key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.puts++
}

func (c *fakeCache) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

// fakeVerifier is a scriptable driven.TokenVerifier.
type fakeVerifier struct {
	claims *driven.TokenClaims
	err    error
	calls  int
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (*driven.TokenClaims, error) {
	v.calls++
	return v.claims, v.err
}

// fakeProxy is a scriptable driven.ProxyVerifier.
type fakeProxy struct {
	err   error
	calls int
}

func (p *fakeProxy) VerifyTrustHeader(_ context.Context, _ string) error {
	p.calls++
	return p.err
}

// fakeAudit collects appended records.
type fakeAudit struct {
	mu      sync.Mutex
	records []driven.AuditRecord
}

func (a *fakeAudit) Append(_ context.Context, record driven.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
	return nil
}

func (a *fakeAudit) Close() error { return nil }

func (a *fakeAudit) last() (driven.AuditRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) == 0 {
		return driven.AuditRecord{}, false
	}
	return a.records[len(a.records)-1], true
}

// callerWith builds a caller holding the given scopes.
func callerWith(scopes ...domain.Scope) *domain.CallerIdentity {
	granted := make(map[domain.Scope]bool, len(scopes))
	for _, s := range scopes {
		granted[s] = true
	}
	return &domain.CallerIdentity{
		SubjectID:     "user-1",
		GrantedScopes: granted,
		TokenExpiry:   time.Now().Add(time.Hour),
	}
}
