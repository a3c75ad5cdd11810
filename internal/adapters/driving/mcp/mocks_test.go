package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driving"
)

// fakeGateway is a scriptable GatewayService.
type fakeGateway struct {
	mu sync.Mutex

	searchResp  *driving.SearchResponse
	searchErr   error
	searchCalls []driving.SearchRequest

	document      *domain.Document
	documentErr   error
	documentCalls []string

	updatesResp  *driving.SearchResponse
	updatesErr   error
	updatesCalls []driving.UpdatesRequest

	summarizeResp *driving.SummarizeResponse
	summarizeErr  error
}

func (f *fakeGateway) SearchDocuments(_ context.Context, _ *domain.CallerIdentity, req driving.SearchRequest) (*driving.SearchResponse, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, req)
	f.mu.Unlock()
	return f.searchResp, f.searchErr
}

func (f *fakeGateway) GetDocument(_ context.Context, _ *domain.CallerIdentity, source domain.ProviderKind, id string) (*domain.Document, error) {
	f.mu.Lock()
	f.documentCalls = append(f.documentCalls, source.CompositeID(id))
	f.mu.Unlock()
	return f.document, f.documentErr
}

func (f *fakeGateway) RecentUpdates(_ context.Context, _ *domain.CallerIdentity, req driving.UpdatesRequest) (*driving.SearchResponse, error) {
	f.mu.Lock()
	f.updatesCalls = append(f.updatesCalls, req)
	f.mu.Unlock()
	return f.updatesResp, f.updatesErr
}

func (f *fakeGateway) SummarizeContent(_ context.Context, _ *domain.CallerIdentity, _ driving.SummarizeRequest) (*driving.SummarizeResponse, error) {
	return f.summarizeResp, f.summarizeErr
}

// fakeAuth is a scriptable AuthService that records operations.
type fakeAuth struct {
	mu         sync.Mutex
	caller     *domain.CallerIdentity
	err        error
	operations []string
	bearers    []string
}

func (f *fakeAuth) Authorize(_ context.Context, bearerToken, _ string, operation string) (*domain.CallerIdentity, error) {
	f.mu.Lock()
	f.operations = append(f.operations, operation)
	f.bearers = append(f.bearers, bearerToken)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.caller, nil
}

func intPtr(n int) *int { return &n }

func newTestServer(gateway *fakeGateway, auth *fakeAuth) (*Server, error) {
	if auth.caller == nil {
		auth.caller = domain.DevIdentity()
	}
	return NewServer(&Ports{
		Gateway: gateway,
		Auth:    auth,
		Sources: []domain.ProviderKind{domain.ProviderGoogleDrive, domain.ProviderNotion},
	})
}
