package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/workplace-mcp/internal/logger"
)

// Validation bounds for tool parameters.
const (
	defaultMaxResults = 10
	maxMaxResults     = 50
	defaultMaxLength  = 500
	minMaxLength      = 50
	maxMaxLength      = 4000
	defaultDays       = 7
	maxDays           = 90
	maxSummarizeIDs   = 20
)

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query      string   `json:"query" jsonschema:"text to search for across workplace sources"`
	Sources    []string `json:"sources,omitempty" jsonschema:"sources to search: gdrive, notion, slack, confluence (default all configured)"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"maximum number of results to return, 1-50 (default 10)"`
}

// DocumentInput is the input schema for the get_document_content tool.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"document identifier, either source-qualified like gdrive:abc123 or bare when source is given"`
	Source     string `json:"source,omitempty" jsonschema:"source holding the document: gdrive, notion, slack, confluence"`
}

// UpdatesInput is the input schema for the get_recent_updates tool.
type UpdatesInput struct {
	Sources    []string `json:"sources,omitempty" jsonschema:"sources to check: gdrive, notion, slack, confluence (default all configured)"`
	Days       *int     `json:"days,omitempty" jsonschema:"look-back window in days, 0-90 (default 7)"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"maximum number of results to return, 1-50 (default 10)"`
}

// SummarizeInput is the input schema for the summarize_content tool.
type SummarizeInput struct {
	DocumentIDs []string `json:"document_ids" jsonschema:"source-qualified document identifiers like gdrive:abc123"`
	MaxLength   int      `json:"max_length,omitempty" jsonschema:"maximum summary length in characters, 50-4000 (default 500)"`
}

// ResultOutput is one document in a search or updates response.
type ResultOutput struct {
	DocumentID   string `json:"document_id"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet,omitempty"`
	Source       string `json:"source"`
	URL          string `json:"url,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Author       string `json:"author,omitempty"`
}

// SearchOutput is the output schema for search_documents and
// get_recent_updates.
type SearchOutput struct {
	Results  []ResultOutput `json:"results"`
	Count    int            `json:"count"`
	Warnings []string       `json:"warnings,omitempty"`
}

// DocumentOutput is the output schema for get_document_content.
type DocumentOutput struct {
	DocumentID   string `json:"document_id"`
	Title        string `json:"title"`
	Source       string `json:"source"`
	Content      string `json:"content"`
	URL          string `json:"url,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Author       string `json:"author,omitempty"`
}

// SummaryOutput is one summary in a summarize_content response.
type SummaryOutput struct {
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title,omitempty"`
	Source     string   `json:"source"`
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"key_points,omitempty"`
}

// SummarizeOutput is the output schema for summarize_content.
type SummarizeOutput struct {
	Summaries []SummaryOutput `json:"summaries"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search for documents across Google Drive, Notion, Slack and Confluence",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document_content",
		Description: "Retrieve the full content of one document",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_recent_updates",
		Description: "List documents modified within a recent time window",
	}, s.handleRecentUpdates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_content",
		Description: "Produce short extractive summaries of the given documents",
	}, s.handleSummarize)
}

// authorize resolves the caller identity for one tool invocation using
// the credentials the transport attached to the context.
func (s *Server) authorize(ctx context.Context, operation string) (*domain.CallerIdentity, error) {
	creds := credentialsFrom(ctx)
	return s.ports.Auth.Authorize(ctx, creds.bearer, creds.trust, operation)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, domain.NewValidationError("query", "must not be empty")
	}
	maxResults, err := boundMaxResults(input.MaxResults)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	sources, err := parseSources(input.Sources)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	caller, err := s.authorize(ctx, "search_documents")
	if err != nil {
		return nil, SearchOutput{}, err
	}

	logger.Debug("search_documents subject=%s query=%q", caller.SubjectID, input.Query)
	resp, err := s.ports.Gateway.SearchDocuments(ctx, caller, driving.SearchRequest{
		Query:      input.Query,
		Sources:    sources,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, searchOutput(resp), nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if input.DocumentID == "" {
		return nil, DocumentOutput{}, domain.NewValidationError("document_id", "must not be empty")
	}

	var kind domain.ProviderKind
	id := input.DocumentID
	if input.Source == "" {
		var err error
		kind, id, err = domain.SplitCompositeID(input.DocumentID)
		if err != nil {
			return nil, DocumentOutput{}, domain.NewValidationError("document_id", "expected source:id form, got %q", input.DocumentID)
		}
	} else {
		var err error
		kind, err = domain.ParseProviderKind(input.Source)
		if err != nil {
			return nil, DocumentOutput{}, domain.NewValidationError("source", "unknown source %q", input.Source)
		}
		// A source-qualified id alongside an explicit source is accepted
		// when they agree, so "gdrive:abc" with source "gdrive" resolves
		// to the bare id.
		if prefix, bare, err := domain.SplitCompositeID(input.DocumentID); err == nil {
			if prefix != kind {
				return nil, DocumentOutput{}, domain.NewValidationError("document_id",
					"prefix %q does not match source %q", prefix, input.Source)
			}
			id = bare
		}
	}

	caller, err := s.authorize(ctx, "get_document_content")
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	logger.Debug("get_document_content subject=%s id=%s:%s", caller.SubjectID, kind, id)
	doc, err := s.ports.Gateway.GetDocument(ctx, caller, kind, id)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	return nil, DocumentOutput{
		DocumentID:   doc.CompositeID(),
		Title:        doc.Title,
		Source:       string(doc.Source),
		Content:      doc.Content,
		URL:          doc.URL,
		LastModified: formatTime(doc.LastModified),
		Author:       doc.Author,
	}, nil
}

func (s *Server) handleRecentUpdates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdatesInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	// Days is a pointer so an explicit 0 (an empty window) stays
	// distinguishable from an absent parameter.
	days := defaultDays
	if input.Days != nil {
		days = *input.Days
	}
	if days < 0 || days > maxDays {
		return nil, SearchOutput{}, domain.NewValidationError("days", "must be between 0 and %d", maxDays)
	}
	maxResults, err := boundMaxResults(input.MaxResults)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	sources, err := parseSources(input.Sources)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	caller, err := s.authorize(ctx, "get_recent_updates")
	if err != nil {
		return nil, SearchOutput{}, err
	}

	logger.Debug("get_recent_updates subject=%s days=%d", caller.SubjectID, days)
	resp, err := s.ports.Gateway.RecentUpdates(ctx, caller, driving.UpdatesRequest{
		Sources:    sources,
		Days:       days,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, searchOutput(resp), nil
}

func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeInput,
) (*mcp.CallToolResult, SummarizeOutput, error) {
	if len(input.DocumentIDs) == 0 {
		return nil, SummarizeOutput{}, domain.NewValidationError("document_ids", "must not be empty")
	}
	if len(input.DocumentIDs) > maxSummarizeIDs {
		return nil, SummarizeOutput{}, domain.NewValidationError("document_ids", "at most %d documents per call", maxSummarizeIDs)
	}
	maxLength := input.MaxLength
	if maxLength == 0 {
		maxLength = defaultMaxLength
	}
	if maxLength < minMaxLength || maxLength > maxMaxLength {
		return nil, SummarizeOutput{}, domain.NewValidationError("max_length", "must be between %d and %d", minMaxLength, maxMaxLength)
	}

	caller, err := s.authorize(ctx, "summarize_content")
	if err != nil {
		return nil, SummarizeOutput{}, err
	}

	logger.Debug("summarize_content subject=%s docs=%d", caller.SubjectID, len(input.DocumentIDs))
	resp, err := s.ports.Gateway.SummarizeContent(ctx, caller, driving.SummarizeRequest{
		DocumentIDs: input.DocumentIDs,
		MaxLength:   maxLength,
	})
	if err != nil {
		return nil, SummarizeOutput{}, err
	}

	output := SummarizeOutput{
		Summaries: make([]SummaryOutput, len(resp.Summaries)),
		Warnings:  resp.Warnings,
	}
	for i, sum := range resp.Summaries {
		output.Summaries[i] = SummaryOutput{
			DocumentID: sum.DocumentID,
			Title:      sum.Title,
			Source:     string(sum.Source),
			Summary:    sum.Text,
			KeyPoints:  sum.KeyPoints,
		}
	}
	return nil, output, nil
}

func boundMaxResults(n int) (int, error) {
	if n == 0 {
		return defaultMaxResults, nil
	}
	if n < 1 || n > maxMaxResults {
		return 0, domain.NewValidationError("max_results", "must be between 1 and %d", maxMaxResults)
	}
	return n, nil
}

func parseSources(names []string) ([]domain.ProviderKind, error) {
	kinds := make([]domain.ProviderKind, 0, len(names))
	for _, name := range names {
		kind, err := domain.ParseProviderKind(name)
		if err != nil {
			return nil, domain.NewValidationError("sources", "unknown source %q", name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func searchOutput(resp *driving.SearchResponse) SearchOutput {
	output := SearchOutput{
		Results:  make([]ResultOutput, len(resp.Results)),
		Count:    len(resp.Results),
		Warnings: resp.Warnings,
	}
	for i, doc := range resp.Results {
		output.Results[i] = ResultOutput{
			DocumentID:   doc.CompositeID(),
			Title:        doc.Title,
			Snippet:      doc.Snippet,
			Source:       string(doc.Source),
			URL:          doc.URL,
			LastModified: formatTime(doc.LastModified),
			Author:       doc.Author,
		}
	}
	return output
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
