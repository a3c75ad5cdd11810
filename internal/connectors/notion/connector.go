// Package notion implements the Notion provider on the Notion REST API.
//
// Search covers pages shared with the integration. Fetching a page walks
// its top-level blocks and concatenates their plain text; nested blocks
// are not descended into.
package notion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/workplace-mcp/internal/connectors"
	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

// blockPageSize bounds the block children listing for page content.
const blockPageSize = 100

var _ driven.Provider = (*Connector)(nil)

// Connector is the Notion provider adapter.
type Connector struct {
	client  *notionapi.Client
	limiter *connectors.RateLimiter
}

// New creates a Notion connector with an integration token.
func New(token string, opts ...notionapi.ClientOption) *Connector {
	return &Connector{
		client:  notionapi.NewClient(notionapi.Token(token), opts...),
		limiter: connectors.NewRateLimiter(domain.ProviderNotion),
	}
}

// Kind returns the provider identifier.
func (c *Connector) Kind() domain.ProviderKind {
	return domain.ProviderNotion
}

// Search queries page titles and content via the workspace search API.
func (c *Connector) Search(ctx context.Context, text string, maxResults int) ([]domain.Document, error) {
	resp, err := c.search(ctx, &notionapi.SearchRequest{
		Query:    text,
		PageSize: maxResults,
		Filter:   notionapi.SearchFilter{Property: "object", Value: "page"},
	})
	if err != nil {
		return nil, err
	}
	return c.toDocuments(resp, maxResults), nil
}

// Fetch retrieves one page and flattens its top-level blocks into text.
func (c *Connector) Fetch(ctx context.Context, id string) (*domain.Document, error) {
	var page *notionapi.Page
	err := c.do(ctx, func() error {
		var err error
		page, err = c.client.Page.Get(ctx, notionapi.PageID(id))
		return err
	})
	if err != nil {
		return nil, err
	}

	doc := pageToDocument(page)

	var blocks *notionapi.GetChildrenResponse
	err = c.do(ctx, func() error {
		var err error
		blocks, err = c.client.Block.GetChildren(ctx, notionapi.BlockID(id), &notionapi.Pagination{
			PageSize: blockPageSize,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	doc.Content = blocksToText(blocks.Results)
	return &doc, nil
}

// Recent lists pages edited at or after since, newest first. The search
// API has no time filter, so results are cut off client-side once the
// descending last-edited order crosses the threshold.
func (c *Connector) Recent(ctx context.Context, since time.Time, maxResults int) ([]domain.Document, error) {
	resp, err := c.search(ctx, &notionapi.SearchRequest{
		PageSize: maxResults,
		Filter:   notionapi.SearchFilter{Property: "object", Value: "page"},
		Sort: &notionapi.SortObject{
			Direction: notionapi.SortOrderDESC,
			Timestamp: notionapi.TimestampLastEdited,
		},
	})
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, doc := range c.toDocuments(resp, maxResults) {
		if doc.LastModified.Before(since) {
			break
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *Connector) search(ctx context.Context, req *notionapi.SearchRequest) (*notionapi.SearchResponse, error) {
	var resp *notionapi.SearchResponse
	err := c.do(ctx, func() error {
		var err error
		resp, err = c.client.Search.Do(ctx, req)
		return err
	})
	return resp, err
}

// do runs one API call behind the rate limiter and retry policy.
func (c *Connector) do(ctx context.Context, call func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := connectors.Retry(ctx, func() error {
		return mapError(call())
	})
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) && provErr.Kind == domain.ProviderRateLimited {
		c.limiter.RecordRateLimitError(0)
	}
	return err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var nerr *notionapi.Error
	if errors.As(err, &nerr) {
		switch nerr.Status {
		case http.StatusNotFound:
			return domain.NewProviderError(domain.ProviderNotion, domain.ProviderNotFound, "%s", nerr.Message)
		case http.StatusTooManyRequests:
			return domain.NewProviderError(domain.ProviderNotion, domain.ProviderRateLimited, "%s", nerr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.NewProviderError(domain.ProviderNotion, domain.ProviderUnauthorized, "%s", nerr.Message)
		}
		if nerr.Status >= 500 {
			return domain.NewProviderError(domain.ProviderNotion, domain.ProviderUnavailable, "%s", nerr.Message)
		}
	}
	return err
}

func (c *Connector) toDocuments(resp *notionapi.SearchResponse, maxResults int) []domain.Document {
	var docs []domain.Document
	for _, obj := range resp.Results {
		page, ok := obj.(*notionapi.Page)
		if !ok {
			continue
		}
		docs = append(docs, pageToDocument(page))
		if len(docs) >= maxResults {
			break
		}
	}
	return docs
}

func pageToDocument(page *notionapi.Page) domain.Document {
	return domain.Document{
		ID:           string(page.ID),
		Title:        pageTitle(page),
		Source:       domain.ProviderNotion,
		URL:          page.URL,
		LastModified: page.LastEditedTime,
	}
}

// pageTitle extracts the plain-text title property. Pages always carry
// exactly one title-type property, but its key varies by parent database.
func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		title, ok := prop.(*notionapi.TitleProperty)
		if !ok {
			continue
		}
		var parts []string
		for _, rt := range title.Title {
			parts = append(parts, rt.PlainText)
		}
		return strings.Join(parts, "")
	}
	return ""
}

// blocksToText flattens top-level blocks into newline-separated text.
func blocksToText(blocks []notionapi.Block) string {
	var lines []string
	for _, block := range blocks {
		if line := blockText(block); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func blockText(block notionapi.Block) string {
	var richText []notionapi.RichText
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		richText = b.Paragraph.RichText
	case *notionapi.Heading1Block:
		richText = b.Heading1.RichText
	case *notionapi.Heading2Block:
		richText = b.Heading2.RichText
	case *notionapi.Heading3Block:
		richText = b.Heading3.RichText
	case *notionapi.BulletedListItemBlock:
		richText = b.BulletedListItem.RichText
	case *notionapi.NumberedListItemBlock:
		richText = b.NumberedListItem.RichText
	case *notionapi.QuoteBlock:
		richText = b.Quote.RichText
	case *notionapi.CalloutBlock:
		richText = b.Callout.RichText
	case *notionapi.CodeBlock:
		richText = b.Code.RichText
	case *notionapi.ToDoBlock:
		richText = b.ToDo.RichText
	default:
		return ""
	}

	var parts []string
	for _, rt := range richText {
		parts = append(parts, rt.PlainText)
	}
	return strings.Join(parts, "")
}
