// Package confluence implements the Confluence provider on the Cloud
// REST API. Requests authenticate with basic auth (account email plus
// API token) and search goes through CQL.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/workplace-mcp/internal/connectors"
	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

var _ driven.Provider = (*Connector)(nil)

// Connector is the Confluence provider adapter.
type Connector struct {
	baseURL string
	email   string
	token   string
	client  *http.Client
	limiter *connectors.RateLimiter
}

// New creates a Confluence connector for a Cloud site.
// baseURL is the site root, e.g. "https://acme.atlassian.net/wiki".
func New(baseURL, email, token string) *Connector {
	return &Connector{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   email,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: connectors.NewRateLimiter(domain.ProviderConfluence),
	}
}

// WithHTTPClient overrides the HTTP client. Used in tests.
func (c *Connector) WithHTTPClient(client *http.Client) *Connector {
	c.client = client
	return c
}

// Kind returns the provider identifier.
func (c *Connector) Kind() domain.ProviderKind {
	return domain.ProviderConfluence
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Content struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"content"`
	Excerpt              string `json:"excerpt"`
	URL                  string `json:"url"`
	LastModified         string `json:"lastModified"`
	FriendlyLastModified string `json:"friendlyLastModified"`
}

type content struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version struct {
		When string `json:"when"`
		By   struct {
			DisplayName string `json:"displayName"`
		} `json:"by"`
	} `json:"version"`
	Body struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// Search runs a CQL text query over pages and blog posts.
func (c *Connector) Search(ctx context.Context, text string, maxResults int) ([]domain.Document, error) {
	cql := fmt.Sprintf(`type in (page, blogpost) and text ~ "%s" order by lastmodified desc`, escapeCQL(text))
	return c.searchCQL(ctx, cql, maxResults)
}

// Fetch retrieves one page with its storage-format body.
func (c *Connector) Fetch(ctx context.Context, id string) (*domain.Document, error) {
	params := url.Values{"expand": {"body.storage,version"}}

	var page content
	err := c.get(ctx, "/rest/api/content/"+url.PathEscape(id), params, &page)
	if err != nil {
		return nil, err
	}

	doc := domain.Document{
		ID:      page.ID,
		Title:   page.Title,
		Source:  domain.ProviderConfluence,
		Content: stripMarkup(page.Body.Storage.Value),
		Author:  page.Version.By.DisplayName,
	}
	if page.Links.WebUI != "" {
		doc.URL = c.baseURL + page.Links.WebUI
	}
	if ts, err := time.Parse(time.RFC3339, page.Version.When); err == nil {
		doc.LastModified = ts
	}
	return &doc, nil
}

// Recent lists pages modified at or after since, newest first.
func (c *Connector) Recent(ctx context.Context, since time.Time, maxResults int) ([]domain.Document, error) {
	cql := fmt.Sprintf(`type in (page, blogpost) and lastmodified >= "%s" order by lastmodified desc`,
		since.UTC().Format("2006/01/02 15:04"))
	return c.searchCQL(ctx, cql, maxResults)
}

func (c *Connector) searchCQL(ctx context.Context, cql string, maxResults int) ([]domain.Document, error) {
	params := url.Values{
		"cql":   {cql},
		"limit": {strconv.Itoa(maxResults)},
	}

	var resp searchResponse
	if err := c.get(ctx, "/rest/api/search", params, &resp); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(resp.Results))
	for _, res := range resp.Results {
		doc := domain.Document{
			ID:      res.Content.ID,
			Title:   res.Content.Title,
			Snippet: stripMarkup(res.Excerpt),
			Source:  domain.ProviderConfluence,
		}
		if res.URL != "" {
			doc.URL = c.baseURL + res.URL
		}
		if ts, err := parseSearchTime(res.LastModified); err == nil {
			doc.LastModified = ts
		}
		docs = append(docs, doc)
		if len(docs) >= maxResults {
			break
		}
	}
	return docs, nil
}

// get runs one API request behind the rate limiter and retry policy.
func (c *Connector) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := connectors.Retry(ctx, func() error {
		return c.getOnce(ctx, path, params, out)
	})
	if pe, ok := domain.IsProviderError(err); ok && pe.Kind == domain.ProviderRateLimited {
		c.limiter.RecordRateLimitError(0)
	}
	return err
}

func (c *Connector) getOnce(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewProviderError(domain.ProviderConfluence, domain.ProviderNotFound, "%s not found", path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewProviderError(domain.ProviderConfluence, domain.ProviderRateLimited, "%s rate limited", path)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return domain.NewProviderError(domain.ProviderConfluence, domain.ProviderUnauthorized, "%s returned %d", path, resp.StatusCode)
	default:
		return domain.NewProviderError(domain.ProviderConfluence, domain.ProviderUnavailable, "%s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// escapeCQL escapes quotes and backslashes inside a CQL string literal.
func escapeCQL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripMarkup removes storage-format XHTML tags and search highlight
// markers, leaving plain text.
func stripMarkup(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "@@@hl@@@", "")
	s = strings.ReplaceAll(s, "@@@endhl@@@", "")
	return strings.TrimSpace(s)
}

// parseSearchTime handles the timestamp formats the search API emits.
func parseSearchTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05Z0700"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
