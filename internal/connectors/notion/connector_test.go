package notion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// rewriteTransport redirects every request to the test server.
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestConnector(t *testing.T, handler http.Handler) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return New("secret-token", notionapi.WithHTTPClient(&http.Client{
		Transport: &rewriteTransport{target: target},
	}))
}

func TestConnector_Search(t *testing.T) {
	c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"object": "list",
			"results": [{
				"object": "page",
				"id": "p1",
				"url": "https://notion.so/p1",
				"last_edited_time": "2026-08-01T10:00:00Z",
				"properties": {
					"title": {
						"id": "title",
						"type": "title",
						"title": [{"type": "text", "plain_text": "Roadmap"}]
					}
				}
			}],
			"has_more": false
		}`))
	}))

	docs, err := c.Search(context.Background(), "roadmap", 10)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "p1", docs[0].ID)
	assert.Equal(t, "Roadmap", docs[0].Title)
	assert.Equal(t, domain.ProviderNotion, docs[0].Source)
	assert.Equal(t, "https://notion.so/p1", docs[0].URL)
}

func TestPageTitle(t *testing.T) {
	t.Run("joins rich text segments", func(t *testing.T) {
		page := &notionapi.Page{
			Properties: notionapi.Properties{
				"Name": &notionapi.TitleProperty{
					Title: []notionapi.RichText{
						{PlainText: "Q3 "},
						{PlainText: "Plan"},
					},
				},
			},
		}
		assert.Equal(t, "Q3 Plan", pageTitle(page))
	})

	t.Run("no title property", func(t *testing.T) {
		page := &notionapi.Page{Properties: notionapi.Properties{}}
		assert.Equal(t, "", pageTitle(page))
	})
}

func TestBlocksToText(t *testing.T) {
	blocks := []notionapi.Block{
		&notionapi.Heading1Block{
			Heading1: notionapi.Heading{
				RichText: []notionapi.RichText{{PlainText: "Overview"}},
			},
		},
		&notionapi.ParagraphBlock{
			Paragraph: notionapi.Paragraph{
				RichText: []notionapi.RichText{{PlainText: "First line."}},
			},
		},
		&notionapi.DividerBlock{},
		&notionapi.BulletedListItemBlock{
			BulletedListItem: notionapi.ListItem{
				RichText: []notionapi.RichText{{PlainText: "item one"}},
			},
		},
	}

	assert.Equal(t, "Overview\nFirst line.\nitem one", blocksToText(blocks))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected domain.ProviderErrorKind
	}{
		{"not found", http.StatusNotFound, domain.ProviderNotFound},
		{"rate limited", http.StatusTooManyRequests, domain.ProviderRateLimited},
		{"unauthorized", http.StatusUnauthorized, domain.ProviderUnauthorized},
		{"server error", http.StatusBadGateway, domain.ProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(&notionapi.Error{Status: tt.status, Message: "m"})
			var provErr *domain.ProviderError
			require.ErrorAs(t, err, &provErr)
			assert.Equal(t, tt.expected, provErr.Kind)
			assert.Equal(t, domain.ProviderNotion, provErr.Source)
		})
	}

	t.Run("transport error passes through", func(t *testing.T) {
		sentinel := errors.New("dial tcp: refused")
		assert.ErrorIs(t, mapError(sentinel), sentinel)
	})
}
