package gdrive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// newTestConnector points the Drive client at a local test server.
func newTestConnector(t *testing.T, handler http.Handler) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return NewWithService(svc)
}

func TestConnector_Search(t *testing.T) {
	var gotQuery string
	c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"files":[
			{"id":"f1","name":"Budget 2025","description":"annual plan","webViewLink":"https://drive.example/f1","modifiedTime":"2026-08-01T10:00:00Z","mimeType":"application/vnd.google-apps.document","owners":[{"displayName":"Dana"}]},
			{"id":"dir","name":"Reports","mimeType":"application/vnd.google-apps.folder"}
		]}`))
	}))

	docs, err := c.Search(context.Background(), "budget", 10)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "fullText contains 'budget'")
	assert.Contains(t, gotQuery, "trashed=false")

	// Folders are dropped from results.
	require.Len(t, docs, 1)
	assert.Equal(t, "f1", docs[0].ID)
	assert.Equal(t, domain.ProviderGoogleDrive, docs[0].Source)
	assert.Equal(t, "Budget 2025", docs[0].Title)
	assert.Equal(t, "Dana", docs[0].Author)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), docs[0].LastModified)
}

func TestConnector_SearchEscapesQuotes(t *testing.T) {
	var gotQuery string
	c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"files":[]}`))
	}))

	_, err := c.Search(context.Background(), "q3 'draft'", 5)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, `q3 \'draft\'`)
}

func TestConnector_RecentQuery(t *testing.T) {
	var gotQuery string
	c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"files":[]}`))
	}))

	since := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	_, err := c.Recent(context.Background(), since, 5)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "modifiedTime >= '2026-08-15T00:00:00Z'")
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected domain.ProviderErrorKind
	}{
		{"not found", http.StatusNotFound, domain.ProviderNotFound},
		{"rate limited", http.StatusTooManyRequests, domain.ProviderRateLimited},
		{"unauthorized", http.StatusUnauthorized, domain.ProviderUnauthorized},
		{"forbidden", http.StatusForbidden, domain.ProviderUnauthorized},
		{"server error", http.StatusInternalServerError, domain.ProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(&googleapi.Error{Code: tt.code, Message: "m"})
			var provErr *domain.ProviderError
			require.ErrorAs(t, err, &provErr)
			assert.Equal(t, tt.expected, provErr.Kind)
			assert.Equal(t, domain.ProviderGoogleDrive, provErr.Source)
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, mapError(nil))
	})

	t.Run("non-API error passes through", func(t *testing.T) {
		sentinel := errors.New("dial tcp: timeout")
		assert.ErrorIs(t, mapError(sentinel), sentinel)
	})
}

func TestIsTextMime(t *testing.T) {
	assert.True(t, isTextMime("text/plain"))
	assert.True(t, isTextMime("text/markdown"))
	assert.True(t, isTextMime("application/json"))
	assert.False(t, isTextMime("image/png"))
	assert.False(t, isTextMime("application/pdf"))
}
