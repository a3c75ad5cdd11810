package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

func newTestConnector(t *testing.T, handler http.Handler) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("xoxp-test", WithBaseURL(srv.URL))
}

func TestConnector_Search(t *testing.T) {
	c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.messages", r.URL.Path)
		assert.Equal(t, "deploy", r.URL.Query().Get("query"))
		assert.Equal(t, "Bearer xoxp-test", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"ok": true,
			"messages": {"matches": [{
				"text": "deploy finished",
				"ts": "1723456789.000200",
				"username": "dana",
				"permalink": "https://ws.slack.com/archives/C01/p1723456789000200",
				"channel": {"id": "C01", "name": "eng"}
			}]}
		}`))
	}))

	docs, err := c.Search(context.Background(), "deploy", 10)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "C01/1723456789.000200", docs[0].ID)
	assert.Equal(t, "#eng", docs[0].Title)
	assert.Equal(t, "deploy finished", docs[0].Snippet)
	assert.Equal(t, "dana", docs[0].Author)
	assert.Equal(t, domain.ProviderSlack, docs[0].Source)
	assert.Equal(t, time.Unix(1723456789, 0).UTC().Truncate(time.Second), docs[0].LastModified.Truncate(time.Second))
}

func TestConnector_Fetch(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/conversations.history", r.URL.Path)
			assert.Equal(t, "C01", r.URL.Query().Get("channel"))
			assert.Equal(t, "1723456789.000200", r.URL.Query().Get("latest"))
			w.Write([]byte(`{"ok": true, "messages": [{"text": "full message body", "ts": "1723456789.000200"}]}`))
		}))

		doc, err := c.Fetch(context.Background(), "C01/1723456789.000200")
		require.NoError(t, err)
		assert.Equal(t, "C01/1723456789.000200", doc.ID)
		assert.Equal(t, "full message body", doc.Content)
	})

	t.Run("empty history is not found", func(t *testing.T) {
		c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ok": true, "messages": []}`))
		}))

		_, err := c.Fetch(context.Background(), "C01/999.0")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		c := New("xoxp-test")
		_, err := c.Fetch(context.Background(), "no-slash")
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestConnector_Recent_FiltersBeforeCutoff(t *testing.T) {
	since := time.Unix(1723456000, 0).UTC()
	c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"ok": true,
			"messages": {"matches": [
				{"text": "new", "ts": "1723456789.000200", "channel": {"id": "C01", "name": "eng"}},
				{"text": "old", "ts": "1723000000.000100", "channel": {"id": "C01", "name": "eng"}}
			]}
		}`))
	}))

	docs, err := c.Recent(context.Background(), since, 10)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0].Snippet)
}

func TestConnector_APIErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		expected domain.ProviderErrorKind
	}{
		{"body ratelimited", `{"ok": false, "error": "ratelimited"}`, http.StatusOK, domain.ProviderRateLimited},
		{"body invalid_auth", `{"ok": false, "error": "invalid_auth"}`, http.StatusOK, domain.ProviderUnauthorized},
		{"body missing_scope", `{"ok": false, "error": "missing_scope"}`, http.StatusOK, domain.ProviderUnauthorized},
		{"body unknown error", `{"ok": false, "error": "fatal_error"}`, http.StatusOK, domain.ProviderUnavailable},
		{"http 429", ``, http.StatusTooManyRequests, domain.ProviderRateLimited},
		{"http 401", ``, http.StatusUnauthorized, domain.ProviderUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != http.StatusOK {
					w.WriteHeader(tt.status)
					return
				}
				w.Write([]byte(tt.body))
			}))

			_, err := c.Search(context.Background(), "q", 5)
			provErr, ok := domain.IsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expected, provErr.Kind)
			assert.Equal(t, domain.ProviderSlack, provErr.Source)
		})
	}
}

func TestTsToTime(t *testing.T) {
	assert.Equal(t, time.Unix(1723456789, 0).UTC(), tsToTime("1723456789").UTC())
	assert.True(t, tsToTime("not-a-ts").IsZero())
}
