// Package slack implements the Slack provider on the Slack Web API.
//
// Messages are addressed as "<channel>/<ts>" so a message can be
// re-fetched from conversation history without a second search.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/workplace-mcp/internal/connectors"
	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

const defaultBaseURL = "https://slack.com/api"

var _ driven.Provider = (*Connector)(nil)

// Connector is the Slack provider adapter.
type Connector struct {
	token   string
	baseURL string
	client  *http.Client
	limiter *connectors.RateLimiter
}

// Option configures a Connector.
type Option func(*Connector)

// WithBaseURL overrides the Slack API base URL. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Connector) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) {
		c.client = client
	}
}

// New creates a Slack connector with a user or bot token.
// Search requires a user token; the search API rejects bot tokens.
func New(token string, opts ...Option) *Connector {
	c := &Connector{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: connectors.NewRateLimiter(domain.ProviderSlack),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the provider identifier.
func (c *Connector) Kind() domain.ProviderKind {
	return domain.ProviderSlack
}

type searchResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages struct {
		Matches []message `json:"matches"`
	} `json:"messages"`
}

type historyResponse struct {
	OK       bool      `json:"ok"`
	Error    string    `json:"error"`
	Messages []message `json:"messages"`
}

type message struct {
	Text      string `json:"text"`
	TS        string `json:"ts"`
	Username  string `json:"username"`
	Permalink string `json:"permalink"`
	Channel   struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"channel"`
}

// Search queries messages via search.messages, newest first.
func (c *Connector) Search(ctx context.Context, text string, maxResults int) ([]domain.Document, error) {
	params := url.Values{
		"query":    {text},
		"count":    {strconv.Itoa(maxResults)},
		"sort":     {"timestamp"},
		"sort_dir": {"desc"},
	}

	var resp searchResponse
	if err := c.call(ctx, "search.messages", params, &resp); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(resp.Messages.Matches))
	for _, msg := range resp.Messages.Matches {
		docs = append(docs, messageToDocument(msg, msg.Channel.ID))
		if len(docs) >= maxResults {
			break
		}
	}
	return docs, nil
}

// Fetch retrieves one message addressed as "<channel>/<ts>" from
// conversation history.
func (c *Connector) Fetch(ctx context.Context, id string) (*domain.Document, error) {
	channel, ts, ok := strings.Cut(id, "/")
	if !ok {
		return nil, domain.NewProviderError(domain.ProviderSlack, domain.ProviderNotFound, "message id %q is not channel/ts", id)
	}

	params := url.Values{
		"channel":   {channel},
		"latest":    {ts},
		"oldest":    {ts},
		"inclusive": {"true"},
		"limit":     {"1"},
	}

	var resp historyResponse
	if err := c.call(ctx, "conversations.history", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Messages) == 0 {
		return nil, domain.NewProviderError(domain.ProviderSlack, domain.ProviderNotFound, "message %s not found", id)
	}

	doc := messageToDocument(resp.Messages[0], channel)
	doc.ID = id
	doc.Content = resp.Messages[0].Text
	return &doc, nil
}

// Recent searches for messages after the cutoff date, newest first.
// Slack's "after:" modifier has day granularity, so results are also
// filtered against the exact threshold.
func (c *Connector) Recent(ctx context.Context, since time.Time, maxResults int) ([]domain.Document, error) {
	params := url.Values{
		"query":    {"after:" + since.UTC().AddDate(0, 0, -1).Format("2006-01-02")},
		"count":    {strconv.Itoa(maxResults)},
		"sort":     {"timestamp"},
		"sort_dir": {"desc"},
	}

	var resp searchResponse
	if err := c.call(ctx, "search.messages", params, &resp); err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, msg := range resp.Messages.Matches {
		doc := messageToDocument(msg, msg.Channel.ID)
		if doc.LastModified.Before(since) {
			continue
		}
		docs = append(docs, doc)
		if len(docs) >= maxResults {
			break
		}
	}
	return docs, nil
}

// call runs one Web API method behind the rate limiter and retry policy.
func (c *Connector) call(ctx context.Context, method string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := connectors.Retry(ctx, func() error {
		return c.callOnce(ctx, method, params, out)
	})
	if pe, ok := domain.IsProviderError(err); ok && pe.Kind == domain.ProviderRateLimited {
		c.limiter.RecordRateLimitError(0)
	}
	return err
}

func (c *Connector) callOnce(ctx context.Context, method string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+method+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewProviderError(domain.ProviderSlack, domain.ProviderRateLimited, "%s rate limited", method)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return domain.NewProviderError(domain.ProviderSlack, domain.ProviderUnauthorized, "%s returned %d", method, resp.StatusCode)
	case resp.StatusCode >= 500:
		return domain.NewProviderError(domain.ProviderSlack, domain.ProviderUnavailable, "%s returned %d", method, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return domain.NewProviderError(domain.ProviderSlack, domain.ProviderUnavailable, "%s returned %d", method, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return apiError(method, out)
}

// apiError maps Slack's ok=false envelope into provider errors. Slack
// reports most failures with HTTP 200 and an error code in the body.
func apiError(method string, out any) error {
	var ok bool
	var code string
	switch resp := out.(type) {
	case *searchResponse:
		ok, code = resp.OK, resp.Error
	case *historyResponse:
		ok, code = resp.OK, resp.Error
	default:
		return nil
	}
	if ok {
		return nil
	}

	switch code {
	case "ratelimited", "rate_limited":
		return domain.NewProviderError(domain.ProviderSlack, domain.ProviderRateLimited, "%s: %s", method, code)
	case "invalid_auth", "token_revoked", "token_expired", "not_authed", "missing_scope":
		return domain.NewProviderError(domain.ProviderSlack, domain.ProviderUnauthorized, "%s: %s", method, code)
	case "channel_not_found", "thread_not_found":
		return domain.NewProviderError(domain.ProviderSlack, domain.ProviderNotFound, "%s: %s", method, code)
	default:
		return domain.NewProviderError(domain.ProviderSlack, domain.ProviderUnavailable, "%s: %s", method, code)
	}
}

func messageToDocument(msg message, channel string) domain.Document {
	title := "#" + msg.Channel.Name
	if msg.Channel.Name == "" {
		title = channel
	}
	return domain.Document{
		ID:           channel + "/" + msg.TS,
		Title:        title,
		Snippet:      snippetOf(msg.Text),
		Source:       domain.ProviderSlack,
		URL:          msg.Permalink,
		LastModified: tsToTime(msg.TS),
		Author:       msg.Username,
	}
}

// snippetOf bounds message text to a short preview.
func snippetOf(text string) string {
	const maxSnippet = 200
	runes := []rune(text)
	if len(runes) <= maxSnippet {
		return text
	}
	return string(runes[:maxSnippet]) + "..."
}

// tsToTime converts a Slack "seconds.micros" timestamp.
func tsToTime(ts string) time.Time {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
