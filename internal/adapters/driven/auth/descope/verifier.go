// Package descope validates bearer tokens against the Descope session
// validation API and maps the session claims into caller claims.
package descope

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

const defaultBaseURL = "https://api.descope.com"

var _ driven.TokenVerifier = (*Verifier)(nil)

// Verifier validates Descope session tokens over HTTP.
type Verifier struct {
	projectID string
	baseURL   string
	client    *http.Client
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithBaseURL overrides the Descope API base URL. Used in tests.
func WithBaseURL(url string) Option {
	return func(v *Verifier) {
		v.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) {
		v.client = c
	}
}

// NewVerifier creates a verifier for the given Descope project.
func NewVerifier(projectID string, opts ...Option) *Verifier {
	v := &Verifier{
		projectID: projectID,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// sessionResponse is the subset of the validate response we consume.
type sessionResponse struct {
	SessionToken struct {
		Sub         string   `json:"sub"`
		Email       string   `json:"email"`
		Permissions []string `json:"permissions"`
		Exp         int64    `json:"exp"`
	} `json:"sessionToken"`
}

// Verify validates a session token and returns its claims.
// A 401 from the API maps to an invalid-token auth error; any other
// failure is reported as-is so the gate can treat it as a hard error.
func (v *Verifier) Verify(ctx context.Context, token string) (*driven.TokenClaims, error) {
	body := strings.NewReader(fmt.Sprintf(`{"sessionJwt":%q}`, token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/auth/validate", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.projectID+":"+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to decode
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.NewAuthError(domain.AuthInvalidToken, "session token rejected")
	default:
		return nil, fmt.Errorf("session validation failed with status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if session.SessionToken.Sub == "" {
		return nil, domain.NewAuthError(domain.AuthInvalidToken, "session token carries no subject")
	}

	return &driven.TokenClaims{
		SubjectID:   session.SessionToken.Sub,
		Email:       session.SessionToken.Email,
		Permissions: session.SessionToken.Permissions,
		ExpiresAt:   session.SessionToken.Exp,
	}, nil
}
