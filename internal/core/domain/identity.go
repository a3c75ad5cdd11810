package domain

import "time"

// Scope is a capability tag bounding which providers a caller's token
// authorizes access to.
type Scope string

const (
	// ScopeDriveRead grants read access to Google Drive.
	ScopeDriveRead Scope = "drive:read"
	// ScopeNotionRead grants read access to Notion.
	ScopeNotionRead Scope = "notion:read"
	// ScopeSlackRead grants read access to Slack.
	ScopeSlackRead Scope = "slack:read"
	// ScopeConfluenceRead grants read access to Confluence.
	ScopeConfluenceRead Scope = "confluence:read"
)

// AllScopes lists every scope the gateway recognizes.
var AllScopes = []Scope{
	ScopeDriveRead,
	ScopeNotionRead,
	ScopeSlackRead,
	ScopeConfluenceRead,
}

// CallerIdentity is the authenticated caller of a single request.
// It is created by the auth gate from a validated token and is never
// persisted; its lifetime is one request.
type CallerIdentity struct {
	// SubjectID is the stable subject identifier from the token.
	SubjectID string

	// Email is the caller's email address, when the token carries one.
	Email string

	// GrantedScopes is the set of capability scopes from the token claims.
	GrantedScopes map[Scope]bool

	// TokenExpiry is when the presented token expires.
	TokenExpiry time.Time
}

// HasScope reports whether the caller holds the given scope.
func (c *CallerIdentity) HasScope(scope Scope) bool {
	return c.GrantedScopes[scope]
}

// CanRead reports whether the caller may read from the given provider.
func (c *CallerIdentity) CanRead(kind ProviderKind) bool {
	return c.HasScope(kind.ReadScope())
}

// DevSubjectID identifies the fixed development identity used when
// authentication is disabled.
const DevSubjectID = "dev-local"

// DevIdentity returns the fixed development identity holding every scope.
// Used only when AUTH_ENABLED=false, for local testing.
func DevIdentity() *CallerIdentity {
	scopes := make(map[Scope]bool, len(AllScopes))
	for _, s := range AllScopes {
		scopes[s] = true
	}
	return &CallerIdentity{
		SubjectID:     DevSubjectID,
		Email:         "dev@localhost",
		GrantedScopes: scopes,
		TokenExpiry:   time.Now().Add(24 * time.Hour),
	}
}
