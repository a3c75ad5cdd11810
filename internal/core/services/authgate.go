package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/workplace-mcp/internal/logger"
)

// Ensure AuthGate implements the interface.
var _ driving.AuthService = (*AuthGate)(nil)

// permissionScopes maps identity-provider permission claims onto domain
// scopes. The identity provider uses both short and provider-prefixed
// spellings, so both are accepted.
var permissionScopes = map[string]domain.Scope{
	"drive:read":        domain.ScopeDriveRead,
	"google-drive:read": domain.ScopeDriveRead,
	"gdrive:read":       domain.ScopeDriveRead,
	"notion:read":       domain.ScopeNotionRead,
	"slack:read":        domain.ScopeSlackRead,
	"confluence:read":   domain.ScopeConfluenceRead,
}

// AuthGate validates bearer tokens and resolves caller identities.
//
// When the security proxy is configured, its trust header is checked
// before the identity provider is contacted; a missing or invalid header
// fails fast without an upstream call. When authentication is disabled
// (development only), every request resolves to the fixed dev identity.
type AuthGate struct {
	verifier driven.TokenVerifier
	proxy    driven.ProxyVerifier
	audit    driven.AuditStore
	enabled  bool
}

// NewAuthGate creates an auth gate. The proxy and audit parameters are
// optional (can be nil). When enabled is false the gate short-circuits to
// the development identity and never contacts the verifier.
func NewAuthGate(verifier driven.TokenVerifier, proxy driven.ProxyVerifier, audit driven.AuditStore, enabled bool) *AuthGate {
	return &AuthGate{
		verifier: verifier,
		proxy:    proxy,
		audit:    audit,
		enabled:  enabled,
	}
}

// Authorize implements driving.AuthService.
func (g *AuthGate) Authorize(ctx context.Context, bearerToken, trustHeader, operation string) (*domain.CallerIdentity, error) {
	if !g.enabled {
		logger.Debug("Auth disabled, using development identity")
		dev := domain.DevIdentity()
		g.record(ctx, dev.SubjectID, operation, "allow")
		return dev, nil
	}

	// Proxy gate first: fail fast without contacting the identity
	// provider when the trust header does not check out.
	if g.proxy != nil {
		if err := g.proxy.VerifyTrustHeader(ctx, trustHeader); err != nil {
			logger.Warn("Proxy trust header rejected: %v", err)
			g.record(ctx, "", operation, string(domain.AuthProxyRejected))
			if _, ok := domain.IsAuthError(err); ok {
				return nil, err
			}
			return nil, domain.NewAuthError(domain.AuthProxyRejected, "trust header rejected: %v", err)
		}
	}

	token := strings.TrimSpace(strings.TrimPrefix(bearerToken, "Bearer "))
	if token == "" {
		g.record(ctx, "", operation, string(domain.AuthInvalidToken))
		return nil, domain.NewAuthError(domain.AuthInvalidToken, "missing bearer token")
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		logger.Warn("Token verification failed: %v", err)
		g.record(ctx, "", operation, string(domain.AuthInvalidToken))
		if _, ok := domain.IsAuthError(err); ok {
			return nil, err
		}
		return nil, domain.NewAuthError(domain.AuthInvalidToken, "token verification failed: %v", err)
	}

	expiry := time.Unix(claims.ExpiresAt, 0)
	if claims.ExpiresAt > 0 && expiry.Before(time.Now()) {
		g.record(ctx, claims.SubjectID, operation, string(domain.AuthExpired))
		return nil, domain.NewAuthError(domain.AuthExpired, "token expired at %s", expiry.Format(time.RFC3339))
	}

	caller := &domain.CallerIdentity{
		SubjectID:     claims.SubjectID,
		Email:         claims.Email,
		GrantedScopes: mapScopes(claims.Permissions),
		TokenExpiry:   expiry,
	}

	logger.Debug("Authorized subject %s with %d scopes", caller.SubjectID, len(caller.GrantedScopes))
	g.record(ctx, caller.SubjectID, operation, "allow")
	return caller, nil
}

// mapScopes converts raw permission claims into the scope set using the
// fixed lookup table. Unknown permissions are ignored.
func mapScopes(permissions []string) map[domain.Scope]bool {
	scopes := make(map[domain.Scope]bool)
	for _, p := range permissions {
		if scope, ok := permissionScopes[strings.ToLower(strings.TrimSpace(p))]; ok {
			scopes[scope] = true
		}
	}
	return scopes
}

// record appends an audit entry. Audit is write-only and best-effort: a
// failed write is logged, never propagated to the caller.
func (g *AuthGate) record(ctx context.Context, subjectID, operation, decision string) {
	if g.audit == nil {
		return
	}
	rec := driven.AuditRecord{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Operation: operation,
		Decision:  decision,
		Timestamp: time.Now().UTC(),
	}
	if err := g.audit.Append(ctx, rec); err != nil {
		logger.Warn("Audit write failed: %v", err)
	}
}
