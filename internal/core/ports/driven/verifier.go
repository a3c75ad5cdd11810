package driven

import "context"

// TokenClaims is the verified claim set extracted from a bearer token.
type TokenClaims struct {
	// SubjectID is the stable subject identifier ("sub" claim).
	SubjectID string

	// Email is the caller's email address, if present.
	Email string

	// Permissions are the raw permission strings from the token.
	// The auth gate maps these onto domain scopes.
	Permissions []string

	// ExpiresAt is the token expiry as a Unix timestamp in seconds.
	ExpiresAt int64
}

// TokenVerifier validates a bearer token against the identity provider
// and returns its claims. Verification failures are returned as
// domain.AuthError with kind InvalidToken or Expired.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*TokenClaims, error)
}

// ProxyVerifier validates the security-proxy trust header accompanying a
// request. A missing or invalid header is returned as domain.AuthError
// with kind ProxyRejected; the identity provider must not be contacted
// in that case.
type ProxyVerifier interface {
	VerifyTrustHeader(ctx context.Context, header string) error
}
