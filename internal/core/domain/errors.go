package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrUnknownProvider indicates an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidDocumentID indicates a document id not in "source:id" form.
	ErrInvalidDocumentID = errors.New("invalid document id")

	// ErrAllSourcesFailed indicates every provider in a fan-out failed.
	// Partial failure is reported via warnings instead.
	ErrAllSourcesFailed = errors.New("all sources failed")
)

// AuthErrorKind classifies authentication and authorization failures.
type AuthErrorKind string

const (
	// AuthInvalidToken indicates the token is malformed or failed
	// verification at the identity provider.
	AuthInvalidToken AuthErrorKind = "invalid_token"
	// AuthExpired indicates the token's expiry has passed.
	AuthExpired AuthErrorKind = "expired"
	// AuthProxyRejected indicates the security-proxy trust header was
	// missing or invalid. The identity provider is never contacted.
	AuthProxyRejected AuthErrorKind = "proxy_rejected"
	// AuthNoScope indicates no requested source survived scope filtering.
	AuthNoScope AuthErrorKind = "no_scope"
)

// AuthError is a terminal authentication failure. Never retried.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Kind, e.Message)
}

// NewAuthError builds an AuthError with a formatted message.
func NewAuthError(kind AuthErrorKind, format string, args ...any) *AuthError {
	return &AuthError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsAuthError returns the AuthError and true if err is one.
func IsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ProviderErrorKind classifies upstream provider failures.
type ProviderErrorKind string

const (
	// ProviderUnavailable indicates a transient upstream failure
	// (5xx or timeout) that persisted through bounded retries.
	ProviderUnavailable ProviderErrorKind = "unavailable"
	// ProviderRateLimited indicates the upstream returned HTTP 429.
	// Adapters do not retry rate-limit responses.
	ProviderRateLimited ProviderErrorKind = "rate_limited"
	// ProviderNotFound indicates the requested document does not exist.
	ProviderNotFound ProviderErrorKind = "not_found"
	// ProviderTimeout indicates the per-source deadline elapsed before
	// the provider responded.
	ProviderTimeout ProviderErrorKind = "timeout"
	// ProviderUnauthorized indicates the stored provider credential was
	// rejected upstream.
	ProviderUnauthorized ProviderErrorKind = "unauthorized"
)

// ProviderError is a failure local to one provider adapter. It is carried
// per source and surfaced as a warning unless every source in a fan-out
// fails.
type ProviderError struct {
	Source  ProviderKind
	Kind    ProviderErrorKind
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, e.Message)
}

// NewProviderError builds a ProviderError with a formatted message.
func NewProviderError(source ProviderKind, kind ProviderErrorKind, format string, args ...any) *ProviderError {
	return &ProviderError{Source: source, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsProviderError returns the ProviderError and true if err is one.
func IsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsNotFound reports whether err is a ProviderError of kind NotFound.
func IsNotFound(err error) bool {
	pe, ok := IsProviderError(err)
	return ok && pe.Kind == ProviderNotFound
}

// ValidationError indicates malformed caller input. Surfaced immediately,
// before the auth gate runs, and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError returns the ValidationError and true if err is one.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
