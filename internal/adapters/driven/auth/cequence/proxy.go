// Package cequence verifies the signed trust header attached by the
// Cequence gateway proxy sitting in front of the server. The proxy signs
// each request it has inspected; a missing or forged signature means the
// request bypassed the proxy and is rejected before token validation.
package cequence

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

var _ driven.ProxyVerifier = (*Verifier)(nil)

// Verifier checks the HMAC-SHA256 trust header against a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier with the shared signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifyTrustHeader validates a header of the form "<payload>.<hex signature>"
// where the signature is HMAC-SHA256 of the payload under the shared secret.
func (v *Verifier) VerifyTrustHeader(_ context.Context, header string) error {
	if header == "" {
		return domain.NewAuthError(domain.AuthProxyRejected, "missing gateway trust header")
	}

	payload, sig, ok := strings.Cut(header, ".")
	if !ok || payload == "" || sig == "" {
		return domain.NewAuthError(domain.AuthProxyRejected, "malformed gateway trust header")
	}

	want, err := hex.DecodeString(sig)
	if err != nil {
		return domain.NewAuthError(domain.AuthProxyRejected, "malformed gateway signature")
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	if !hmac.Equal(mac.Sum(nil), want) {
		return domain.NewAuthError(domain.AuthProxyRejected, "gateway signature mismatch")
	}
	return nil
}

// Sign computes the trust header for a payload. Used by tests and by
// local tooling that replays requests without the proxy in front.
func (v *Verifier) Sign(payload string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	return payload + "." + hex.EncodeToString(mac.Sum(nil))
}
