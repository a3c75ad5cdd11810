package mcp

import (
	"context"
	"net/http"
	"strings"
)

// TrustHeader is the HTTP header carrying the gateway proxy signature.
const TrustHeader = "X-Gateway-Signature"

type credentialsKey struct{}

// credentials are the per-request auth inputs extracted from transport
// headers. Over stdio there are none; the auth gate decides what that
// means based on its configuration.
type credentials struct {
	bearer string
	trust  string
}

// withCredentials stores request credentials in the context.
func withCredentials(ctx context.Context, creds credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// credentialsFrom returns the credentials stored in the context, if any.
func credentialsFrom(ctx context.Context) credentials {
	creds, _ := ctx.Value(credentialsKey{}).(credentials)
	return creds
}

// credentialsMiddleware copies auth headers into the request context so
// tool handlers can reach them through the MCP session's context.
func credentialsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		ctx := withCredentials(r.Context(), credentials{
			bearer: bearer,
			trust:  r.Header.Get(TrustHeader),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
