// Package mcp provides the MCP (Model Context Protocol) server adapter.
// It exposes the workplace gateway's tool surface to AI assistants over
// stdio or streamable HTTP.
package mcp

import "errors"

// ErrMissingGatewayService is returned when the gateway service is not provided.
var ErrMissingGatewayService = errors.New("mcp: gateway service is required")

// ErrMissingAuthService is returned when the auth service is not provided.
var ErrMissingAuthService = errors.New("mcp: auth service is required")
