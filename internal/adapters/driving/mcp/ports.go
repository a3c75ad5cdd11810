package mcp

import (
	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Gateway dispatches tool operations across the provider adapters.
	Gateway driving.GatewayService

	// Auth validates bearer tokens and resolves caller identities.
	Auth driving.AuthService

	// Sources lists the providers configured at startup, for the
	// sources resource.
	Sources []domain.ProviderKind
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Gateway == nil {
		return ErrMissingGatewayService
	}
	if p.Auth == nil {
		return ErrMissingAuthService
	}
	return nil
}
