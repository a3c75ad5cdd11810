package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// uriScheme is the custom URI scheme for gateway resources.
const uriScheme = "workplace://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Workplace sources configured on this server and the scope each requires",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)
}

// handleSourcesResource returns the configured sources. Listing sources
// does not reveal document data, so it is not gated on a token.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type sourceInfo struct {
		Name          string `json:"name"`
		RequiredScope string `json:"required_scope"`
	}

	infos := make([]sourceInfo, len(s.ports.Sources))
	for i, kind := range s.ports.Sources {
		infos[i] = sourceInfo{
			Name:          string(kind),
			RequiredScope: string(kind.ReadScope()),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// configuredKinds lists the provider kinds present in a provider set, in
// canonical order. Used by callers wiring the Ports value.
func configuredKinds(kinds []domain.ProviderKind) []domain.ProviderKind {
	ordered := make([]domain.ProviderKind, 0, len(kinds))
	for _, kind := range domain.AllProviders {
		for _, have := range kinds {
			if kind == have {
				ordered = append(ordered, kind)
				break
			}
		}
	}
	return ordered
}
