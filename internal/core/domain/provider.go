package domain

import (
	"fmt"
	"strings"
)

// ProviderKind identifies a workplace document source.
type ProviderKind string

const (
	// ProviderGoogleDrive is Google Drive.
	ProviderGoogleDrive ProviderKind = "gdrive"
	// ProviderNotion is Notion.
	ProviderNotion ProviderKind = "notion"
	// ProviderSlack is Slack.
	ProviderSlack ProviderKind = "slack"
	// ProviderConfluence is Confluence.
	ProviderConfluence ProviderKind = "confluence"
)

// AllProviders lists every supported provider in canonical order.
// The order is used for deterministic tie-breaking during merge.
var AllProviders = []ProviderKind{
	ProviderConfluence,
	ProviderGoogleDrive,
	ProviderNotion,
	ProviderSlack,
}

// ParseProviderKind converts a string into a ProviderKind.
// Returns ErrUnknownProvider for unrecognized values.
func ParseProviderKind(s string) (ProviderKind, error) {
	kind := ProviderKind(strings.ToLower(strings.TrimSpace(s)))
	switch kind {
	case ProviderGoogleDrive, ProviderNotion, ProviderSlack, ProviderConfluence:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

// String returns the wire name of the provider.
func (k ProviderKind) String() string {
	return string(k)
}

// ReadScope returns the capability scope required to read from this provider.
// Scope names follow the identity provider's claim convention:
// "drive:read", "notion:read", "slack:read", "confluence:read".
func (k ProviderKind) ReadScope() Scope {
	switch k {
	case ProviderGoogleDrive:
		return ScopeDriveRead
	case ProviderNotion:
		return ScopeNotionRead
	case ProviderSlack:
		return ScopeSlackRead
	case ProviderConfluence:
		return ScopeConfluenceRead
	default:
		return ""
	}
}

// CompositeID builds the "source:id" document identifier used across the
// tool surface, e.g. "gdrive:1A2b3C".
func (k ProviderKind) CompositeID(id string) string {
	return string(k) + ":" + id
}

// SplitCompositeID parses a "source:id" identifier into its provider and
// raw document id. Returns ErrUnknownProvider if the prefix is not a
// supported provider, ErrInvalidDocumentID if the format is malformed.
func SplitCompositeID(compositeID string) (ProviderKind, string, error) {
	source, id, ok := strings.Cut(compositeID, ":")
	if !ok || id == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, compositeID)
	}
	kind, err := ParseProviderKind(source)
	if err != nil {
		return "", "", err
	}
	return kind, id, nil
}
