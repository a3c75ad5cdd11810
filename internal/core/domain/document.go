package domain

import (
	"sort"
	"strings"
	"time"
)

// Document is the canonical representation of a workplace document after
// provider-specific responses are normalized. Produced only by provider
// adapters; the gateway reorders and truncates but never mutates fields.
type Document struct {
	// ID is the provider-local document identifier.
	ID string

	// Title is the human-readable title.
	Title string

	// Snippet is a short content excerpt for search results.
	Snippet string

	// Content is the full text content. Populated only by Fetch;
	// search and recent results carry just the snippet.
	Content string

	// Source is the provider that produced this document.
	Source ProviderKind

	// URL is a web-openable link to the document.
	URL string

	// LastModified is the provider-reported modification time.
	LastModified time.Time

	// Author is the provider-reported author or last editor.
	Author string

	// MIMEType is the content MIME type after any export conversion.
	MIMEType string
}

// CompositeID returns the "source:id" identifier for this document.
func (d *Document) CompositeID() string {
	return d.Source.CompositeID(d.ID)
}

// SearchQuery is a scope-filtered search request. Immutable once built.
type SearchQuery struct {
	// Text is the raw query text as supplied by the caller.
	Text string

	// Sources is the set of providers to query, already intersected
	// with the caller's granted scopes.
	Sources []ProviderKind

	// MaxResults bounds the merged result set.
	MaxResults int

	// Caller is the authenticated caller issuing the query.
	Caller *CallerIdentity
}

// CanonicalText returns the query text lower-cased with whitespace
// collapsed, for use in cache keys.
func CanonicalText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// CanonicalSources returns the provider names sorted and joined, for use
// in cache keys.
func CanonicalSources(sources []ProviderKind) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Summary is an extractive summary of one document.
type Summary struct {
	// DocumentID is the composite "source:id" of the summarized document.
	DocumentID string

	// Title is the document title.
	Title string

	// Source is the provider the document came from.
	Source ProviderKind

	// Text is the summary, at most the requested maximum length.
	Text string

	// KeyPoints are the most representative sentences of the document.
	KeyPoints []string
}
