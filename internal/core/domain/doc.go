// Package domain defines the core business entities for the workplace
// gateway.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProviderKind: One of the supported workplace sources
//   - CallerIdentity: The authenticated caller and its granted scopes
//   - Document: A normalized document produced by a provider adapter
//   - SearchQuery: An immutable, scope-annotated search request
//   - Summary: An extractive summary of one document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
