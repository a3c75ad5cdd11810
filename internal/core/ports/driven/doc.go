// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Provider: Searches and fetches documents from one workplace source
//   - ResultCache: TTL memoization of gateway results
//   - TokenVerifier: Validates bearer tokens at the identity provider
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ProxyVerifier: Security-proxy trust header validation. Without it,
//     the proxy gate is skipped.
//   - AuditStore: Write-only audit log. Without it, authorize decisions
//     are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
