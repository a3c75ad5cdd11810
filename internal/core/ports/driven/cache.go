package driven

import "time"

// ResultCache memoizes gateway results under canonical keys.
//
// Keys embed the operation name, the canonical query or id list, and the
// caller's subject id; per-caller isolation is the caller's responsibility
// when building keys. Implementations must make Get and Put on the same
// key atomic with respect to each other.
type ResultCache interface {
	// Get returns the cached value for key, or false if the key is
	// absent or its TTL has elapsed. Expired entries are evicted on
	// lookup; no background sweep is required.
	Get(key string) (any, bool)

	// Put stores value under key with the given TTL, unconditionally
	// overwriting any existing entry (last-write-wins).
	Put(key string, value any, ttl time.Duration)
}
