package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TokenCache maps exact bearer strings to the user ID that cryptographic
// verification resolved them to. It is bounded both by population (LRU
// eviction past capacity) and by time (entries never outlive the TTL), so a
// token revoked before its natural expiry is accepted for at most the TTL.
//
// The cache is process-local, rebuildable, and safe to lose; it is a pure
// performance layer in front of signature verification, never a source of
// truth. All operations are safe for concurrent use.
type TokenCache struct {
	entries *expirable.LRU[string, uuid.UUID]
}

// NewTokenCache creates a cache bounded to size entries with the given TTL.
func NewTokenCache(size int, ttl time.Duration) *TokenCache {
	return &TokenCache{
		entries: expirable.NewLRU[string, uuid.UUID](size, nil, ttl),
	}
}

// Get returns the cached user ID for the token, if present and unexpired.
func (c *TokenCache) Get(token string) (uuid.UUID, bool) {
	return c.entries.Get(token)
}

// Add stores the verified token → user ID mapping, subject to the cache's
// capacity and TTL bounds. Last write wins on a duplicate key; the value is
// idempotent for a valid token so ordering between writers does not matter.
func (c *TokenCache) Add(token string, userID uuid.UUID) {
	c.entries.Add(token, userID)
}

// Remove evicts the entry for the token. Removing a token that was never
// cached is a harmless no-op, so callers can evict unconditionally after a
// failed verification.
func (c *TokenCache) Remove(token string) {
	c.entries.Remove(token)
}

// Len returns the current cache population.
func (c *TokenCache) Len() int {
	return c.entries.Len()
}
