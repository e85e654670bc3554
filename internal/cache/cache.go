package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract the engine consumes. Implementations
// must be safe for concurrent use; no cross-key guarantees are required.
// A miss is (false, nil), not an error.
type Cache interface {
	// Get retrieves a cached value by key and unmarshals into target.
	Get(ctx context.Context, key string, target interface{}) (bool, error)

	// Set stores a value under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ContextKey builds the cache key for a built user/project context.
func ContextKey(userID, projectID string) string {
	return "context:" + userID + ":" + projectID
}

// CatalogueKey is the well-known key under which the semantic catalogue
// is cached.
const CatalogueKey = "semantic:catalogue"
