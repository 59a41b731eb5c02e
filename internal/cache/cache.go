package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Add stores the value only when the key is absent or expired and
	// reports whether it did
	Add(ctx context.Context, key string, value interface{}, expiration time.Duration) bool

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string)
}

// Predefined cache key prefixes
const (
	PrefixPaymentClaim = "payment_claim:v1:"
)
