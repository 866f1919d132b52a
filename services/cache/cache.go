package cache

import (
	"time"
)

// CacheService stores short-lived flags such as per-host rate limit blocks
type CacheService interface {
	// Get retrieves a value from the cache; a miss is reported as an error
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
