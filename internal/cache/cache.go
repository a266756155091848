// Package cache stores rendered reports for a short TTL. Redis is used when
// configured and reachable, the report_cache table otherwise.
package cache

import (
	"context"
	"time"
)

// ReportsPrefix starts every report key; mutations drop everything under it
const ReportsPrefix = "reports:"

// Store is a JSON value cache with expiry
type Store interface {
	// Get decodes the cached value into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
	// CleanExpired drops expired entries and returns how many were removed
	CleanExpired(ctx context.Context) (int64, error)
	Backend() string
}

// Key builds a report cache key from its parts
func Key(parts ...string) string {
	key := ReportsPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}
