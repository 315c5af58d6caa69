package ports

import (
	"context"
	"time"
)

// CacheProvider defines the contract for caching operations
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CacheMetrics exposes the hit/miss accounting of a cache
type CacheMetrics interface {
	GetStats() CacheStats
}

// CacheStats represents cache performance metrics
type CacheStats struct {
	Hits        int64
	Misses      int64
	TotalOps    int64
	HitRatio    float64
	LastUpdated time.Time
}
