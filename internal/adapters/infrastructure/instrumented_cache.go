package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"weatherbot.app/internal/ports"
)

// InstrumentedCacheBackend is the cache being measured
type InstrumentedCacheBackend interface {
	ports.CacheProvider
	ports.CacheMetrics
}

type cacheCollectors struct {
	latency  *prometheus.HistogramVec
	hitRatio *prometheus.GaugeVec
}

var (
	cacheCollectorsOnce sync.Once
	cacheCollectorsVal  *cacheCollectors
)

func getCacheCollectors() *cacheCollectors {
	cacheCollectorsOnce.Do(func() {
		cacheCollectorsVal = &cacheCollectors{
			latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "weatherbot_cache_duration_seconds",
					Help:    "Cache operation duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"cache_type", "operation"},
			),
			hitRatio: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "weatherbot_cache_hit_ratio",
					Help: "Cache hit ratio (hits/total lookups)",
				},
				[]string{"cache_type"},
			),
		}
	})
	return cacheCollectorsVal
}

// InstrumentedCache measures every operation of the wrapped cache and
// publishes its hit ratio. Hit and miss counters stay with the caller.
type InstrumentedCache struct {
	cache     InstrumentedCacheBackend
	cacheType string
	c         *cacheCollectors
}

func NewInstrumentedCache(cache InstrumentedCacheBackend, cacheType string) *InstrumentedCache {
	return &InstrumentedCache{
		cache:     cache,
		cacheType: cacheType,
		c:         getCacheCollectors(),
	}
}

func (c *InstrumentedCache) measure(operation string, start time.Time) {
	c.c.latency.WithLabelValues(c.cacheType, operation).Observe(time.Since(start).Seconds())
}

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	defer c.measure("get", time.Now())

	data, err := c.cache.Get(ctx, key)
	c.c.hitRatio.WithLabelValues(c.cacheType).Set(c.cache.GetStats().HitRatio)
	return data, err
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	defer c.measure("set", time.Now())
	return c.cache.Set(ctx, key, value, ttl)
}

func (c *InstrumentedCache) GetStats() ports.CacheStats { return c.cache.GetStats() }

// Close closes the wrapped cache when it holds a connection
func (c *InstrumentedCache) Close() error {
	if closer, ok := c.cache.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
