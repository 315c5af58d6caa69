package external

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

var (
	_ CacheProvider       = (*MemoryCacheProvider)(nil)
	_ CacheProvider       = (*RedisCacheProviderAdapter)(nil)
	_ ports.ForecastCache = (*ForecastCacheAdapter)(nil)
)

func setupMockRedis(t *testing.T) (*miniredis.Miniredis, *ports.RedisConfig) {
	t.Helper()

	server := miniredis.RunT(t)
	return server, &ports.RedisConfig{
		Addr:         server.Addr(),
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	}
}

func TestCacheProviderFactory(t *testing.T) {
	_, redisConfig := setupMockRedis(t)
	factory := NewCacheProviderFactory()

	tests := []struct {
		name         string
		config       *ports.CacheConfig
		expectError  bool
		expectedType string
	}{
		{"NilConfig", nil, true, ""},
		{"Memory", &ports.CacheConfig{Type: "memory"}, false, "*external.MemoryCacheProvider"},
		{"DefaultsToMemory", &ports.CacheConfig{}, false, "*external.MemoryCacheProvider"},
		{"Redis", &ports.CacheConfig{Type: "redis", Redis: *redisConfig}, false, "*external.RedisCacheProviderAdapter"},
		{"Unknown", &ports.CacheConfig{Type: "memcached"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := factory.CreateCacheProvider(tt.config)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedType, fmt.Sprintf("%T", provider))
		})
	}
}

func TestNewRedisCacheProviderAdapter_Unreachable(t *testing.T) {
	adapter, err := NewRedisCacheProviderAdapter(&ports.RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 1})

	assert.Nil(t, adapter)
	assert.True(t, errors.IsUnavailableError(err))
}

func TestCacheProviders_Operations(t *testing.T) {
	server, redisConfig := setupMockRedis(t)
	redisAdapter, err := NewRedisCacheProviderAdapter(redisConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisAdapter.Close() })

	memory := NewMemoryCacheProvider()
	clock := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	memory.now = func() time.Time { return clock }

	providers := []struct {
		name    string
		cache   CacheProvider
		advance func(d time.Duration)
	}{
		{"Memory", memory, func(d time.Duration) { clock = clock.Add(d) }},
		{"Redis", redisAdapter, server.FastForward},
	}

	for _, p := range providers {
		t.Run(p.name, func(t *testing.T) {
			ctx := context.Background()

			_, err := p.cache.Get(ctx, "missing")
			assert.True(t, errors.IsNotFoundError(err))

			require.NoError(t, p.cache.Set(ctx, "key", []byte("value"), time.Minute))
			value, err := p.cache.Get(ctx, "key")
			require.NoError(t, err)
			assert.Equal(t, []byte("value"), value)

			p.advance(2 * time.Minute)
			_, err = p.cache.Get(ctx, "key")
			assert.True(t, errors.IsNotFoundError(err), "entry expires after its TTL")

			stats := p.cache.GetStats()
			assert.Equal(t, int64(1), stats.Hits)
			assert.Equal(t, int64(2), stats.Misses)
			assert.InDelta(t, 1.0/3.0, stats.HitRatio, 0.0001)
		})
	}
}

func TestCacheProviders_Validation(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryCacheProvider()

	tests := []struct {
		name string
		err  error
	}{
		{"EmptyKey", memory.Set(ctx, "", []byte("v"), time.Minute)},
		{"NilValue", memory.Set(ctx, "k", nil, time.Minute)},
		{"ZeroTTL", memory.Set(ctx, "k", []byte("v"), 0)},
		{"GetEmptyKey", func() error { _, err := memory.Get(ctx, ""); return err }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.IsValidationError(tt.err))
		})
	}
}

func TestForecastCacheAdapter(t *testing.T) {
	ctx := context.Background()
	adapter := NewForecastCacheAdapter(NewMemoryCacheProvider())

	forecast := &domain.Forecast{
		City:          "москва",
		Date:          time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		TempMin:       8,
		TempMax:       17,
		Precipitation: 65,
		Description:   "дождь",
	}

	_, err := adapter.Get(ctx, "weather:forecast:москва:ru")
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, adapter.Set(ctx, "weather:forecast:москва:ru", forecast, time.Minute))
	cached, err := adapter.Get(ctx, "weather:forecast:москва:ru")
	require.NoError(t, err)
	assert.Equal(t, forecast.City, cached.City)
	assert.True(t, forecast.Date.Equal(cached.Date))
	assert.Equal(t, forecast.TempMax, cached.TempMax)
	assert.Equal(t, forecast.Description, cached.Description)

	assert.True(t, errors.IsValidationError(adapter.Set(ctx, "k", nil, time.Minute)))
}

func TestForecastCacheAdapter_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	provider := NewMemoryCacheProvider()
	require.NoError(t, provider.Set(ctx, "k", []byte("{not json"), time.Minute))

	_, err := NewForecastCacheAdapter(provider).Get(ctx, "k")

	assert.True(t, errors.IsUnavailableError(err))
}
