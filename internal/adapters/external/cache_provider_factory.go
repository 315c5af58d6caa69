package external

import (
	"fmt"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// CacheProvider is what the factory hands out: storage plus hit accounting
type CacheProvider interface {
	ports.CacheProvider
	ports.CacheMetrics
}

type CacheProviderFactory struct{}

func NewCacheProviderFactory() *CacheProviderFactory {
	return &CacheProviderFactory{}
}

func (f *CacheProviderFactory) CreateCacheProvider(cfg *ports.CacheConfig) (CacheProvider, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case "memory", "":
		return NewMemoryCacheProvider(), nil
	case "redis":
		return NewRedisCacheProviderAdapter(&cfg.Redis)
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type), nil)
	}
}
