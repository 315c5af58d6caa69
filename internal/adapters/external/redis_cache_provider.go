package external

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/go-redis/redis/v8"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// RedisCacheProviderAdapter implements CacheProvider port using Redis
type RedisCacheProviderAdapter struct {
	client *redis.Client
	stats  cacheCounters
}

// NewRedisCacheProviderAdapter connects and pings the server before returning
func NewRedisCacheProviderAdapter(cfg *ports.RedisConfig) (*RedisCacheProviderAdapter, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewUnavailableError("failed to connect to Redis", err)
	}

	return &RedisCacheProviderAdapter{client: client}, nil
}

func (r *RedisCacheProviderAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			r.stats.miss()
			return nil, errors.NewNotFoundError("cache miss")
		}
		return nil, errors.NewUnavailableError("redis get operation failed", err)
	}

	r.stats.hit()
	return val, nil
}

func (r *RedisCacheProviderAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := validateEntry(key, value, ttl); err != nil {
		return err
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.NewUnavailableError("redis set operation failed", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) GetStats() ports.CacheStats { return r.stats.snapshot() }

func (r *RedisCacheProviderAdapter) Close() error {
	if err := r.client.Close(); err != nil {
		return errors.NewUnavailableError("failed to close Redis connection", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewUnavailableError("Redis ping failed", err)
	}
	return nil
}
