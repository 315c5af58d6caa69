package external

import (
	"context"
	"encoding/json"
	"time"

	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// ForecastCacheAdapter stores day forecasts as JSON in a generic CacheProvider
type ForecastCacheAdapter struct {
	cacheProvider ports.CacheProvider
}

func NewForecastCacheAdapter(cacheProvider ports.CacheProvider) ports.ForecastCache {
	return &ForecastCacheAdapter{cacheProvider: cacheProvider}
}

func (a *ForecastCacheAdapter) Get(ctx context.Context, key string) (*domain.Forecast, error) {
	data, err := a.cacheProvider.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var forecast domain.Forecast
	if err := json.Unmarshal(data, &forecast); err != nil {
		return nil, errors.NewUnavailableError("failed to deserialize cached forecast", err)
	}
	return &forecast, nil
}

func (a *ForecastCacheAdapter) Set(ctx context.Context, key string, forecast *domain.Forecast, ttl time.Duration) error {
	if forecast == nil {
		return errors.NewValidationError("forecast cannot be nil")
	}

	data, err := json.Marshal(forecast)
	if err != nil {
		return errors.NewUnavailableError("failed to serialize forecast", err)
	}
	return a.cacheProvider.Set(ctx, key, data, ttl)
}
