package ports

import (
	"context"
	"time"

	"weatherbot.app/internal/domain"
)

// WeatherSource fetches observations and forecasts for a city. Errors are
// NotFound for an unknown city and Unavailable for anything transient.
type WeatherSource interface {
	Fetch(ctx context.Context, city, lang string) (*domain.Snapshot, error)
	Forecast(ctx context.Context, city, lang string) (*domain.Forecast, error)
	Name() string
}

// ForecastCache stores day forecasts between cycles
type ForecastCache interface {
	Get(ctx context.Context, key string) (*domain.Forecast, error)
	Set(ctx context.Context, key string, forecast *domain.Forecast, ttl time.Duration) error
}
