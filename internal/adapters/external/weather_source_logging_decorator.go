package external

import (
	"context"
	"time"

	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
)

// WeatherSourceLoggingDecorator records every weather source call
type WeatherSourceLoggingDecorator struct {
	source ports.WeatherSource
	logger ports.Logger
}

func NewWeatherSourceLoggingDecorator(source ports.WeatherSource, logger ports.Logger) ports.WeatherSource {
	return &WeatherSourceLoggingDecorator{
		source: source,
		logger: logger,
	}
}

func (d *WeatherSourceLoggingDecorator) Fetch(ctx context.Context, city, lang string) (*domain.Snapshot, error) {
	start := d.started("fetch", city, lang)

	snapshot, err := d.source.Fetch(ctx, city, lang)
	if err != nil {
		d.failed("fetch", city, start, err)
		return nil, err
	}

	d.logger.Info("Weather source request completed",
		ports.F("source", d.source.Name()),
		ports.F("operation", "fetch"),
		ports.F("city", city),
		ports.F("event", "response"),
		ports.F("duration_ms", time.Since(start).Milliseconds()),
		ports.F("temperature", snapshot.Temperature),
		ports.F("humidity", snapshot.Humidity),
		ports.F("wind_speed", snapshot.WindSpeed),
		ports.F("description", snapshot.Description))
	return snapshot, nil
}

func (d *WeatherSourceLoggingDecorator) Forecast(ctx context.Context, city, lang string) (*domain.Forecast, error) {
	start := d.started("forecast", city, lang)

	forecast, err := d.source.Forecast(ctx, city, lang)
	if err != nil {
		d.failed("forecast", city, start, err)
		return nil, err
	}

	d.logger.Info("Weather source request completed",
		ports.F("source", d.source.Name()),
		ports.F("operation", "forecast"),
		ports.F("city", city),
		ports.F("event", "response"),
		ports.F("duration_ms", time.Since(start).Milliseconds()),
		ports.F("temp_min", forecast.TempMin),
		ports.F("temp_max", forecast.TempMax),
		ports.F("precipitation", forecast.Precipitation),
		ports.F("description", forecast.Description))
	return forecast, nil
}

// Name is passed through so metrics keep the real source label
func (d *WeatherSourceLoggingDecorator) Name() string {
	return d.source.Name()
}

func (d *WeatherSourceLoggingDecorator) started(operation, city, lang string) time.Time {
	d.logger.Info("Weather source request started",
		ports.F("source", d.source.Name()),
		ports.F("operation", operation),
		ports.F("city", city),
		ports.F("lang", lang),
		ports.F("event", "request"))
	return time.Now()
}

func (d *WeatherSourceLoggingDecorator) failed(operation, city string, start time.Time, err error) {
	d.logger.Error("Weather source request failed",
		ports.F("source", d.source.Name()),
		ports.F("operation", operation),
		ports.F("city", city),
		ports.F("event", "error"),
		ports.F("duration_ms", time.Since(start).Milliseconds()),
		ports.F("error", err.Error()))
}
