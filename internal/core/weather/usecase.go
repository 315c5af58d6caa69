package weather

import (
	"context"
	"fmt"
	"time"

	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

type UseCase struct {
	source     ports.WeatherSource
	snapshots  ports.SnapshotRepository
	cache      ports.ForecastCache
	heartbeat  ports.Heartbeat
	config     ports.ConfigProvider
	logger     ports.Logger
	metrics    ports.MetricsCollector
	thresholds Thresholds
	now        func() time.Time
}

type UseCaseDependencies struct {
	Source     ports.WeatherSource
	Snapshots  ports.SnapshotRepository
	Cache      ports.ForecastCache
	Heartbeat  ports.Heartbeat
	Config     ports.ConfigProvider
	Logger     ports.Logger
	Metrics    ports.MetricsCollector
	Thresholds *Thresholds
	Now        func() time.Time
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Source == nil {
		return nil, errors.NewValidationError("weather source is required")
	}
	if deps.Snapshots == nil {
		return nil, errors.NewValidationError("snapshot repository is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("forecast cache is required")
	}
	if deps.Heartbeat == nil {
		return nil, errors.NewValidationError("heartbeat is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}

	thresholds := DefaultThresholds()
	if deps.Thresholds != nil {
		thresholds = *deps.Thresholds
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &UseCase{
		source:     deps.Source,
		snapshots:  deps.Snapshots,
		cache:      deps.Cache,
		heartbeat:  deps.Heartbeat,
		config:     deps.Config,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		thresholds: thresholds,
		now:        now,
	}, nil
}

// Evaluate fetches the city, compares the result with the stored baseline and
// persists the new state. A ChangeRecord is returned only for OutcomeChanged.
func (uc *UseCase) Evaluate(ctx context.Context, city string) (Outcome, *domain.ChangeRecord, error) {
	key := domain.NormalizeCity(city)
	if key == "" {
		return OutcomeFetchFailed, nil, errors.NewValidationError("city cannot be empty")
	}

	fresh, err := uc.source.Fetch(ctx, key, uc.config.GetWeatherConfig().DefaultLanguage)
	uc.metrics.RecordWeatherFetch(ctx, uc.source.Name(), err == nil)

	// a failed attempt still proves the loop is alive
	now := uc.now()
	uc.heartbeat.Beat(now)
	if err != nil {
		return OutcomeFetchFailed, nil, fmt.Errorf("fetch weather for %s: %w", key, err)
	}

	stored, err := uc.snapshots.Get(ctx, key)
	if err != nil {
		if !errors.IsNotFoundError(err) {
			return OutcomePersistFailed, nil, fmt.Errorf("load snapshot for %s: %w", key, err)
		}
		fresh.ResolveUnknown(nil)
		baseline := &domain.CitySnapshot{
			City:        key,
			Current:     *fresh,
			Last:        *fresh,
			LastChecked: now,
		}
		if err := uc.snapshots.Upsert(ctx, baseline); err != nil {
			return OutcomePersistFailed, nil, fmt.Errorf("store baseline for %s: %w", key, err)
		}
		uc.logger.Info("Stored baseline snapshot", ports.F("city", key))
		return OutcomeBaseline, nil, nil
	}

	fresh.ResolveUnknown(&stored.Current)
	updated := *stored
	updated.Current = *fresh
	updated.LastChecked = now

	var record *domain.ChangeRecord
	if uc.thresholds.IsSignificant(stored.Last, *fresh) {
		record = &domain.ChangeRecord{
			City:     key,
			Snapshot: *fresh,
			Previous: stored.Last,
			Changes:  fresh.Diff(stored.Last),
		}
		updated.Last = *fresh
	}

	if err := uc.snapshots.Upsert(ctx, &updated); err != nil {
		return OutcomePersistFailed, nil, fmt.Errorf("store snapshot for %s: %w", key, err)
	}

	if record == nil {
		uc.logger.Debug("No significant change", ports.F("city", key))
		return OutcomeUpdated, nil, nil
	}

	uc.logger.Info("Significant weather change detected",
		ports.F("city", key),
		ports.F("changes", len(record.Changes)))
	return OutcomeChanged, record, nil
}

// RefreshCities evaluates every city, retrying fetch failures in up to
// FetchPasses passes. Unknown cities are not retried.
func (uc *UseCase) RefreshCities(ctx context.Context, cities []string) (domain.ChangeSet, []string) {
	changes := make(domain.ChangeSet)
	passes := uc.config.GetSchedulerConfig().FetchPasses
	if passes < 1 {
		passes = 1
	}

	pending := uniqueCities(cities)
	var failed []string

	for pass := 1; pass <= passes && len(pending) > 0 && ctx.Err() == nil; pass++ {
		var retry []string
		for i, city := range pending {
			if ctx.Err() != nil {
				retry = append(retry, pending[i:]...)
				break
			}

			outcome, record, err := uc.Evaluate(ctx, city)
			switch outcome {
			case OutcomeChanged:
				changes[city] = record
			case OutcomeFetchFailed:
				if errors.IsNotFoundError(err) || errors.IsValidationError(err) {
					uc.logger.Warn("City not recognised by weather source",
						ports.F("city", city),
						ports.F("error", err))
					failed = append(failed, city)
					continue
				}
				uc.logger.Warn("Weather fetch failed",
					ports.F("city", city),
					ports.F("pass", pass),
					ports.F("error", err))
				retry = append(retry, city)
			case OutcomePersistFailed:
				uc.logger.Error("Failed to persist snapshot",
					ports.F("city", city),
					ports.F("error", err))
				failed = append(failed, city)
			}
		}
		pending = retry
	}

	for _, city := range pending {
		uc.logger.Error("Skipping city until next cycle",
			ports.F("city", city),
			ports.F("passes", passes))
	}
	failed = append(failed, pending...)

	return changes, failed
}

// GetForecast returns the day forecast for a city, served from cache when
// possible.
func (uc *UseCase) GetForecast(ctx context.Context, city, lang string) (*domain.Forecast, error) {
	key := domain.NormalizeCity(city)
	if key == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}
	if lang == "" {
		lang = uc.config.GetWeatherConfig().DefaultLanguage
	}

	cacheKey := fmt.Sprintf("weather:forecast:%s:%s", key, lang)
	cached, err := uc.cache.Get(ctx, cacheKey)
	if err == nil && cached != nil {
		uc.metrics.RecordCacheHit(ctx)
		uc.logger.Debug("Forecast found in cache", ports.F("city", key))
		return cached, nil
	}
	uc.metrics.RecordCacheMiss(ctx)

	forecast, err := uc.source.Forecast(ctx, key, lang)
	uc.metrics.RecordWeatherFetch(ctx, uc.source.Name(), err == nil)
	if err != nil {
		return nil, fmt.Errorf("get forecast for %s: %w", key, err)
	}

	ttl := uc.config.GetWeatherConfig().ForecastCacheTTL
	if cacheErr := uc.cache.Set(ctx, cacheKey, forecast, ttl); cacheErr != nil {
		uc.logger.Warn("Failed to cache forecast",
			ports.F("city", key),
			ports.F("error", cacheErr))
	}

	return forecast, nil
}

func uniqueCities(cities []string) []string {
	seen := make(map[string]struct{}, len(cities))
	out := make([]string, 0, len(cities))
	for _, city := range cities {
		key := domain.NormalizeCity(city)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
