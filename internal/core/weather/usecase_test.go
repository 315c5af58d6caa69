package weather

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/pkg/errors"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type testDeps struct {
	source    *mocks.WeatherSource
	snapshots *mocks.SnapshotRepository
	cache     *mocks.ForecastCache
	heartbeat *mocks.Heartbeat
	logger    *mocks.Logger
	metrics   *mocks.Metrics
}

func newTestUseCase(t *testing.T) (*UseCase, testDeps) {
	deps := testDeps{
		source:    mocks.NewWeatherSource(t),
		snapshots: mocks.NewSnapshotRepository(t),
		cache:     mocks.NewForecastCache(t),
		heartbeat: &mocks.Heartbeat{},
		logger:    mocks.NewLogger(),
		metrics:   mocks.NewMetrics(),
	}

	uc, err := NewUseCase(UseCaseDependencies{
		Source:    deps.source,
		Snapshots: deps.snapshots,
		Cache:     deps.cache,
		Heartbeat: deps.heartbeat,
		Config:    mocks.NewConfigProvider(),
		Logger:    deps.logger,
		Metrics:   deps.metrics,
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return uc, deps
}

func baseSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Temperature: 10,
		FeelsLike:   8,
		Humidity:    60,
		WindSpeed:   3,
		Pressure:    1012,
		Description: "ясно",
	}
}

func captureUpsert(deps testDeps, err error) *domain.CitySnapshot {
	var stored domain.CitySnapshot
	deps.snapshots.On("Upsert", mock.Anything, mock.MatchedBy(func(s *domain.CitySnapshot) bool {
		stored = *s
		return true
	})).Return(err).Once()
	return &stored
}

func TestNewUseCase_RequiresDependencies(t *testing.T) {
	_, err := NewUseCase(UseCaseDependencies{})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestEvaluate_FirstObservationIsBaseline(t *testing.T) {
	uc, deps := newTestUseCase(t)
	fresh := baseSnapshot()

	deps.source.On("Fetch", mock.Anything, "kyiv", "ru").Return(&fresh, nil)
	deps.snapshots.On("Get", mock.Anything, "kyiv").Return(nil, errors.NewNotFoundError("snapshot not found"))
	stored := captureUpsert(deps, nil)

	outcome, record, err := uc.Evaluate(context.Background(), "  Kyiv ")

	require.NoError(t, err)
	assert.Equal(t, OutcomeBaseline, outcome)
	assert.Nil(t, record)
	assert.Equal(t, "kyiv", stored.City)
	assert.Equal(t, fresh, stored.Current)
	assert.Equal(t, fresh, stored.Last)
	assert.Equal(t, fixedNow, stored.LastChecked)
	assert.Equal(t, 1, deps.heartbeat.Count())
}

func TestEvaluate_SubThresholdKeepsBaseline(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *domain.Snapshot)
	}{
		{"TemperatureBelowThree", func(s *domain.Snapshot) { s.Temperature += 2.9 }},
		{"HumidityBelowTen", func(s *domain.Snapshot) { s.Humidity -= 9.5 }},
		{"WindExactlyTwo", func(s *domain.Snapshot) { s.WindSpeed += 2 }},
		{"NonSevereDescription", func(s *domain.Snapshot) { s.Description = "облачно" }},
		{"PressureOnly", func(s *domain.Snapshot) { s.Pressure += 15 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, deps := newTestUseCase(t)
			baseline := baseSnapshot()
			fresh := baseSnapshot()
			tt.mutate(&fresh)

			deps.source.On("Fetch", mock.Anything, "kyiv", "ru").Return(&fresh, nil)
			deps.snapshots.On("Get", mock.Anything, "kyiv").Return(&domain.CitySnapshot{
				City: "kyiv", Current: baseline, Last: baseline,
			}, nil)
			stored := captureUpsert(deps, nil)

			outcome, record, err := uc.Evaluate(context.Background(), "kyiv")

			require.NoError(t, err)
			assert.Equal(t, OutcomeUpdated, outcome)
			assert.Nil(t, record)
			assert.Equal(t, fresh, stored.Current)
			assert.Equal(t, baseline, stored.Last)
		})
	}
}

func TestEvaluate_CreepingChangesComparedToLastSignificantBaseline(t *testing.T) {
	uc, deps := newTestUseCase(t)
	baseline := baseSnapshot()
	previous := baseSnapshot()
	previous.Temperature = 12
	fresh := baseSnapshot()
	fresh.Temperature = 13.5

	deps.source.On("Fetch", mock.Anything, "kyiv", "ru").Return(&fresh, nil)
	deps.snapshots.On("Get", mock.Anything, "kyiv").Return(&domain.CitySnapshot{
		City: "kyiv", Current: previous, Last: baseline,
	}, nil)
	stored := captureUpsert(deps, nil)

	outcome, record, err := uc.Evaluate(context.Background(), "kyiv")

	require.NoError(t, err)
	assert.Equal(t, OutcomeChanged, outcome)
	require.NotNil(t, record)
	assert.Equal(t, fresh, stored.Last)
}

func TestEvaluate_TemperatureJumpRecordsOnlyTemperature(t *testing.T) {
	uc, deps := newTestUseCase(t)
	baseline := baseSnapshot()
	fresh := baseSnapshot()
	fresh.Temperature = 15

	deps.source.On("Fetch", mock.Anything, "kyiv", "ru").Return(&fresh, nil)
	deps.snapshots.On("Get", mock.Anything, "kyiv").Return(&domain.CitySnapshot{
		City: "kyiv", Current: baseline, Last: baseline,
	}, nil)
	stored := captureUpsert(deps, nil)

	outcome, record, err := uc.Evaluate(context.Background(), "kyiv")

	require.NoError(t, err)
	assert.Equal(t, OutcomeChanged, outcome)
	require.NotNil(t, record)
	require.Len(t, record.Changes, 1)
	assert.Equal(t, domain.MetricTemperature, record.Changes[0].Metric)
	assert.Equal(t, 10.0, record.Changes[0].Old)
	assert.Equal(t, 15.0, record.Changes[0].New)
	assert.Equal(t, fresh, stored.Last)
	assert.Equal(t, fresh, stored.Current)
}

func TestEvaluate_SevereDescriptionIsSignificant(t *testing.T) {
	uc, deps := newTestUseCase(t)
	baseline := baseSnapshot()
	fresh := baseSnapshot()
	fresh.Description = "Гроза с дождём"

	deps.source.On("Fetch", mock.Anything, "kyiv", "ru").Return(&fresh, nil)
	deps.snapshots.On("Get", mock.Anything, "kyiv").Return(&domain.CitySnapshot{
		City: "kyiv", Current: baseline, Last: baseline,
	}, nil)
	captureUpsert(deps, nil)

	outcome, record, err := uc.Evaluate(context.Background(), "kyiv")

	require.NoError(t, err)
	assert.Equal(t, OutcomeChanged, outcome)
	require.NotNil(t, record)
	change, ok := record.Change(domain.MetricDescription)
	require.True(t, ok)
	assert.Equal(t, "Гроза с дождём", change.NewText)
}

func TestEvaluate_FetchFailureLeavesStoreUntouched(t *testing.T) {
	uc, deps := newTestUseCase(t)

	deps.source.On("Fetch", mock.Anything, "kyiv", "ru").
		Return(nil, errors.NewUnavailableError("weather source unavailable", fmt.Errorf("timeout")))

	outcome, record, err := uc.Evaluate(context.Background(), "kyiv")

	require.Error(t, err)
	assert.True(t, errors.IsUnavailableError(err))
	assert.Equal(t, OutcomeFetchFailed, outcome)
	assert.Nil(t, record)
	assert.Equal(t, 1, deps.heartbeat.Count(), "failed attempts still beat")
	assert.Equal(t, 1, deps.metrics.Fetches[false])
	deps.snapshots.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	deps.snapshots.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEvaluate_PersistFailure(t *testing.T) {
	uc, deps := newTestUseCase(t)
	fresh := baseSnapshot()

	deps.source.On("Fetch", mock.Anything, "kyiv", "ru").Return(&fresh, nil)
	deps.snapshots.On("Get", mock.Anything, "kyiv").Return(nil, errors.NewNotFoundError("snapshot not found"))
	captureUpsert(deps, errors.NewDatabaseError("insert failed", fmt.Errorf("disk full")))

	outcome, _, err := uc.Evaluate(context.Background(), "kyiv")

	require.Error(t, err)
	assert.True(t, errors.IsDatabaseError(err))
	assert.Equal(t, OutcomePersistFailed, outcome)
}

func TestEvaluate_UnknownPrecipitationKeepsPreviousValue(t *testing.T) {
	tests := []struct {
		name            string
		stored          *domain.CitySnapshot
		expectedValue   float64
		expectedChanges []domain.Metric
	}{
		{"CarriedFromCurrent", &domain.CitySnapshot{City: "kyiv"}, 60, []domain.Metric{domain.MetricTemperature}},
		{"BaselineStaysZero", nil, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, deps := newTestUseCase(t)
			fresh := baseSnapshot()
			fresh.Temperature = 15
			fresh.PrecipitationUnknown = true

			if tt.stored != nil {
				previous := baseSnapshot()
				previous.Precipitation = 60
				tt.stored.Current, tt.stored.Last = previous, previous
				deps.snapshots.On("Get", mock.Anything, "kyiv").Return(tt.stored, nil)
			} else {
				deps.snapshots.On("Get", mock.Anything, "kyiv").Return(nil, errors.NewNotFoundError("snapshot not found"))
			}
			deps.source.On("Fetch", mock.Anything, "kyiv", "ru").Return(&fresh, nil)
			stored := captureUpsert(deps, nil)

			_, record, err := uc.Evaluate(context.Background(), "kyiv")

			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, stored.Current.Precipitation)
			assert.False(t, stored.Current.PrecipitationUnknown)
			var changed []domain.Metric
			if record != nil {
				for _, change := range record.Changes {
					changed = append(changed, change.Metric)
				}
			}
			assert.Equal(t, tt.expectedChanges, changed)
		})
	}
}

func TestRefreshCities_RetriesTransientFailures(t *testing.T) {
	uc, deps := newTestUseCase(t)
	baseline := baseSnapshot()
	fresh := baseSnapshot()
	fresh.Temperature = 20
	unavailable := errors.NewUnavailableError("weather source unavailable", nil)

	deps.source.On("Fetch", mock.Anything, "oslo", "ru").Return(nil, unavailable).Twice()
	deps.source.On("Fetch", mock.Anything, "oslo", "ru").Return(&fresh, nil).Once()
	deps.source.On("Fetch", mock.Anything, "rome", "ru").Return(nil, unavailable).Times(3)
	deps.source.On("Fetch", mock.Anything, "atlantis", "ru").Return(nil, errors.NewNotFoundError("city not found")).Once()
	deps.snapshots.On("Get", mock.Anything, "oslo").Return(&domain.CitySnapshot{
		City: "oslo", Current: baseline, Last: baseline,
	}, nil)
	captureUpsert(deps, nil)

	changes, failed := uc.RefreshCities(context.Background(), []string{"Oslo", "rome", "oslo", "Atlantis"})

	require.Len(t, changes, 1)
	assert.Contains(t, changes, "oslo")
	assert.ElementsMatch(t, []string{"rome", "atlantis"}, failed)
	assert.True(t, deps.logger.Has("error", "Skipping city until next cycle"))
}

func TestRefreshCities_StopsOnCancelledContext(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	changes, failed := uc.RefreshCities(ctx, []string{"oslo", "rome"})

	assert.Empty(t, changes)
	assert.ElementsMatch(t, []string{"oslo", "rome"}, failed)
}

func TestGetForecast_CacheAside(t *testing.T) {
	forecast := &domain.Forecast{City: "kyiv", TempMin: 5, TempMax: 14, Description: "дождь"}

	t.Run("Miss", func(t *testing.T) {
		uc, deps := newTestUseCase(t)
		deps.cache.On("Get", mock.Anything, "weather:forecast:kyiv:en").Return(nil, errors.NewNotFoundError("cache miss"))
		deps.source.On("Forecast", mock.Anything, "kyiv", "en").Return(forecast, nil)
		deps.cache.On("Set", mock.Anything, "weather:forecast:kyiv:en", forecast, 30*time.Minute).Return(nil)

		got, err := uc.GetForecast(context.Background(), "Kyiv", "en")

		require.NoError(t, err)
		assert.Equal(t, forecast, got)
		assert.Equal(t, 1, deps.metrics.CacheMisses)
	})

	t.Run("Hit", func(t *testing.T) {
		uc, deps := newTestUseCase(t)
		deps.cache.On("Get", mock.Anything, "weather:forecast:kyiv:ru").Return(forecast, nil)

		got, err := uc.GetForecast(context.Background(), "kyiv", "")

		require.NoError(t, err)
		assert.Equal(t, forecast, got)
		assert.Equal(t, 1, deps.metrics.CacheHits)
		deps.source.AssertNotCalled(t, "Forecast", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SourceFailure", func(t *testing.T) {
		uc, deps := newTestUseCase(t)
		deps.cache.On("Get", mock.Anything, "weather:forecast:kyiv:ru").Return(nil, errors.NewNotFoundError("cache miss"))
		deps.source.On("Forecast", mock.Anything, "kyiv", "ru").Return(nil, errors.NewUnavailableError("down", nil))

		_, err := uc.GetForecast(context.Background(), "kyiv", "ru")

		require.Error(t, err)
		assert.True(t, errors.IsUnavailableError(err))
	})
}

func TestSevereDescriptions(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
		expected bool
	}{
		{"RussianThunderstormWithYo", "ясно", "Гроза с дождём", true},
		{"RussianThunderstormWithoutYo", "ясно", "гроза с дождем", true},
		{"EnglishSnow", "clear sky", "Heavy Snow", true},
		{"UkrainianSnow", "ясно", "сніг", true},
		{"AlreadySevere", "гроза", "Гроза", false},
		{"SevereToOtherSevere", "снег", "небольшой снег", false},
		{"EnglishSevereToSevere", "thunderstorm", "light snow", false},
		{"SevereToCalm", "гроза", "ясно", false},
		{"NotSevere", "ясно", "дождь", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BecameSevere(tt.previous, tt.current))
		})
	}
}
