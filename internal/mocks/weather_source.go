package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"weatherbot.app/internal/domain"
)

// WeatherSource is a testify mock of ports.WeatherSource
type WeatherSource struct {
	mock.Mock
}

// NewWeatherSource creates a WeatherSource mock and asserts its expectations on cleanup
func NewWeatherSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *WeatherSource {
	m := &WeatherSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WeatherSource) Fetch(ctx context.Context, city, lang string) (*domain.Snapshot, error) {
	args := m.Called(ctx, city, lang)
	snapshot, _ := args.Get(0).(*domain.Snapshot)
	return snapshot, args.Error(1)
}

func (m *WeatherSource) Forecast(ctx context.Context, city, lang string) (*domain.Forecast, error) {
	args := m.Called(ctx, city, lang)
	forecast, _ := args.Get(0).(*domain.Forecast)
	return forecast, args.Error(1)
}

func (m *WeatherSource) Name() string {
	return "mock"
}

// ForecastCache is a testify mock of ports.ForecastCache
type ForecastCache struct {
	mock.Mock
}

// NewForecastCache creates a ForecastCache mock and asserts its expectations on cleanup
func NewForecastCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *ForecastCache {
	m := &ForecastCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ForecastCache) Get(ctx context.Context, key string) (*domain.Forecast, error) {
	args := m.Called(ctx, key)
	forecast, _ := args.Get(0).(*domain.Forecast)
	return forecast, args.Error(1)
}

func (m *ForecastCache) Set(ctx context.Context, key string, forecast *domain.Forecast, ttl time.Duration) error {
	args := m.Called(ctx, key, forecast, ttl)
	return args.Error(0)
}
