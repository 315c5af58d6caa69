package testmode

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

var (
	_ ports.WeatherSource  = (*RandomWeatherSource)(nil)
	_ ports.UserRepository = (*SyntheticUsers)(nil)
	_ ports.Messenger      = (*LogMessenger)(nil)
)

var fixedNow = func() time.Time { return time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC) }

func TestRandomWeatherSource_ProducesPlausibleSnapshots(t *testing.T) {
	source := NewRandomWeatherSource(42, fixedNow)
	validate := validator.New()
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		snapshot, err := source.Fetch(ctx, "Москва", "ru")
		require.NoError(t, err)
		require.NoError(t, validate.Struct(snapshot), "fetch %d", i)
		assert.Equal(t, fixedNow(), snapshot.ObservedAt)
		assert.NotEmpty(t, snapshot.Description)
	}
}

func TestRandomWeatherSource_DeterministicPerSeed(t *testing.T) {
	ctx := context.Background()
	a := NewRandomWeatherSource(7, fixedNow)
	b := NewRandomWeatherSource(7, fixedNow)

	for i := 0; i < 5; i++ {
		sa, err := a.Fetch(ctx, "oslo", "en")
		require.NoError(t, err)
		sb, err := b.Fetch(ctx, "OSLO", "en")
		require.NoError(t, err)
		assert.Equal(t, *sa, *sb)
	}
}

func TestRandomWeatherSource_Walks(t *testing.T) {
	ctx := context.Background()
	source := NewRandomWeatherSource(1, fixedNow)

	first, err := source.Fetch(ctx, "oslo", "en")
	require.NoError(t, err)

	changed := false
	for i := 0; i < 10 && !changed; i++ {
		next, err := source.Fetch(ctx, "oslo", "en")
		require.NoError(t, err)
		assert.InDelta(t, first.Temperature, next.Temperature, 2.5*float64(i+1)+0.1)
		changed = next.Temperature != first.Temperature
	}
	assert.True(t, changed)
}

func TestRandomWeatherSource_Forecast(t *testing.T) {
	source := NewRandomWeatherSource(3, fixedNow)

	forecast, err := source.Forecast(context.Background(), " Москва", "ru")

	require.NoError(t, err)
	assert.Equal(t, "москва", forecast.City)
	assert.LessOrEqual(t, forecast.TempMin, forecast.TempMax)
	assert.Equal(t, 12, forecast.Date.Hour())

	_, err = source.Forecast(context.Background(), "", "ru")
	assert.True(t, errors.IsValidationError(err))
}

func TestSyntheticUsers(t *testing.T) {
	ctx := context.Background()
	users := NewSyntheticUsers(42, "Москва", "Europe/Moscow", "ru")

	cities, err := users.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"москва"}, cities)

	subscribers, err := users.ListThresholdSubscribers(ctx, "МОСКВА")
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, domain.FullMetricSet(), subscribers[0].Tracked)

	subscribers, err = users.ListThresholdSubscribers(ctx, "oslo")
	require.NoError(t, err)
	assert.Empty(t, subscribers)

	forecast, err := users.ListForecastSubscribers(ctx)
	require.NoError(t, err)
	assert.Len(t, forecast, 1)

	state := domain.MessageState{WeatherID: 9, LastDigestAt: fixedNow()}
	require.NoError(t, users.UpdateMessages(ctx, 42, state))
	forecast, err = users.ListForecastSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, forecast, 1)
	assert.Equal(t, state, forecast[0].Messages)

	forecast[0].City = "Oslo"
	subscribers, err = users.ListThresholdSubscribers(ctx, "oslo")
	require.NoError(t, err)
	assert.Empty(t, subscribers, "callers get copies")

	assert.True(t, errors.IsNotFoundError(users.UpdateMessages(ctx, 1, state)))
}

func TestLogMessenger(t *testing.T) {
	ctx := context.Background()
	logger := mocks.NewLogger()
	messenger := NewLogMessenger(logger)

	id, err := messenger.Send(ctx, 42, "first")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	require.NoError(t, messenger.Edit(ctx, 42, id, "second"))
	text, ok := messenger.Text(id)
	assert.True(t, ok)
	assert.Equal(t, "second", text)

	require.NoError(t, messenger.Pin(ctx, 42, id))
	assert.Equal(t, id, messenger.Pinned())

	require.NoError(t, messenger.Delete(ctx, 42, id))
	_, ok = messenger.Text(id)
	assert.False(t, ok)

	assert.True(t, errors.IsDispatchError(messenger.Edit(ctx, 42, id, "third")))
	assert.True(t, errors.IsDispatchError(messenger.Delete(ctx, 42, 99)))
	assert.True(t, logger.Has("info", "Message sent"))
	assert.True(t, logger.Has("info", "Message deleted"))
}
