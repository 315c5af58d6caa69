package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/i18n"
)

func newTestComposer(t *testing.T) *Composer {
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)
	return NewComposer(catalog)
}

func russianUser(tracked ...domain.Metric) *domain.User {
	return &domain.User{
		ID:       100,
		City:     "Москва",
		Tracked:  domain.NewMetricSet(tracked...),
		Units:    domain.DefaultUnits(),
		Language: "ru",
		Timezone: "Europe/Moscow",
	}
}

func temperatureRecord(oldTemp, newTemp float64) *domain.ChangeRecord {
	previous := domain.Snapshot{Temperature: oldTemp, Humidity: 60, Description: "ясно"}
	current := domain.Snapshot{Temperature: newTemp, Humidity: 60, Description: "ясно"}
	return &domain.ChangeRecord{
		City:     "москва",
		Snapshot: current,
		Previous: previous,
		Changes:  current.Diff(previous),
	}
}

func TestRenderChange_Template(t *testing.T) {
	composer := newTestComposer(t)
	user := russianUser(domain.MetricTemperature, domain.MetricHumidity)

	text, ok := composer.RenderChange(user, temperatureRecord(10, 15))

	require.True(t, ok)
	expected := "<b>Погода в городе Москва изменилась</b>\n\n" +
		"Сейчас: ясно\n\n" +
		"Температура: 15 °C ↑ (было 10 °C)\n" +
		"Влажность: 60% →"
	assert.Equal(t, expected, text)
}

func TestRenderChange_NoTrackedMetrics(t *testing.T) {
	composer := newTestComposer(t)

	text, ok := composer.RenderChange(russianUser(), temperatureRecord(10, 15))

	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestRenderChange_IsIdempotent(t *testing.T) {
	composer := newTestComposer(t)
	user := russianUser(domain.AllMetrics...)
	record := temperatureRecord(-3.4, 4.2)

	first, ok := composer.RenderChange(user, record)
	require.True(t, ok)
	second, _ := composer.RenderChange(user, record)

	assert.Equal(t, first, second)
}

func TestRenderChange_IndicatorUsesRoundedValues(t *testing.T) {
	tests := []struct {
		name     string
		oldTemp  float64
		newTemp  float64
		units    domain.Units
		expected string
	}{
		{
			name:     "SameAfterRounding",
			oldTemp:  10.2,
			newTemp:  10.4,
			units:    domain.DefaultUnits(),
			expected: "Температура: 10 °C →",
		},
		{
			name:     "Down",
			oldTemp:  20,
			newTemp:  16.6,
			units:    domain.DefaultUnits(),
			expected: "Температура: 17 °C ↓ (было 20 °C)",
		},
		{
			name:     "NegativeZero",
			oldTemp:  -0.4,
			newTemp:  -0.3,
			units:    domain.DefaultUnits(),
			expected: "Температура: 0 °C →",
		},
		{
			name:     "Fahrenheit",
			oldTemp:  0,
			newTemp:  100,
			units:    domain.Units{Temperature: domain.Fahrenheit, Pressure: domain.HectoPascal, WindSpeed: domain.MetresPerSecond},
			expected: "Температура: 212 °F ↑ (было 32 °F)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := newTestComposer(t)
			user := russianUser(domain.MetricTemperature)
			user.Units = tt.units

			text, ok := composer.RenderChange(user, temperatureRecord(tt.oldTemp, tt.newTemp))

			require.True(t, ok)
			assert.True(t, strings.HasSuffix(text, "\n\n"+tt.expected), text)
		})
	}
}

func TestRenderChange_UnitFormatting(t *testing.T) {
	composer := newTestComposer(t)
	user := russianUser(domain.MetricPressure, domain.MetricWindSpeed, domain.MetricVisibility, domain.MetricWindDirection)
	user.Language = "en"
	user.Units = domain.Units{Temperature: domain.Celsius, Pressure: domain.InchHg, WindSpeed: domain.KilometresPerHour}

	previous := domain.Snapshot{Pressure: 1013.25, WindSpeed: 5, Visibility: 10000, WindDirection: 0}
	current := domain.Snapshot{Pressure: 1013.25, WindSpeed: 10, Visibility: 8500, WindDirection: 225}
	record := &domain.ChangeRecord{City: "москва", Snapshot: current, Previous: previous}

	text, ok := composer.RenderChange(user, record)

	require.True(t, ok)
	assert.Contains(t, text, "Wind: 36.0 km/h ↑ (was 18.0 km/h)")
	assert.Contains(t, text, "Wind direction: SW → (was N)")
	assert.Contains(t, text, "Pressure: 29.92 inHg →")
	assert.Contains(t, text, "Visibility: 8.5 km ↓ (was 10.0 km)")
}

func TestRenderChange_EscapesHTML(t *testing.T) {
	composer := newTestComposer(t)
	user := russianUser(domain.MetricDescription)

	previous := domain.Snapshot{Description: "ясно"}
	current := domain.Snapshot{Description: "<script>"}
	record := &domain.ChangeRecord{City: "москва", Snapshot: current, Previous: previous}

	text, ok := composer.RenderChange(user, record)

	require.True(t, ok)
	assert.NotContains(t, text, "<script>")
	assert.Contains(t, text, "&lt;script&gt;")
}

func TestRenderForecast(t *testing.T) {
	date := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	user := &domain.User{
		ID:       7,
		City:     "Oslo",
		Tracked:  domain.NewMetricSet(domain.MetricTemperature, domain.MetricWindSpeed, domain.MetricPrecipitation),
		Units:    domain.Units{Temperature: domain.Fahrenheit, Pressure: domain.HectoPascal, WindSpeed: domain.KilometresPerHour},
		Language: "en",
		Timezone: "UTC",
	}

	t.Run("NotableByPrecipitation", func(t *testing.T) {
		composer := newTestComposer(t)
		forecast := &domain.Forecast{
			City: "oslo", Date: date, TempMin: 5, TempMax: 15,
			WindSpeed: 4, WindGust: 6, Precipitation: 70, Description: "light rain",
		}

		text, ok := composer.RenderForecast(user, forecast)

		require.True(t, ok)
		expected := "<b>Forecast for Oslo, 10.05.2024</b>\n\n" +
			"Heads up today:\n" +
			"• Chance of precipitation is 70%.\n\n" +
			"Temperature: 41…59 °F\n" +
			"Wind: 14.4 km/h\n" +
			"Precipitation chance: 70%"
		assert.Equal(t, expected, text)
	})

	t.Run("CalmDay", func(t *testing.T) {
		composer := newTestComposer(t)
		forecast := &domain.Forecast{
			City: "oslo", Date: date, TempMin: 5, TempMax: 15,
			WindSpeed: 4, WindGust: 6, Precipitation: 10, Description: "light rain",
		}

		text, ok := composer.RenderForecast(user, forecast)

		require.True(t, ok)
		assert.Contains(t, text, "\n\nToday: Light rain\n\n")
		assert.NotContains(t, text, "Heads up")
	})

	t.Run("NoTrackedMetrics", func(t *testing.T) {
		composer := newTestComposer(t)
		silent := *user
		silent.Tracked = 0

		_, ok := composer.RenderForecast(&silent, &domain.Forecast{City: "oslo"})
		assert.False(t, ok)
	})
}

func TestRenderForecast_NotableReasonsAreLocalized(t *testing.T) {
	composer := newTestComposer(t)
	user := russianUser(domain.MetricDescription)
	forecast := &domain.Forecast{
		City: "москва", Date: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		WindSpeed: 10, WindGust: 12.5, Description: "Гроза",
	}

	text, ok := composer.RenderForecast(user, forecast)

	require.True(t, ok)
	assert.Contains(t, text, "Сегодня будьте внимательны:\n")
	assert.Contains(t, text, "• Ожидается гроза.\n")
	assert.Contains(t, text, "• Порывы ветра до 12.5 м/с.\n")
	assert.Contains(t, text, "• Сильный ветер до 10.0 м/с.")
	assert.Contains(t, text, "Погода: Гроза")
}
