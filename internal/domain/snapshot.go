package domain

import (
	"strings"
	"time"
)

// Snapshot is one fetched set of metrics in canonical units: °C, %, m/s,
// degrees, hPa and metres.
type Snapshot struct {
	Temperature   float64   `json:"temperature" validate:"gte=-100,lte=70"`
	FeelsLike     float64   `json:"feels_like" validate:"gte=-120,lte=90"`
	Humidity      float64   `json:"humidity" validate:"gte=0,lte=100"`
	WindSpeed     float64   `json:"wind_speed" validate:"gte=0"`
	WindDirection float64   `json:"wind_direction" validate:"gte=0,lte=360"`
	WindGust      float64   `json:"wind_gust" validate:"gte=0"`
	Pressure      float64   `json:"pressure" validate:"gte=0"`
	Visibility    float64   `json:"visibility" validate:"gte=0"`
	Clouds        float64   `json:"clouds" validate:"gte=0,lte=100"`
	Precipitation float64   `json:"precipitation" validate:"gte=0,lte=100"`
	Description   string    `json:"description"`
	ObservedAt    time.Time `json:"observed_at"`

	// PrecipitationUnknown is set by a source that could not determine
	// Precipitation. It is resolved before the snapshot is stored.
	PrecipitationUnknown bool `json:"-"`
}

// ResolveUnknown replaces values the source could not determine with the
// ones from prev. With no prev the zero values stay.
func (s *Snapshot) ResolveUnknown(prev *Snapshot) {
	if s.PrecipitationUnknown && prev != nil {
		s.Precipitation = prev.Precipitation
	}
	s.PrecipitationUnknown = false
}

// Value returns the numeric value of m. Description yields zero.
func (s Snapshot) Value(m Metric) float64 {
	switch m {
	case MetricTemperature:
		return s.Temperature
	case MetricFeelsLike:
		return s.FeelsLike
	case MetricHumidity:
		return s.Humidity
	case MetricWindSpeed:
		return s.WindSpeed
	case MetricWindDirection:
		return s.WindDirection
	case MetricWindGust:
		return s.WindGust
	case MetricPressure:
		return s.Pressure
	case MetricVisibility:
		return s.Visibility
	case MetricClouds:
		return s.Clouds
	case MetricPrecipitation:
		return s.Precipitation
	default:
		return 0
	}
}

// MetricChange is one before/after entry of a diff.
type MetricChange struct {
	Metric  Metric
	Old     float64
	New     float64
	OldText string
	NewText string
}

// Diff lists every metric of s that differs from previous, in display order.
func (s Snapshot) Diff(previous Snapshot) []MetricChange {
	var changes []MetricChange
	for _, m := range AllMetrics {
		if m == MetricDescription {
			if s.Description != previous.Description {
				changes = append(changes, MetricChange{
					Metric:  m,
					OldText: previous.Description,
					NewText: s.Description,
				})
			}
			continue
		}
		oldValue, newValue := previous.Value(m), s.Value(m)
		if oldValue != newValue {
			changes = append(changes, MetricChange{Metric: m, Old: oldValue, New: newValue})
		}
	}
	return changes
}

// NormalizeCity is the key under which a city is stored
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// CitySnapshot is the stored state of one city. Last is the comparison
// baseline and only moves on a significant change.
type CitySnapshot struct {
	City               string
	Current            Snapshot
	Last               Snapshot
	LastChecked        time.Time
	PreviousNotifyTime time.Time
}

// InCooldown reports whether a notification for the city went out less than
// window ago.
func (c *CitySnapshot) InCooldown(now time.Time, window time.Duration) bool {
	if c.PreviousNotifyTime.IsZero() {
		return false
	}
	return now.Sub(c.PreviousNotifyTime) < window
}

// Forecast is the daily aggregate for one city in canonical units.
type Forecast struct {
	City          string
	Date          time.Time
	TempMin       float64
	TempMax       float64
	FeelsLike     float64
	Humidity      float64
	WindSpeed     float64
	WindDirection float64
	WindGust      float64
	Pressure      float64
	Visibility    float64
	Clouds        float64
	Precipitation float64
	Description   string
}

// Value returns the aggregated value of m. Temperature reports the maximum.
func (f Forecast) Value(m Metric) (float64, bool) {
	switch m {
	case MetricTemperature:
		return f.TempMax, true
	case MetricFeelsLike:
		return f.FeelsLike, true
	case MetricHumidity:
		return f.Humidity, true
	case MetricWindSpeed:
		return f.WindSpeed, true
	case MetricWindDirection:
		return f.WindDirection, true
	case MetricWindGust:
		return f.WindGust, true
	case MetricPressure:
		return f.Pressure, true
	case MetricVisibility:
		return f.Visibility, true
	case MetricClouds:
		return f.Clouds, true
	case MetricPrecipitation:
		return f.Precipitation, true
	default:
		return 0, false
	}
}
