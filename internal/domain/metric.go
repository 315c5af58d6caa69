package domain

import (
	"strings"
)

// Metric identifies one weather parameter a user can track.
type Metric int

const (
	MetricUnknown Metric = iota
	MetricTemperature
	MetricFeelsLike
	MetricHumidity
	MetricWindSpeed
	MetricWindDirection
	MetricWindGust
	MetricPressure
	MetricVisibility
	MetricClouds
	MetricPrecipitation
	MetricDescription
)

// AllMetrics lists every metric in display order.
var AllMetrics = []Metric{
	MetricTemperature,
	MetricFeelsLike,
	MetricHumidity,
	MetricWindSpeed,
	MetricWindDirection,
	MetricWindGust,
	MetricPressure,
	MetricVisibility,
	MetricClouds,
	MetricPrecipitation,
	MetricDescription,
}

var metricNames = map[Metric]string{
	MetricTemperature:   "temperature",
	MetricFeelsLike:     "feels_like",
	MetricHumidity:      "humidity",
	MetricWindSpeed:     "wind_speed",
	MetricWindDirection: "wind_direction",
	MetricWindGust:      "wind_gust",
	MetricPressure:      "pressure",
	MetricVisibility:    "visibility",
	MetricClouds:        "clouds",
	MetricPrecipitation: "precipitation",
	MetricDescription:   "description",
}

// String returns the stable storage name of the metric
func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return "unknown"
}

// IsNumeric reports whether the metric carries a numeric value
func (m Metric) IsNumeric() bool {
	return m != MetricDescription && m != MetricUnknown
}

// ParseMetric maps a stored name back to its metric
func ParseMetric(name string) (Metric, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, n := range metricNames {
		if n == name {
			return m, true
		}
	}
	return MetricUnknown, false
}

// MetricSet is a set of metrics backed by a bit mask.
type MetricSet uint32

// NewMetricSet builds a set from the given metrics
func NewMetricSet(metrics ...Metric) MetricSet {
	var s MetricSet
	for _, m := range metrics {
		s = s.With(m)
	}
	return s
}

// FullMetricSet contains every known metric
func FullMetricSet() MetricSet {
	return NewMetricSet(AllMetrics...)
}

func (s MetricSet) With(m Metric) MetricSet {
	if m == MetricUnknown {
		return s
	}
	return s | 1<<uint(m)
}

func (s MetricSet) Has(m Metric) bool {
	return m != MetricUnknown && s&(1<<uint(m)) != 0
}

func (s MetricSet) IsEmpty() bool {
	return s == 0
}

// Metrics returns the members in display order
func (s MetricSet) Metrics() []Metric {
	out := make([]Metric, 0, len(AllMetrics))
	for _, m := range AllMetrics {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// Encode renders the set as a comma-separated list of metric names
func (s MetricSet) Encode() string {
	metrics := s.Metrics()
	names := make([]string, len(metrics))
	for i, m := range metrics {
		names[i] = m.String()
	}
	return strings.Join(names, ",")
}

// ParseMetricSet decodes a comma-separated list. Unknown names are returned
// separately so the caller can report them.
func ParseMetricSet(csv string) (MetricSet, []string) {
	var (
		set     MetricSet
		unknown []string
	)
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, ok := ParseMetric(part)
		if !ok {
			unknown = append(unknown, part)
			continue
		}
		set = set.With(m)
	}
	return set, unknown
}
