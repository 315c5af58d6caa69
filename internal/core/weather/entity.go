package weather

import (
	"math"
	"strings"

	"weatherbot.app/internal/domain"
)

// Outcome is the result of evaluating one city
type Outcome int

const (
	OutcomeFetchFailed Outcome = iota
	OutcomePersistFailed
	OutcomeBaseline
	OutcomeUpdated
	OutcomeChanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomePersistFailed:
		return "persist_failed"
	case OutcomeBaseline:
		return "baseline"
	case OutcomeUpdated:
		return "updated"
	case OutcomeChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Thresholds decide whether a fresh snapshot differs enough from the
// baseline. Values are in canonical units.
type Thresholds struct {
	Temperature float64
	Humidity    float64
	WindSpeed   float64
}

// DefaultThresholds: 3 °C, 10 percentage points, more than 2 m/s
func DefaultThresholds() Thresholds {
	return Thresholds{Temperature: 3, Humidity: 10, WindSpeed: 2}
}

// IsSignificant compares fresh against the baseline
func (t Thresholds) IsSignificant(baseline, fresh domain.Snapshot) bool {
	if math.Abs(fresh.Temperature-baseline.Temperature) >= t.Temperature {
		return true
	}
	if math.Abs(fresh.Humidity-baseline.Humidity) >= t.Humidity {
		return true
	}
	if math.Abs(fresh.WindSpeed-baseline.WindSpeed) > t.WindSpeed {
		return true
	}
	return BecameSevere(baseline.Description, fresh.Description)
}

var severeDescriptions = newDescriptionSet(
	// ru
	"гроза",
	"гроза с дождём",
	"гроза с мелким дождём",
	"гроза с сильным дождём",
	"гроза с моросью",
	"сильная гроза",
	"рваная гроза",
	"снег",
	"небольшой снег",
	"сильный снег",
	"снегопад",
	"мокрый снег",
	"ливневый снег",
	"небольшой ливневый снег",
	"сильный ливневый снег",
	"дождь со снегом",
	"небольшой дождь со снегом",
	// uk
	"гроза з дощем",
	"гроза з сильним дощем",
	"сніг",
	"невеликий сніг",
	"сильний сніг",
	"мокрий сніг",
	"дощ зі снігом",
	// en
	"thunderstorm",
	"light thunderstorm",
	"heavy thunderstorm",
	"ragged thunderstorm",
	"thunderstorm with rain",
	"thunderstorm with light rain",
	"thunderstorm with heavy rain",
	"thunderstorm with drizzle",
	"snow",
	"light snow",
	"heavy snow",
	"sleet",
	"light shower sleet",
	"shower sleet",
	"rain and snow",
	"light rain and snow",
	"shower snow",
	"heavy shower snow",
)

type descriptionSet map[string]struct{}

func newDescriptionSet(values ...string) descriptionSet {
	set := make(descriptionSet, len(values))
	for _, v := range values {
		set[NormalizeDescription(v)] = struct{}{}
	}
	return set
}

// NormalizeDescription folds case, surrounding space and ё
func NormalizeDescription(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "ё", "е")
}

// IsSevere reports whether the description belongs to the severe set
func IsSevere(description string) bool {
	_, ok := severeDescriptions[NormalizeDescription(description)]
	return ok
}

// BecameSevere is true when the description enters the severe set from
// outside it. Moving between two severe descriptions does not count.
func BecameSevere(previous, current string) bool {
	return IsSevere(current) && !IsSevere(previous)
}
