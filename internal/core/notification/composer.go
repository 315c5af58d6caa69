package notification

import (
	"html"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/i18n"
)

const (
	indicatorUp      = "↑"
	indicatorDown    = "↓"
	indicatorNeutral = "→"

	notablePrecipitation = 40.0
	notableGust          = 12.0
	notableWind          = 10.0
)

// Composer renders notification text. It holds no mutable state, so the same
// inputs always produce the same output.
type Composer struct {
	catalog *i18n.Catalog
}

func NewComposer(catalog *i18n.Catalog) *Composer {
	return &Composer{catalog: catalog}
}

// RenderChange renders a change notification. ok is false when the user
// tracks nothing, in which case nothing must be sent.
func (c *Composer) RenderChange(user *domain.User, record *domain.ChangeRecord) (string, bool) {
	if user == nil || record == nil || user.Tracked.IsEmpty() {
		return "", false
	}
	tr := c.catalog.For(user.Language)

	title := bold(tr.T("title.change", displayCity(user, record.City)))
	description := html.EscapeString(tr.T("description.current", record.Snapshot.Description))

	lines := make([]string, 0, len(domain.AllMetrics))
	for _, m := range user.Tracked.Metrics() {
		lines = append(lines, changeLine(tr, user.Units, m, record.Previous, record.Snapshot))
	}

	return assemble(title, description, lines), true
}

// RenderForecast renders the daily digest. A notable day gets a summary of
// the reasons in place of the description line.
func (c *Composer) RenderForecast(user *domain.User, forecast *domain.Forecast) (string, bool) {
	if user == nil || forecast == nil || user.Tracked.IsEmpty() {
		return "", false
	}
	tr := c.catalog.For(user.Language)

	date := forecast.Date.In(user.Location()).Format("02.01.2006")
	title := bold(tr.T("title.forecast", displayCity(user, forecast.City), date))

	var middle string
	if reasons := notableReasons(tr, user.Units, forecast); len(reasons) > 0 {
		parts := make([]string, 0, len(reasons)+1)
		parts = append(parts, html.EscapeString(tr.T("summary.header")))
		for _, reason := range reasons {
			parts = append(parts, "• "+html.EscapeString(reason))
		}
		middle = strings.Join(parts, "\n")
	} else {
		middle = html.EscapeString(tr.T("description.day", upperFirst(forecast.Description)))
	}

	lines := make([]string, 0, len(domain.AllMetrics))
	for _, m := range user.Tracked.Metrics() {
		lines = append(lines, forecastLine(tr, user.Units, m, forecast))
	}

	return assemble(title, middle, lines), true
}

func notableReasons(tr *i18n.Translator, units domain.Units, f *domain.Forecast) []string {
	var reasons []string
	if f.Description != "" && tr.IsBadWeather(f.Description) {
		reasons = append(reasons, tr.T("summary.bad_weather", strings.ToLower(f.Description)))
	}
	if f.Precipitation >= notablePrecipitation {
		reasons = append(reasons, tr.T("summary.precipitation", formatNumber(f.Precipitation, 0)))
	}
	if f.WindGust >= notableGust {
		value, unit := windValue(tr, units, f.WindGust)
		reasons = append(reasons, tr.T("summary.gusts", value, unit))
	}
	if f.WindSpeed >= notableWind {
		value, unit := windValue(tr, units, f.WindSpeed)
		reasons = append(reasons, tr.T("summary.wind", value, unit))
	}
	return reasons
}

func assemble(title, middle string, lines []string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(middle)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func changeLine(tr *i18n.Translator, units domain.Units, m domain.Metric, previous, current domain.Snapshot) string {
	label := tr.T("label." + m.String())

	switch m {
	case domain.MetricDescription:
		line := label + ": " + current.Description
		if previous.Description != current.Description && previous.Description != "" {
			line += " (" + tr.T("format.was", previous.Description) + ")"
		}
		return html.EscapeString(line)
	case domain.MetricWindDirection:
		newDir, oldDir := compass(tr, current.WindDirection), compass(tr, previous.WindDirection)
		line := label + ": " + newDir + " " + indicatorNeutral
		if newDir != oldDir {
			line += " (" + tr.T("format.was", oldDir) + ")"
		}
		return html.EscapeString(line)
	}

	decimals, unit, convert := metricFormat(tr, units, m)
	oldValue := round(convert(previous.Value(m)), decimals)
	newValue := round(convert(current.Value(m)), decimals)

	line := label + ": " + withUnit(formatNumber(newValue, decimals), unit) + " " + indicator(oldValue, newValue)
	if oldValue != newValue {
		line += " (" + tr.T("format.was", withUnit(formatNumber(oldValue, decimals), unit)) + ")"
	}
	return html.EscapeString(line)
}

func forecastLine(tr *i18n.Translator, units domain.Units, m domain.Metric, f *domain.Forecast) string {
	label := tr.T("label." + m.String())

	switch m {
	case domain.MetricDescription:
		return html.EscapeString(label + ": " + f.Description)
	case domain.MetricWindDirection:
		return html.EscapeString(label + ": " + compass(tr, f.WindDirection))
	case domain.MetricTemperature:
		decimals, unit, convert := metricFormat(tr, units, m)
		span := tr.T("format.range",
			formatNumber(round(convert(f.TempMin), decimals), decimals),
			formatNumber(round(convert(f.TempMax), decimals), decimals))
		return html.EscapeString(label + ": " + withUnit(span, unit))
	}

	value, _ := f.Value(m)
	decimals, unit, convert := metricFormat(tr, units, m)
	return html.EscapeString(label + ": " + withUnit(formatNumber(round(convert(value), decimals), decimals), unit))
}

// metricFormat returns the display decimals, unit symbol and conversion from
// canonical units for a numeric metric.
func metricFormat(tr *i18n.Translator, units domain.Units, m domain.Metric) (int, string, func(float64) float64) {
	switch m {
	case domain.MetricTemperature, domain.MetricFeelsLike:
		return 0, temperatureSymbol(tr, units.Temperature), func(v float64) float64 {
			return domain.TemperatureFromCelsius(v, units.Temperature)
		}
	case domain.MetricWindSpeed, domain.MetricWindGust:
		return 1, windSymbol(tr, units.WindSpeed), func(v float64) float64 {
			return domain.WindSpeedFromMS(v, units.WindSpeed)
		}
	case domain.MetricPressure:
		return domain.PressureDecimals(units.Pressure), pressureSymbol(tr, units.Pressure), func(v float64) float64 {
			return domain.PressureFromHPa(v, units.Pressure)
		}
	case domain.MetricVisibility:
		return 1, tr.T("unit.km"), func(v float64) float64 { return v / 1000 }
	default:
		return 0, tr.T("unit.percent"), func(v float64) float64 { return v }
	}
}

func windValue(tr *i18n.Translator, units domain.Units, ms float64) (string, string) {
	return formatNumber(round(domain.WindSpeedFromMS(ms, units.WindSpeed), 1), 1), windSymbol(tr, units.WindSpeed)
}

func temperatureSymbol(tr *i18n.Translator, unit domain.TemperatureUnit) string {
	switch unit {
	case domain.Fahrenheit:
		return tr.T("unit.fahrenheit")
	case domain.Kelvin:
		return tr.T("unit.kelvin")
	default:
		return tr.T("unit.celsius")
	}
}

func pressureSymbol(tr *i18n.Translator, unit domain.PressureUnit) string {
	switch unit {
	case domain.MillimetreHg:
		return tr.T("unit.mmhg")
	case domain.Millibar:
		return tr.T("unit.mbar")
	case domain.InchHg:
		return tr.T("unit.inhg")
	default:
		return tr.T("unit.hpa")
	}
}

func windSymbol(tr *i18n.Translator, unit domain.WindSpeedUnit) string {
	switch unit {
	case domain.KilometresPerHour:
		return tr.T("unit.kmh")
	case domain.MilesPerHour:
		return tr.T("unit.mph")
	default:
		return tr.T("unit.ms")
	}
}

var compassKeys = []string{"n", "ne", "e", "se", "s", "sw", "w", "nw"}

func compass(tr *i18n.Translator, degrees float64) string {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	idx := int(math.Round(degrees/45)) % len(compassKeys)
	return tr.T("compass." + compassKeys[idx])
}

func indicator(oldValue, newValue float64) string {
	switch {
	case newValue > oldValue:
		return indicatorUp
	case newValue < oldValue:
		return indicatorDown
	default:
		return indicatorNeutral
	}
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	r := math.Round(v*pow) / pow
	if r == 0 {
		return 0
	}
	return r
}

func formatNumber(v float64, decimals int) string {
	return strconv.FormatFloat(round(v, decimals), 'f', decimals, 64)
}

func withUnit(value, unit string) string {
	if unit == "%" {
		return value + unit
	}
	return value + " " + unit
}

func bold(s string) string {
	return "<b>" + html.EscapeString(s) + "</b>"
}

func displayCity(user *domain.User, city string) string {
	name := strings.TrimSpace(user.City)
	if name != "" && domain.NormalizeCity(name) == city {
		return name
	}
	return upperFirst(city)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
