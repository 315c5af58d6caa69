package domain

import "strings"

type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
	Kelvin     TemperatureUnit = "K"
)

type PressureUnit string

const (
	HectoPascal  PressureUnit = "hPa"
	MillimetreHg PressureUnit = "mmHg"
	Millibar     PressureUnit = "mbar"
	InchHg       PressureUnit = "inHg"
)

type WindSpeedUnit string

const (
	MetresPerSecond   WindSpeedUnit = "m/s"
	KilometresPerHour WindSpeedUnit = "km/h"
	MilesPerHour      WindSpeedUnit = "mph"
)

const (
	hPaToMmHg  = 0.750062
	hPaToInHg  = 0.0295300
	msToKmh    = 3.6
	msToMph    = 2.23694
	kelvinZero = 273.15
)

// ParseTemperatureUnit falls back to Celsius for unknown input
func ParseTemperatureUnit(s string) TemperatureUnit {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F", "FAHRENHEIT":
		return Fahrenheit
	case "K", "KELVIN":
		return Kelvin
	default:
		return Celsius
	}
}

// ParsePressureUnit falls back to hPa for unknown input
func ParsePressureUnit(s string) PressureUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mmhg":
		return MillimetreHg
	case "mbar":
		return Millibar
	case "inhg":
		return InchHg
	default:
		return HectoPascal
	}
}

// ParseWindSpeedUnit falls back to m/s for unknown input
func ParseWindSpeedUnit(s string) WindSpeedUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km/h", "kmh":
		return KilometresPerHour
	case "mph":
		return MilesPerHour
	default:
		return MetresPerSecond
	}
}

// TemperatureFromCelsius converts a canonical temperature into unit
func TemperatureFromCelsius(c float64, unit TemperatureUnit) float64 {
	switch unit {
	case Fahrenheit:
		return c*9/5 + 32
	case Kelvin:
		return c + kelvinZero
	default:
		return c
	}
}

// TemperatureToCelsius is the inverse of TemperatureFromCelsius
func TemperatureToCelsius(v float64, unit TemperatureUnit) float64 {
	switch unit {
	case Fahrenheit:
		return (v - 32) * 5 / 9
	case Kelvin:
		return v - kelvinZero
	default:
		return v
	}
}

// PressureFromHPa converts a canonical pressure into unit
func PressureFromHPa(hpa float64, unit PressureUnit) float64 {
	switch unit {
	case MillimetreHg:
		return hpa * hPaToMmHg
	case InchHg:
		return hpa * hPaToInHg
	default:
		return hpa
	}
}

// PressureToHPa is the inverse of PressureFromHPa
func PressureToHPa(v float64, unit PressureUnit) float64 {
	switch unit {
	case MillimetreHg:
		return v / hPaToMmHg
	case InchHg:
		return v / hPaToInHg
	default:
		return v
	}
}

// PressureDecimals is the number of decimals a pressure is shown with
func PressureDecimals(unit PressureUnit) int {
	if unit == InchHg {
		return 2
	}
	return 0
}

// WindSpeedFromMS converts a canonical wind speed into unit
func WindSpeedFromMS(ms float64, unit WindSpeedUnit) float64 {
	switch unit {
	case KilometresPerHour:
		return ms * msToKmh
	case MilesPerHour:
		return ms * msToMph
	default:
		return ms
	}
}

// WindSpeedToMS is the inverse of WindSpeedFromMS
func WindSpeedToMS(v float64, unit WindSpeedUnit) float64 {
	switch unit {
	case KilometresPerHour:
		return v / msToKmh
	case MilesPerHour:
		return v / msToMph
	default:
		return v
	}
}
