package domain

import "time"

// Units holds the display units chosen by a user
type Units struct {
	Temperature TemperatureUnit
	Pressure    PressureUnit
	WindSpeed   WindSpeedUnit
}

// DefaultUnits are used when a user never picked any
func DefaultUnits() Units {
	return Units{
		Temperature: Celsius,
		Pressure:    MillimetreHg,
		WindSpeed:   MetresPerSecond,
	}
}

// Notifications holds the per-user feature toggles
type Notifications struct {
	Threshold bool
	Forecast  bool
}

// MessageState tracks the messages currently shown to a user.
type MessageState struct {
	MenuID       int
	WeatherID    int
	ForecastID   int
	LastDigestAt time.Time
}

// User is a chat subscriber.
type User struct {
	ID            int64
	City          string
	Tracked       MetricSet
	Units         Units
	Notifications Notifications
	Language      string
	Timezone      string
	Messages      MessageState
}

// Location resolves the user's time zone, falling back to UTC
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LocalTime converts t into the user's time zone
func (u *User) LocalTime(t time.Time) time.Time {
	return t.In(u.Location())
}

// DigestSentOn reports whether the last digest was delivered on the same
// local calendar day as now.
func (u *User) DigestSentOn(now time.Time) bool {
	if u.Messages.LastDigestAt.IsZero() {
		return false
	}
	return SameDay(u.LocalTime(u.Messages.LastDigestAt), u.LocalTime(now))
}

// SameDay compares calendar dates in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
