package external

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const (
	defaultOpenWeatherMapURL = "https://api.openweathermap.org/data/2.5"
	defaultRequestTimeout    = 10 * time.Second
)

// HTTPClient is the subset of *http.Client used by the adapters
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenWeatherMapSource implements the WeatherSource port over the
// OpenWeatherMap current weather and 5 day / 3 hour forecast endpoints.
type OpenWeatherMapSource struct {
	apiKey   string
	baseURL  string
	client   HTTPClient
	breaker  *gobreaker.CircuitBreaker
	validate *validator.Validate
	logger   ports.Logger
	now      func() time.Time
}

// OpenWeatherMapSourceParams holds parameters for creating the source
type OpenWeatherMapSourceParams struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Client  HTTPClient
	Logger  ports.Logger
	Now     func() time.Time
}

type owmWeather struct {
	Description string `json:"description"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  float64 `json:"humidity"`
	Pressure  float64 `json:"pressure"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
	Gust  float64 `json:"gust"`
}

type owmClouds struct {
	All float64 `json:"all"`
}

// owmCurrentResponse represents the /weather payload
type owmCurrentResponse struct {
	Dt         int64        `json:"dt"`
	Main       owmMain      `json:"main"`
	Wind       owmWind      `json:"wind"`
	Clouds     owmClouds    `json:"clouds"`
	Visibility *float64     `json:"visibility"`
	Weather    []owmWeather `json:"weather"`
}

type owmForecastEntry struct {
	Dt         int64        `json:"dt"`
	Main       owmMain      `json:"main"`
	Wind       owmWind      `json:"wind"`
	Clouds     owmClouds    `json:"clouds"`
	Visibility *float64     `json:"visibility"`
	Pop        float64      `json:"pop"`
	Weather    []owmWeather `json:"weather"`
}

// owmForecastResponse represents the /forecast payload
type owmForecastResponse struct {
	List []owmForecastEntry `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

func NewOpenWeatherMapSource(params OpenWeatherMapSourceParams) *OpenWeatherMapSource {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenWeatherMapURL
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &OpenWeatherMapSource{
		apiKey:  params.APIKey,
		baseURL: baseURL,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweathermap",
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}),
		validate: validator.New(),
		logger:   params.Logger,
		now:      now,
	}
}

func (s *OpenWeatherMapSource) Name() string {
	return "openweathermap"
}

// CircuitState is one of closed, half-open or open
func (s *OpenWeatherMapSource) CircuitState() string {
	return s.breaker.State().String()
}

// Fetch returns the current conditions. Precipitation probability comes from
// the nearest forecast slot and is marked unknown when that lookup fails.
func (s *OpenWeatherMapSource) Fetch(ctx context.Context, city, lang string) (*domain.Snapshot, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	var payload owmCurrentResponse
	if err := s.get(ctx, "weather", city, lang, nil, &payload); err != nil {
		return nil, err
	}

	observedAt := s.now().UTC()
	if payload.Dt > 0 {
		observedAt = time.Unix(payload.Dt, 0).UTC()
	}

	snapshot := &domain.Snapshot{
		Temperature:   payload.Main.Temp,
		FeelsLike:     payload.Main.FeelsLike,
		Humidity:      payload.Main.Humidity,
		WindSpeed:     payload.Wind.Speed,
		WindDirection: payload.Wind.Deg,
		WindGust:      payload.Wind.Gust,
		Pressure:      payload.Main.Pressure,
		Visibility:    visibility(payload.Visibility),
		Clouds:        payload.Clouds.All,
		Description:   description(payload.Weather),
		ObservedAt:    observedAt,
	}

	var next owmForecastResponse
	if err := s.get(ctx, "forecast", city, lang, url.Values{"cnt": {"1"}}, &next); err != nil {
		s.warn("Precipitation probability unavailable", ports.F("city", city), ports.F("error", err))
		snapshot.PrecipitationUnknown = true
	} else if len(next.List) > 0 {
		snapshot.Precipitation = next.List[0].Pop * 100
	} else {
		snapshot.PrecipitationUnknown = true
	}

	if err := s.validate.Struct(snapshot); err != nil {
		return nil, errors.NewUnavailableError("OpenWeatherMap returned an implausible observation", err)
	}
	return snapshot, nil
}

// Forecast aggregates the 3-hour slots of the city's current local day.
func (s *OpenWeatherMapSource) Forecast(ctx context.Context, city, lang string) (*domain.Forecast, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	var payload owmForecastResponse
	if err := s.get(ctx, "forecast", city, lang, nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, errors.NewUnavailableError("OpenWeatherMap returned an empty forecast", nil)
	}

	zone := time.FixedZone("city", payload.City.Timezone)
	return aggregateDay(domain.NormalizeCity(city), payload.List, s.now().In(zone)), nil
}

func aggregateDay(city string, entries []owmForecastEntry, today time.Time) *domain.Forecast {
	zone := today.Location()
	day := make([]owmForecastEntry, 0, len(entries))
	for _, e := range entries {
		if domain.SameDay(today, time.Unix(e.Dt, 0).In(zone)) {
			day = append(day, e)
		}
	}
	if len(day) == 0 {
		// late in the day every remaining slot belongs to tomorrow
		first := time.Unix(entries[0].Dt, 0).In(zone)
		for _, e := range entries {
			if domain.SameDay(first, time.Unix(e.Dt, 0).In(zone)) {
				day = append(day, e)
			}
		}
		today = first
	}

	f := &domain.Forecast{
		City:       city,
		Date:       time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, zone),
		TempMin:    day[0].Main.TempMin,
		TempMax:    day[0].Main.TempMax,
		Visibility: visibility(day[0].Visibility),
	}

	var feels, humidity, pressure, clouds, direction float64
	descriptions := make(map[string]int)
	order := make([]string, 0, len(day))
	for _, e := range day {
		f.TempMin = min(f.TempMin, e.Main.TempMin, e.Main.Temp)
		f.TempMax = max(f.TempMax, e.Main.TempMax, e.Main.Temp)
		f.WindSpeed = max(f.WindSpeed, e.Wind.Speed)
		f.WindGust = max(f.WindGust, e.Wind.Gust)
		f.Precipitation = max(f.Precipitation, e.Pop*100)
		f.Visibility = min(f.Visibility, visibility(e.Visibility))
		feels += e.Main.FeelsLike
		humidity += e.Main.Humidity
		pressure += e.Main.Pressure
		clouds += e.Clouds.All
		if e.Wind.Speed >= f.WindSpeed {
			direction = e.Wind.Deg
		}

		d := description(e.Weather)
		if descriptions[d] == 0 {
			order = append(order, d)
		}
		descriptions[d]++
	}

	n := float64(len(day))
	f.FeelsLike = feels / n
	f.Humidity = humidity / n
	f.Pressure = pressure / n
	f.Clouds = clouds / n
	f.WindDirection = direction

	sort.SliceStable(order, func(i, j int) bool {
		return descriptions[order[i]] > descriptions[order[j]]
	})
	f.Description = order[0]
	return f
}

// get performs one request through the circuit breaker. A 404 is a valid
// answer for the breaker and does not count as a failure.
func (s *OpenWeatherMapSource) get(ctx context.Context, endpoint, city, lang string, extra url.Values, out interface{}) error {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", s.apiKey)
	values.Set("units", "metric")
	if lang != "" {
		values.Set("lang", lang)
	}
	for k, v := range extra {
		values[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?%s", s.baseURL, endpoint, values.Encode()), nil)
	if err != nil {
		return errors.NewUnavailableError("failed to build OpenWeatherMap request", err)
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		resp, doErr := s.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if resp.StatusCode == http.StatusNotFound || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
			return resp, nil
		}
		_ = resp.Body.Close()
		return nil, fmt.Errorf("OpenWeatherMap returned status %d", resp.StatusCode)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.NewUnavailableError("OpenWeatherMap circuit open", err)
		}
		return errors.NewUnavailableError("failed to call OpenWeatherMap", err)
	}

	resp := result.(*http.Response)
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.warn("Failed to close OpenWeatherMap response body", ports.F("error", closeErr))
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return errors.NewNotFoundError(fmt.Sprintf("city %q not found", city))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewUnavailableError("failed to decode OpenWeatherMap response", err)
	}
	return nil
}

func (s *OpenWeatherMapSource) warn(msg string, fields ...ports.Field) {
	if s.logger != nil {
		s.logger.Warn(msg, fields...)
	}
}

func description(items []owmWeather) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].Description
}

// visibility defaults to the 10 km maximum the API reports
func visibility(v *float64) float64 {
	if v == nil {
		return 10000
	}
	return *v
}
