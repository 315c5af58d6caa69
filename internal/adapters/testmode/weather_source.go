package testmode

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"weatherbot.app/internal/domain"
	"weatherbot.app/pkg/errors"
)

var descriptions = []string{"ясно", "облачно", "небольшой дождь", "туман", "снег"}

// RandomWeatherSource generates snapshots as a random walk per city, so
// successive fetches sometimes cross the significance thresholds.
type RandomWeatherSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	state map[string]domain.Snapshot
	now   func() time.Time
}

func NewRandomWeatherSource(seed uint64, now func() time.Time) *RandomWeatherSource {
	if now == nil {
		now = time.Now
	}
	return &RandomWeatherSource{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		state: make(map[string]domain.Snapshot),
		now:   now,
	}
}

func (s *RandomWeatherSource) Name() string {
	return "random"
}

func (s *RandomWeatherSource) Fetch(ctx context.Context, city, lang string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := domain.NormalizeCity(city)
	if key == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.state[key]
	if !ok {
		current = s.seedSnapshot()
	} else {
		current = s.step(current)
	}
	current.ObservedAt = s.now().UTC()
	s.state[key] = current

	snapshot := current
	return &snapshot, nil
}

// Forecast spreads the day around the city's current walk position
func (s *RandomWeatherSource) Forecast(ctx context.Context, city, lang string) (*domain.Forecast, error) {
	current, err := s.Fetch(ctx, city, lang)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	spread := 3 + s.rng.Float64()*6
	s.mu.Unlock()

	now := s.now().UTC()
	return &domain.Forecast{
		City:          domain.NormalizeCity(city),
		Date:          time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC),
		TempMin:       round1(current.Temperature - spread/2),
		TempMax:       round1(current.Temperature + spread/2),
		FeelsLike:     current.FeelsLike,
		Humidity:      current.Humidity,
		Pressure:      current.Pressure,
		WindSpeed:     current.WindSpeed,
		WindDirection: current.WindDirection,
		WindGust:      current.WindGust,
		Precipitation: current.Precipitation,
		Visibility:    current.Visibility,
		Clouds:        current.Clouds,
		Description:   current.Description,
	}, nil
}

func (s *RandomWeatherSource) seedSnapshot() domain.Snapshot {
	temp := round1(-5 + s.rng.Float64()*25)
	wind := round1(s.rng.Float64() * 8)
	return domain.Snapshot{
		Temperature:   temp,
		FeelsLike:     round1(temp - wind/2),
		Humidity:      float64(40 + s.rng.IntN(50)),
		WindSpeed:     wind,
		WindDirection: float64(s.rng.IntN(360)),
		WindGust:      round1(wind + s.rng.Float64()*4),
		Pressure:      float64(995 + s.rng.IntN(30)),
		Visibility:    float64(2000 + 1000*s.rng.IntN(9)),
		Clouds:        float64(s.rng.IntN(101)),
		Precipitation: float64(s.rng.IntN(101)),
		Description:   descriptions[s.rng.IntN(len(descriptions))],
	}
}

func (s *RandomWeatherSource) step(prev domain.Snapshot) domain.Snapshot {
	next := prev
	next.Temperature = round1(clamp(prev.Temperature+s.jitter(2.5), -40, 45))
	next.WindSpeed = round1(clamp(prev.WindSpeed+s.jitter(2), 0, 30))
	next.FeelsLike = round1(next.Temperature - next.WindSpeed/2)
	next.WindGust = round1(next.WindSpeed + s.rng.Float64()*4)
	next.WindDirection = float64((int(prev.WindDirection) + s.rng.IntN(91) - 45 + 360) % 360)
	next.Humidity = clamp(prev.Humidity+float64(s.rng.IntN(21)-10), 0, 100)
	next.Pressure = clamp(prev.Pressure+float64(s.rng.IntN(7)-3), 950, 1050)
	next.Visibility = clamp(prev.Visibility+float64(1000*(s.rng.IntN(5)-2)), 0, 10000)
	next.Clouds = clamp(prev.Clouds+float64(s.rng.IntN(41)-20), 0, 100)
	next.Precipitation = clamp(prev.Precipitation+float64(s.rng.IntN(41)-20), 0, 100)
	if s.rng.IntN(4) == 0 {
		next.Description = descriptions[s.rng.IntN(len(descriptions))]
	}
	return next
}

func (s *RandomWeatherSource) jitter(amplitude float64) float64 {
	return (s.rng.Float64()*2 - 1) * amplitude
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
