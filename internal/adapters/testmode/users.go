package testmode

import (
	"context"
	"sync"

	"weatherbot.app/internal/domain"
	"weatherbot.app/pkg/errors"
)

// SyntheticUsers is a user store holding exactly one subscriber with every
// metric tracked and both notification kinds enabled.
type SyntheticUsers struct {
	mu   sync.RWMutex
	user domain.User
}

func NewSyntheticUsers(chatID int64, city, timezone, language string) *SyntheticUsers {
	return &SyntheticUsers{user: domain.User{
		ID:            chatID,
		City:          city,
		Tracked:       domain.FullMetricSet(),
		Units:         domain.DefaultUnits(),
		Notifications: domain.Notifications{Threshold: true, Forecast: true},
		Language:      language,
		Timezone:      timezone,
	}}
}

func (s *SyntheticUsers) ListCities(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	city := domain.NormalizeCity(s.user.City)
	if city == "" {
		return []string{}, nil
	}
	return []string{city}, nil
}

func (s *SyntheticUsers) ListThresholdSubscribers(ctx context.Context, city string) ([]*domain.User, error) {
	key := domain.NormalizeCity(city)
	if key == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.user.Notifications.Threshold || domain.NormalizeCity(s.user.City) != key {
		return []*domain.User{}, nil
	}
	return []*domain.User{s.copyUser()}, nil
}

func (s *SyntheticUsers) ListForecastSubscribers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.user.Notifications.Forecast || domain.NormalizeCity(s.user.City) == "" {
		return []*domain.User{}, nil
	}
	return []*domain.User{s.copyUser()}, nil
}

func (s *SyntheticUsers) UpdateMessages(ctx context.Context, id int64, state domain.MessageState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.user.ID {
		return errors.NewNotFoundError("user not found")
	}
	s.user.Messages = state
	return nil
}

// copyUser must be called with the lock held
func (s *SyntheticUsers) copyUser() *domain.User {
	u := s.user
	return &u
}
