package ports

import (
	"context"
	"time"

	"weatherbot.app/internal/domain"
)

// SnapshotRepository persists the per-city weather state. Get returns a
// NotFound error when the city has never been observed.
type SnapshotRepository interface {
	Get(ctx context.Context, city string) (*domain.CitySnapshot, error)
	Upsert(ctx context.Context, snapshot *domain.CitySnapshot) error
	MarkNotified(ctx context.Context, city string, at time.Time) error
}

// UserRepository gives the engine access to subscriber records
type UserRepository interface {
	ListCities(ctx context.Context) ([]string, error)
	ListThresholdSubscribers(ctx context.Context, city string) ([]*domain.User, error)
	ListForecastSubscribers(ctx context.Context) ([]*domain.User, error)
	UpdateMessages(ctx context.Context, id int64, state domain.MessageState) error
}
