package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"weatherbot.app/internal/domain"
)

// SnapshotRepository is a testify mock of ports.SnapshotRepository
type SnapshotRepository struct {
	mock.Mock
}

// NewSnapshotRepository creates a SnapshotRepository mock and asserts its expectations on cleanup
func NewSnapshotRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *SnapshotRepository {
	m := &SnapshotRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SnapshotRepository) Get(ctx context.Context, city string) (*domain.CitySnapshot, error) {
	args := m.Called(ctx, city)
	snapshot, _ := args.Get(0).(*domain.CitySnapshot)
	return snapshot, args.Error(1)
}

func (m *SnapshotRepository) Upsert(ctx context.Context, snapshot *domain.CitySnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *SnapshotRepository) MarkNotified(ctx context.Context, city string, at time.Time) error {
	args := m.Called(ctx, city, at)
	return args.Error(0)
}

// UserRepository is a testify mock of ports.UserRepository
type UserRepository struct {
	mock.Mock
}

// NewUserRepository creates a UserRepository mock and asserts its expectations on cleanup
func NewUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserRepository {
	m := &UserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *UserRepository) ListCities(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	cities, _ := args.Get(0).([]string)
	return cities, args.Error(1)
}

func (m *UserRepository) ListThresholdSubscribers(ctx context.Context, city string) ([]*domain.User, error) {
	args := m.Called(ctx, city)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

func (m *UserRepository) ListForecastSubscribers(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

func (m *UserRepository) UpdateMessages(ctx context.Context, id int64, state domain.MessageState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}
