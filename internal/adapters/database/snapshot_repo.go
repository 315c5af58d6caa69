package database

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"
	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// SnapshotColumns stores one domain.Snapshot inline in its parent row
type SnapshotColumns struct {
	Temperature   float64
	FeelsLike     float64
	Humidity      float64
	WindSpeed     float64
	WindDirection float64
	WindGust      float64
	Pressure      float64
	Visibility    float64
	Clouds        float64
	Precipitation float64
	Description   string
	ObservedAt    time.Time
}

// CitySnapshotModel represents the database model for per-city weather state
type CitySnapshotModel struct {
	ID                 uint            `gorm:"primaryKey"`
	City               string          `gorm:"uniqueIndex;not null"`
	Current            SnapshotColumns `gorm:"embedded;embeddedPrefix:current_"`
	Last               SnapshotColumns `gorm:"embedded;embeddedPrefix:last_"`
	LastChecked        time.Time
	PreviousNotifyTime *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (CitySnapshotModel) TableName() string {
	return "city_snapshots"
}

// SnapshotRepositoryAdapter implements the SnapshotRepository port using GORM
type SnapshotRepositoryAdapter struct {
	db *gorm.DB
}

func NewSnapshotRepositoryAdapter(db *gorm.DB) ports.SnapshotRepository {
	return &SnapshotRepositoryAdapter{db: db}
}

// Get returns the stored state of city or a NotFound error
func (r *SnapshotRepositoryAdapter) Get(ctx context.Context, city string) (*domain.CitySnapshot, error) {
	key := domain.NormalizeCity(city)
	if key == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	model, err := r.find(ctx, key)
	if err != nil {
		return nil, err
	}
	return modelToSnapshot(model), nil
}

// Upsert inserts or replaces the state of a city
func (r *SnapshotRepositoryAdapter) Upsert(ctx context.Context, snapshot *domain.CitySnapshot) error {
	if snapshot == nil {
		return errors.NewValidationError("snapshot cannot be nil")
	}
	key := domain.NormalizeCity(snapshot.City)
	if key == "" {
		return errors.NewValidationError("city cannot be empty")
	}

	model := snapshotToModel(snapshot)
	model.City = key

	existing, err := r.find(ctx, key)
	switch {
	case err == nil:
		model.ID = existing.ID
		model.CreatedAt = existing.CreatedAt
		if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
			return errors.NewDatabaseError("failed to update city snapshot", result.Error)
		}
	case errors.IsNotFoundError(err):
		if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
			return errors.NewDatabaseError("failed to create city snapshot", result.Error)
		}
	default:
		return err
	}

	return nil
}

// MarkNotified stamps the cooldown anchor of city
func (r *SnapshotRepositoryAdapter) MarkNotified(ctx context.Context, city string, at time.Time) error {
	key := domain.NormalizeCity(city)
	if key == "" {
		return errors.NewValidationError("city cannot be empty")
	}

	result := r.db.WithContext(ctx).Model(&CitySnapshotModel{}).
		Where("city = ?", key).
		Update("previous_notify_time", at.UTC())
	if result.Error != nil {
		return errors.NewDatabaseError("failed to record notify time", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("city snapshot not found")
	}
	return nil
}

func (r *SnapshotRepositoryAdapter) find(ctx context.Context, key string) (*CitySnapshotModel, error) {
	var model CitySnapshotModel
	result := r.db.WithContext(ctx).Where("city = ?", key).First(&model)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("city snapshot not found")
		}
		return nil, errors.NewDatabaseError("failed to find city snapshot", result.Error)
	}
	return &model, nil
}

func snapshotToModel(s *domain.CitySnapshot) *CitySnapshotModel {
	model := &CitySnapshotModel{
		City:        s.City,
		Current:     columnsFromSnapshot(s.Current),
		Last:        columnsFromSnapshot(s.Last),
		LastChecked: s.LastChecked.UTC(),
	}
	if !s.PreviousNotifyTime.IsZero() {
		at := s.PreviousNotifyTime.UTC()
		model.PreviousNotifyTime = &at
	}
	return model
}

func modelToSnapshot(m *CitySnapshotModel) *domain.CitySnapshot {
	s := &domain.CitySnapshot{
		City:        m.City,
		Current:     m.Current.toSnapshot(),
		Last:        m.Last.toSnapshot(),
		LastChecked: m.LastChecked,
	}
	if m.PreviousNotifyTime != nil {
		s.PreviousNotifyTime = *m.PreviousNotifyTime
	}
	return s
}

func columnsFromSnapshot(s domain.Snapshot) SnapshotColumns {
	return SnapshotColumns{
		Temperature:   s.Temperature,
		FeelsLike:     s.FeelsLike,
		Humidity:      s.Humidity,
		WindSpeed:     s.WindSpeed,
		WindDirection: s.WindDirection,
		WindGust:      s.WindGust,
		Pressure:      s.Pressure,
		Visibility:    s.Visibility,
		Clouds:        s.Clouds,
		Precipitation: s.Precipitation,
		Description:   s.Description,
		ObservedAt:    s.ObservedAt.UTC(),
	}
}

func (c SnapshotColumns) toSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Temperature:   c.Temperature,
		FeelsLike:     c.FeelsLike,
		Humidity:      c.Humidity,
		WindSpeed:     c.WindSpeed,
		WindDirection: c.WindDirection,
		WindGust:      c.WindGust,
		Pressure:      c.Pressure,
		Visibility:    c.Visibility,
		Clouds:        c.Clouds,
		Precipitation: c.Precipitation,
		Description:   c.Description,
		ObservedAt:    c.ObservedAt,
	}
}
