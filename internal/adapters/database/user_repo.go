package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// UserModel represents the database model for chat subscribers
type UserModel struct {
	ID                     int64  `gorm:"primaryKey;autoIncrement:false"`
	City                   string `gorm:"not null;default:''"`
	CityKey                string `gorm:"index;not null;default:''"`
	TrackedParams          string `gorm:"not null;default:''"`
	TemperatureUnit        string
	PressureUnit           string
	WindSpeedUnit          string
	ThresholdNotifications bool `gorm:"index"`
	ForecastNotifications  bool `gorm:"index"`
	Language               string
	Timezone               string
	MenuMessageID          int
	WeatherMessageID       int
	ForecastMessageID      int
	LastDigestAt           *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// UserRepositoryAdapter implements the UserRepository port using GORM
type UserRepositoryAdapter struct {
	db     *gorm.DB
	logger ports.Logger
}

func NewUserRepositoryAdapter(db *gorm.DB, logger ports.Logger) *UserRepositoryAdapter {
	return &UserRepositoryAdapter{db: db, logger: logger}
}

// ListCities returns the distinct normalized cities users have chosen
func (r *UserRepositoryAdapter) ListCities(ctx context.Context) ([]string, error) {
	var cities []string
	result := r.db.WithContext(ctx).Model(&UserModel{}).
		Distinct("city_key").
		Where("city_key <> ?", "").
		Order("city_key").
		Pluck("city_key", &cities)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("failed to list cities", result.Error)
	}
	return cities, nil
}

// ListThresholdSubscribers returns users of city with change notifications on
func (r *UserRepositoryAdapter) ListThresholdSubscribers(ctx context.Context, city string) ([]*domain.User, error) {
	key := domain.NormalizeCity(city)
	if key == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	var models []UserModel
	result := r.db.WithContext(ctx).
		Where("city_key = ? AND threshold_notifications = ?", key, true).
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("failed to list threshold subscribers", result.Error)
	}
	return r.modelsToUsers(models), nil
}

// ListForecastSubscribers returns users with the daily digest on
func (r *UserRepositoryAdapter) ListForecastSubscribers(ctx context.Context) ([]*domain.User, error) {
	var models []UserModel
	result := r.db.WithContext(ctx).
		Where("forecast_notifications = ? AND city_key <> ?", true, "").
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("failed to list forecast subscribers", result.Error)
	}
	return r.modelsToUsers(models), nil
}

// UpdateMessages stores the message ids and digest date of a user
func (r *UserRepositoryAdapter) UpdateMessages(ctx context.Context, id int64, state domain.MessageState) error {
	if id == 0 {
		return errors.NewValidationError("user ID cannot be zero")
	}

	result := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"menu_message_id":     state.MenuID,
			"weather_message_id":  state.WeatherID,
			"forecast_message_id": state.ForecastID,
			"last_digest_at":      optionalTime(state.LastDigestAt),
		})
	if result.Error != nil {
		return errors.NewDatabaseError("failed to update message state", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("user not found")
	}
	return nil
}

func (r *UserRepositoryAdapter) modelsToUsers(models []UserModel) []*domain.User {
	users := make([]*domain.User, len(models))
	for i := range models {
		users[i] = r.modelToUser(&models[i])
	}
	return users
}

// modelToUser decodes the tracked parameter column. Unknown names are dropped.
func (r *UserRepositoryAdapter) modelToUser(model *UserModel) *domain.User {
	tracked, unknown := domain.ParseMetricSet(model.TrackedParams)
	if len(unknown) > 0 && r.logger != nil {
		r.logger.Warn("Ignoring unknown tracked parameters",
			ports.F("user_id", model.ID),
			ports.F("parameters", unknown))
	}

	user := &domain.User{
		ID:      model.ID,
		City:    model.City,
		Tracked: tracked,
		Units:   unitsFromModel(model),
		Notifications: domain.Notifications{
			Threshold: model.ThresholdNotifications,
			Forecast:  model.ForecastNotifications,
		},
		Language: model.Language,
		Timezone: model.Timezone,
		Messages: domain.MessageState{
			MenuID:     model.MenuMessageID,
			WeatherID:  model.WeatherMessageID,
			ForecastID: model.ForecastMessageID,
		},
	}
	if model.LastDigestAt != nil {
		user.Messages.LastDigestAt = *model.LastDigestAt
	}
	return user
}

// unitsFromModel keeps the defaults for columns that were never set
func unitsFromModel(model *UserModel) domain.Units {
	units := domain.DefaultUnits()
	if model.TemperatureUnit != "" {
		units.Temperature = domain.ParseTemperatureUnit(model.TemperatureUnit)
	}
	if model.PressureUnit != "" {
		units.Pressure = domain.ParsePressureUnit(model.PressureUnit)
	}
	if model.WindSpeedUnit != "" {
		units.WindSpeed = domain.ParseWindSpeedUnit(model.WindSpeedUnit)
	}
	return units
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
