package notification

import (
	"context"
	"time"

	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// ForecastSource supplies day forecasts for digests
type ForecastSource interface {
	GetForecast(ctx context.Context, city, lang string) (*domain.Forecast, error)
}

type UseCase struct {
	users     ports.UserRepository
	snapshots ports.SnapshotRepository
	messenger ports.Messenger
	forecasts ForecastSource
	composer  *Composer
	config    ports.ConfigProvider
	logger    ports.Logger
	metrics   ports.MetricsCollector
}

type UseCaseDependencies struct {
	Users     ports.UserRepository
	Snapshots ports.SnapshotRepository
	Messenger ports.Messenger
	Forecasts ForecastSource
	Composer  *Composer
	Config    ports.ConfigProvider
	Logger    ports.Logger
	Metrics   ports.MetricsCollector
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Users == nil {
		return nil, errors.NewValidationError("user repository is required")
	}
	if deps.Snapshots == nil {
		return nil, errors.NewValidationError("snapshot repository is required")
	}
	if deps.Messenger == nil {
		return nil, errors.NewValidationError("messenger is required")
	}
	if deps.Forecasts == nil {
		return nil, errors.NewValidationError("forecast source is required")
	}
	if deps.Composer == nil {
		return nil, errors.NewValidationError("composer is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}

	return &UseCase{
		users:     deps.Users,
		snapshots: deps.Snapshots,
		messenger: deps.Messenger,
		forecasts: deps.Forecasts,
		composer:  deps.Composer,
		config:    deps.Config,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}, nil
}

// DispatchChanges notifies the threshold subscribers of every changed city.
// The cooldown is shared by all subscribers of a city.
func (uc *UseCase) DispatchChanges(ctx context.Context, now time.Time, changes domain.ChangeSet) DispatchReport {
	var report DispatchReport
	cooldown := uc.config.GetSchedulerConfig().Cooldown

	for _, city := range changes.Cities() {
		record := changes[city]

		subscribers, err := uc.users.ListThresholdSubscribers(ctx, city)
		if err != nil {
			uc.logger.Error("Failed to load subscribers",
				ports.F("city", city),
				ports.F("error", err))
			continue
		}
		if len(subscribers) == 0 {
			uc.logger.Debug("No subscribers for changed city", ports.F("city", city))
			continue
		}

		snapshot, err := uc.snapshots.Get(ctx, city)
		if err != nil {
			uc.logger.Error("Failed to load cooldown state",
				ports.F("city", city),
				ports.F("error", err))
			report.Failed += len(subscribers)
			continue
		}
		if snapshot.InCooldown(now, cooldown) {
			uc.logger.Info("Change notification suppressed by cooldown",
				ports.F("city", city),
				ports.F("subscribers", len(subscribers)),
				ports.F("previous_notify_time", snapshot.PreviousNotifyTime))
			report.Suppressed += len(subscribers)
			for range subscribers {
				uc.metrics.RecordNotification(ctx, KindChange, OutcomeSuppressed)
			}
			continue
		}

		sent := 0
		for _, user := range subscribers {
			text, ok := uc.composer.RenderChange(user, record)
			if !ok {
				report.Skipped++
				uc.metrics.RecordNotification(ctx, KindChange, OutcomeSkipped)
				continue
			}

			if err := uc.deliverChange(ctx, user, text); err != nil {
				uc.logger.Error("Failed to send change notification",
					ports.F("user_id", user.ID),
					ports.F("city", city),
					ports.F("error", err))
				report.Failed++
				uc.metrics.RecordNotification(ctx, KindChange, OutcomeFailed)
				continue
			}
			sent++
			report.Sent++
			uc.metrics.RecordNotification(ctx, KindChange, OutcomeSent)
		}

		if sent > 0 {
			if err := uc.snapshots.MarkNotified(ctx, city, now); err != nil {
				uc.logger.Error("Failed to record notify time",
					ports.F("city", city),
					ports.F("error", err))
			}
		}
	}

	uc.logger.Info("Change dispatch completed",
		ports.F("cities", len(changes)),
		ports.F("sent", report.Sent),
		ports.F("suppressed", report.Suppressed),
		ports.F("skipped", report.Skipped),
		ports.F("failed", report.Failed))
	return report
}

// deliverChange replaces the user's previous change notification with text
func (uc *UseCase) deliverChange(ctx context.Context, user *domain.User, text string) error {
	state := user.Messages

	if state.WeatherID != 0 {
		if err := uc.messenger.Delete(ctx, user.ID, state.WeatherID); err != nil {
			uc.logger.Debug("Previous change notification not deleted",
				ports.F("user_id", user.ID),
				ports.F("message_id", state.WeatherID),
				ports.F("error", err))
		}
	}

	id, err := uc.messenger.Send(ctx, user.ID, text)
	if err != nil {
		return errors.NewDispatchError("send change notification", err)
	}

	state.WeatherID = id
	if err := uc.users.UpdateMessages(ctx, user.ID, state); err != nil {
		uc.logger.Error("Failed to record change notification id",
			ports.F("user_id", user.ID),
			ports.F("message_id", id),
			ports.F("error", err))
	}
	user.Messages = state
	return nil
}

// DispatchDailyDigests publishes the day forecast for every forecast
// subscriber whose local time is inside the morning window and who has not
// received a digest today.
func (uc *UseCase) DispatchDailyDigests(ctx context.Context, now time.Time) DigestReport {
	report := newDigestReport()

	subscribers, err := uc.users.ListForecastSubscribers(ctx)
	if err != nil {
		uc.logger.Error("Failed to load forecast subscribers", ports.F("error", err))
		return report
	}

	for _, user := range subscribers {
		if !uc.inDigestWindow(user.LocalTime(now)) {
			continue
		}
		if user.DigestSentOn(now) {
			report.Skipped++
			continue
		}

		report.Handled[user.ID] = true
		text, ok := uc.renderDigest(ctx, user)
		if !ok {
			report.Skipped++
			uc.metrics.RecordNotification(ctx, KindDigest, OutcomeSkipped)
			continue
		}

		uc.countDigest(ctx, &report, uc.publishDigest(ctx, user, text, now, true))
	}

	uc.logger.Info("Daily digest pass completed",
		ports.F("sent", report.Sent),
		ports.F("edited", report.Edited),
		ports.F("skipped", report.Skipped),
		ports.F("failed", report.Failed))
	return report
}

// RefreshDigests re-renders today's digests the daily pass did not touch.
// A successful edit keeps the existing pin.
func (uc *UseCase) RefreshDigests(ctx context.Context, now time.Time, handled map[int64]bool) DigestReport {
	report := newDigestReport()

	subscribers, err := uc.users.ListForecastSubscribers(ctx)
	if err != nil {
		uc.logger.Error("Failed to load forecast subscribers", ports.F("error", err))
		return report
	}

	for _, user := range subscribers {
		if handled[user.ID] || user.Messages.ForecastID == 0 || !user.DigestSentOn(now) {
			continue
		}

		report.Handled[user.ID] = true
		text, ok := uc.renderDigest(ctx, user)
		if !ok {
			report.Skipped++
			continue
		}

		uc.countDigest(ctx, &report, uc.publishDigest(ctx, user, text, now, false))
	}

	uc.logger.Debug("Digest refresh completed",
		ports.F("edited", report.Edited),
		ports.F("resent", report.Sent),
		ports.F("failed", report.Failed))
	return report
}

func (uc *UseCase) renderDigest(ctx context.Context, user *domain.User) (string, bool) {
	forecast, err := uc.fetchForecast(ctx, user)
	if err != nil {
		uc.logger.Warn("Forecast unavailable for digest",
			ports.F("user_id", user.ID),
			ports.F("city", user.City),
			ports.F("error", err))
		return "", false
	}
	return uc.composer.RenderForecast(user, forecast)
}

// fetchForecast retries transient failures up to FetchPasses times within
// the cycle. Unknown cities are not retried.
func (uc *UseCase) fetchForecast(ctx context.Context, user *domain.User) (*domain.Forecast, error) {
	attempts := max(uc.config.GetSchedulerConfig().FetchPasses, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var forecast *domain.Forecast
		forecast, err = uc.forecasts.GetForecast(ctx, user.City, user.Language)
		if err == nil {
			return forecast, nil
		}
		if errors.IsNotFoundError(err) || errors.IsValidationError(err) || ctx.Err() != nil {
			return nil, err
		}
		uc.logger.Debug("Forecast attempt failed",
			ports.F("user_id", user.ID),
			ports.F("attempt", attempt),
			ports.F("error", err))
	}
	return nil, err
}

// publishDigest edits the recorded digest in place, or sends and pins a new
// one when there is none or the edit fails.
func (uc *UseCase) publishDigest(ctx context.Context, user *domain.User, text string, now time.Time, daily bool) publishResult {
	state := user.Messages

	if state.ForecastID != 0 {
		err := uc.messenger.Edit(ctx, user.ID, state.ForecastID, text)
		if err == nil {
			if daily {
				state.LastDigestAt = now
				uc.saveMessages(ctx, user, state)
			}
			return publishEdited
		}
		uc.logger.Info("Digest edit failed, sending a new one",
			ports.F("user_id", user.ID),
			ports.F("message_id", state.ForecastID),
			ports.F("error", err))
	}

	id, err := uc.messenger.Send(ctx, user.ID, text)
	if err != nil {
		uc.logger.Error("Failed to send digest",
			ports.F("user_id", user.ID),
			ports.F("error", errors.NewDispatchError("send digest", err)))
		return publishFailed
	}

	state.ForecastID = id
	if daily {
		state.LastDigestAt = now
	}
	uc.saveMessages(ctx, user, state)

	if err := uc.messenger.Pin(ctx, user.ID, id); err != nil {
		uc.logger.Warn("Failed to pin digest",
			ports.F("user_id", user.ID),
			ports.F("message_id", id),
			ports.F("error", err))
	}
	return publishSent
}

func (uc *UseCase) saveMessages(ctx context.Context, user *domain.User, state domain.MessageState) {
	if err := uc.users.UpdateMessages(ctx, user.ID, state); err != nil {
		uc.logger.Error("Failed to record digest state",
			ports.F("user_id", user.ID),
			ports.F("error", err))
	}
	user.Messages = state
}

func (uc *UseCase) countDigest(ctx context.Context, report *DigestReport, result publishResult) {
	switch result {
	case publishEdited:
		report.Edited++
		uc.metrics.RecordNotification(ctx, KindDigest, OutcomeEdited)
	case publishSent:
		report.Sent++
		uc.metrics.RecordNotification(ctx, KindDigest, OutcomeSent)
	default:
		report.Failed++
		uc.metrics.RecordNotification(ctx, KindDigest, OutcomeFailed)
	}
}

func (uc *UseCase) inDigestWindow(local time.Time) bool {
	cfg := uc.config.GetSchedulerConfig()
	start := time.Date(local.Year(), local.Month(), local.Day(), cfg.DigestHour, 0, 0, 0, local.Location())
	return !local.Before(start) && local.Before(start.Add(cfg.DigestWindow))
}
