package scheduler

import (
	"os"
	"time"

	"github.com/go-co-op/gocron"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const stallExitCode = 1

// Watchdog terminates the process when the heartbeat goes stale so that an
// external supervisor can restart it.
type Watchdog struct {
	heartbeat *Heartbeat
	interval  time.Duration
	threshold time.Duration
	logger    ports.Logger
	exit      func(code int)
	now       func() time.Time
	scheduler *gocron.Scheduler
	startedAt time.Time
}

type WatchdogDependencies struct {
	Heartbeat *Heartbeat
	Config    ports.ConfigProvider
	Logger    ports.Logger
	Exit      func(code int)
	Now       func() time.Time
}

func NewWatchdog(deps WatchdogDependencies) (*Watchdog, error) {
	if deps.Heartbeat == nil {
		return nil, errors.NewValidationError("heartbeat is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	cfg := deps.Config.GetSchedulerConfig()
	if cfg.WatchdogInterval <= 0 || cfg.StallThreshold <= 0 {
		return nil, errors.NewConfigurationError("watchdog interval and stall threshold must be positive", nil)
	}

	exit := deps.Exit
	if exit == nil {
		exit = os.Exit
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Watchdog{
		heartbeat: deps.Heartbeat,
		interval:  cfg.WatchdogInterval,
		threshold: cfg.StallThreshold,
		logger:    deps.Logger,
		exit:      exit,
		now:       now,
	}, nil
}

// Start schedules the periodic check. The first check runs one interval
// after start.
func (w *Watchdog) Start() error {
	w.startedAt = w.now()
	w.scheduler = gocron.NewScheduler(time.UTC)

	_, err := w.scheduler.Every(w.interval).WaitForSchedule().Do(func() {
		w.Check()
	})
	if err != nil {
		return errors.NewConfigurationError("failed to schedule watchdog", err)
	}

	w.scheduler.StartAsync()
	w.logger.Info("Watchdog started",
		ports.F("interval", w.interval.String()),
		ports.F("stall_threshold", w.threshold.String()))
	return nil
}

func (w *Watchdog) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}

// Check compares the heartbeat age with the stall threshold and exits the
// process on a stall. Before the first beat the age is measured from start.
// It returns whether the process was considered healthy.
func (w *Watchdog) Check() bool {
	last := w.heartbeat.Last()
	if last.IsZero() {
		last = w.startedAt
	}
	if last.IsZero() {
		return true
	}

	age := w.now().Sub(last)
	if age <= w.threshold {
		w.logger.Debug("Watchdog heartbeat fresh", ports.F("age", age.String()))
		return true
	}

	err := errors.NewStallError("no fetch attempt or completed cycle within the stall threshold")
	w.logger.Error("Scheduler stalled, terminating",
		ports.F("last_heartbeat", last),
		ports.F("age", age.String()),
		ports.F("threshold", w.threshold.String()),
		ports.F("error", err))
	w.exit(stallExitCode)
	return false
}
