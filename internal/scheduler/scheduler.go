// Package scheduler drives the fetch, detect and dispatch cycle on wall-clock
// boundaries and watches it for stalls.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"weatherbot.app/internal/core/notification"
	"weatherbot.app/internal/domain"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// State is the phase the scheduler loop is in
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateEvaluating
	StateDispatching
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateEvaluating:
		return "evaluating"
	case StateDispatching:
		return "dispatching"
	default:
		return "idle"
	}
}

// ChangeDetector refreshes cities and reports significant changes
type ChangeDetector interface {
	RefreshCities(ctx context.Context, cities []string) (domain.ChangeSet, []string)
}

// Dispatcher delivers change notifications and digests
type Dispatcher interface {
	DispatchChanges(ctx context.Context, now time.Time, changes domain.ChangeSet) notification.DispatchReport
	DispatchDailyDigests(ctx context.Context, now time.Time) notification.DigestReport
	RefreshDigests(ctx context.Context, now time.Time, handled map[int64]bool) notification.DigestReport
}

// CycleSummary describes the last completed cycle
type CycleSummary struct {
	ID           string                      `json:"id"`
	StartedAt    time.Time                   `json:"started_at"`
	Duration     time.Duration               `json:"duration"`
	Cities       int                         `json:"cities"`
	FailedCities []string                    `json:"failed_cities,omitempty"`
	Changes      int                         `json:"changes"`
	Dispatch     notification.DispatchReport `json:"dispatch"`
	Digests      notification.DigestReport   `json:"digests"`
	Refreshed    notification.DigestReport   `json:"refreshed"`
	Error        string                      `json:"error,omitempty"`
}

// Status is a read-only view of the scheduler for the ops endpoints
type Status struct {
	State         string        `json:"state"`
	LastHeartbeat time.Time     `json:"last_heartbeat"`
	NextRun       time.Time     `json:"next_run"`
	LastCycle     *CycleSummary `json:"last_cycle,omitempty"`
}

type Scheduler struct {
	cities     ports.UserRepository
	detector   ChangeDetector
	dispatcher Dispatcher
	heartbeat  *Heartbeat
	schedule   cron.Schedule
	runOnStart bool
	logger     ports.Logger
	metrics    ports.MetricsCollector
	now        func() time.Time

	state     atomic.Int32
	nextRun   atomic.Int64
	lastCycle atomic.Pointer[CycleSummary]
}

type Dependencies struct {
	Users      ports.UserRepository
	Detector   ChangeDetector
	Dispatcher Dispatcher
	Heartbeat  *Heartbeat
	Config     ports.ConfigProvider
	Logger     ports.Logger
	Metrics    ports.MetricsCollector
	Now        func() time.Time
}

func New(deps Dependencies) (*Scheduler, error) {
	if deps.Users == nil {
		return nil, errors.NewValidationError("user repository is required")
	}
	if deps.Detector == nil {
		return nil, errors.NewValidationError("change detector is required")
	}
	if deps.Dispatcher == nil {
		return nil, errors.NewValidationError("dispatcher is required")
	}
	if deps.Heartbeat == nil {
		return nil, errors.NewValidationError("heartbeat is required")
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

	cfg := deps.Config.GetSchedulerConfig()
	schedule, err := cron.ParseStandard(cfg.CycleSpec)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("invalid cycle schedule %q", cfg.CycleSpec), err)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		cities:     deps.Users,
		detector:   deps.Detector,
		dispatcher: deps.Dispatcher,
		heartbeat:  deps.Heartbeat,
		schedule:   schedule,
		runOnStart: cfg.RunOnStart,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		now:        now,
	}, nil
}

// Run executes cycles on schedule boundaries until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started", ports.F("run_on_start", s.runOnStart))

	if s.runOnStart {
		s.RunCycle(ctx, s.now())
	}

	for {
		next := s.NextRun(s.now())
		s.nextRun.Store(next.UnixNano())

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scheduler stopped")
			return nil
		case <-timer.C:
		}

		s.RunCycle(ctx, s.now())
	}
}

// NextRun returns the first schedule boundary strictly after now
func (s *Scheduler) NextRun(now time.Time) time.Time {
	return s.schedule.Next(now)
}

// RunCycle performs one full cycle. The change set never outlives the call,
// and a panic inside the cycle is logged rather than propagated.
func (s *Scheduler) RunCycle(ctx context.Context, now time.Time) (summary *CycleSummary) {
	summary = &CycleSummary{ID: uuid.NewString(), StartedAt: now}
	var changes domain.ChangeSet

	defer func() {
		changes = nil
		if r := recover(); r != nil {
			summary.Error = fmt.Sprintf("panic: %v", r)
			s.logger.Error("Cycle aborted",
				ports.F("cycle_id", summary.ID),
				ports.F("panic", r))
		}
		finished := s.now()
		summary.Duration = finished.Sub(now)
		s.heartbeat.Beat(finished)
		s.state.Store(int32(StateIdle))
		s.lastCycle.Store(summary)
		s.metrics.RecordCycle(ctx, summary.Duration, len(summary.FailedCities))
	}()

	log := func(msg string, fields ...ports.Field) {
		s.logger.Info(msg, append([]ports.Field{ports.F("cycle_id", summary.ID)}, fields...)...)
	}
	log("Cycle started", ports.F("at", now))

	s.state.Store(int32(StateFetching))
	cities, err := s.cities.ListCities(ctx)
	if err != nil {
		summary.Error = err.Error()
		s.logger.Error("Failed to list tracked cities",
			ports.F("cycle_id", summary.ID),
			ports.F("error", err))
		return summary
	}
	summary.Cities = len(cities)

	s.state.Store(int32(StateEvaluating))
	changes, summary.FailedCities = s.detector.RefreshCities(ctx, cities)
	summary.Changes = len(changes)

	s.state.Store(int32(StateDispatching))
	summary.Dispatch = s.dispatcher.DispatchChanges(ctx, now, changes)
	summary.Digests = s.dispatcher.DispatchDailyDigests(ctx, now)
	summary.Refreshed = s.dispatcher.RefreshDigests(ctx, now, summary.Digests.Handled)

	log("Cycle completed",
		ports.F("cities", summary.Cities),
		ports.F("failed_cities", len(summary.FailedCities)),
		ports.F("changes", summary.Changes),
		ports.F("notifications_sent", summary.Dispatch.Sent),
		ports.F("digests_sent", summary.Digests.Sent+summary.Digests.Edited))
	return summary
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) Status() Status {
	status := Status{
		State:         s.State().String(),
		LastHeartbeat: s.heartbeat.Last(),
		LastCycle:     s.lastCycle.Load(),
	}
	if nanos := s.nextRun.Load(); nanos != 0 {
		status.NextRun = time.Unix(0, nanos)
	}
	return status
}
