package infrastructure

import (
	"context"
	"time"

	"weatherbot.app/internal/ports"
)

// Pinger is implemented by adapters that can check their remote end
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingHealthChecker reports a component healthy when its Ping succeeds
type PingHealthChecker struct {
	component string
	pinger    Pinger
}

func NewPingHealthChecker(component string, pinger Pinger) *PingHealthChecker {
	return &PingHealthChecker{component: component, pinger: pinger}
}

func (p *PingHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{Component: p.component, Status: statusHealthy}
	if p.pinger == nil {
		status.Status = statusUnhealthy
		status.Error = p.component + " is not configured"
		return status
	}
	if err := p.pinger.Ping(ctx); err != nil {
		status.Status = statusUnhealthy
		status.Error = err.Error()
	}
	return status
}

// CircuitReporter exposes the state of a circuit breaker
type CircuitReporter interface {
	Name() string
	CircuitState() string
}

// WeatherSourceHealthChecker reports the weather source circuit state.
// It never calls the API.
type WeatherSourceHealthChecker struct {
	source CircuitReporter
}

func NewWeatherSourceHealthChecker(source CircuitReporter) *WeatherSourceHealthChecker {
	return &WeatherSourceHealthChecker{source: source}
}

func (w *WeatherSourceHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "weather_source",
		Status:    statusHealthy,
		Details:   make(map[string]interface{}),
	}
	if w.source == nil {
		status.Details["source"] = "synthetic"
		return status
	}

	state := w.source.CircuitState()
	status.Details["source"] = w.source.Name()
	status.Details["circuit"] = state
	if state == "open" {
		status.Status = statusUnhealthy
		status.Error = "circuit breaker is open"
	}
	return status
}

// HeartbeatReader returns the time of the last completed fetch
type HeartbeatReader interface {
	Last() time.Time
}

// SchedulerHealthChecker compares the heartbeat age with the stall threshold
type SchedulerHealthChecker struct {
	heartbeat HeartbeatReader
	threshold time.Duration
	startedAt time.Time
	now       func() time.Time
}

func NewSchedulerHealthChecker(heartbeat HeartbeatReader, threshold time.Duration, now func() time.Time) *SchedulerHealthChecker {
	if now == nil {
		now = time.Now
	}
	return &SchedulerHealthChecker{heartbeat: heartbeat, threshold: threshold, startedAt: now(), now: now}
}

func (s *SchedulerHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "scheduler",
		Status:    statusHealthy,
		Details:   make(map[string]interface{}),
	}

	last := s.heartbeat.Last()
	anchor := last
	if last.IsZero() {
		anchor = s.startedAt
	} else {
		status.Details["last_heartbeat"] = last.UTC().Format(time.RFC3339)
	}

	age := s.now().Sub(anchor)
	status.Details["heartbeat_age_seconds"] = int64(age.Seconds())
	if age > s.threshold {
		status.Status = statusUnhealthy
		status.Error = "no weather fetch completed within " + s.threshold.String()
	}
	return status
}
