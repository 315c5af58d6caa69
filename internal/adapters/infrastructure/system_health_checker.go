package infrastructure

import (
	"context"

	"weatherbot.app/internal/ports"
)

// SystemHealthChecker aggregates the component health checks
type SystemHealthChecker struct {
	checkers map[string]ports.HealthChecker
}

func NewSystemHealthChecker(checkers map[string]ports.HealthChecker) *SystemHealthChecker {
	return &SystemHealthChecker{checkers: checkers}
}

// CheckAll runs every configured checker; nil checkers are skipped
func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	results := make(map[string]ports.HealthStatus, len(s.checkers))
	for name, checker := range s.checkers {
		if checker == nil {
			continue
		}
		results[name] = checker.Check(ctx)
	}
	return results
}

// Healthy reports whether every status in results is healthy
func Healthy(results map[string]ports.HealthStatus) bool {
	for _, status := range results {
		if status.Status != statusHealthy {
			return false
		}
	}
	return true
}
