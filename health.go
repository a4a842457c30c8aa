package kiln

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xraph/kiln/errors"
)

// HealthStatus represents the health of a check or of the engine overall.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// String returns the string representation of the health status.
func (hs HealthStatus) String() string {
	return string(hs)
}

// Severity returns a numeric severity level for aggregation.
func (hs HealthStatus) Severity() int {
	switch hs {
	case HealthStatusHealthy:
		return 0
	case HealthStatusDegraded, HealthStatusUnknown:
		return 1
	default:
		return 2
	}
}

// HealthResult is the outcome of a single health check.
type HealthResult struct {
	Name      string         `json:"name"`
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Duration  time.Duration  `json:"duration"`
	Timestamp time.Time      `json:"timestamp"`
}

// Healthy builds a healthy check result.
func Healthy(message string) HealthResult {
	return HealthResult{Status: HealthStatusHealthy, Message: message}
}

// Degraded builds a degraded check result.
func Degraded(message string) HealthResult {
	return HealthResult{Status: HealthStatusDegraded, Message: message}
}

// Unhealthy builds an unhealthy check result.
func Unhealthy(message string) HealthResult {
	return HealthResult{Status: HealthStatusUnhealthy, Message: message}
}

// WithDetail attaches a detail value to the result.
func (hr HealthResult) WithDetail(key string, value any) HealthResult {
	if hr.Details == nil {
		hr.Details = make(map[string]any)
	}
	hr.Details[key] = value
	return hr
}

// HealthCheckFunc performs a single health check.
type HealthCheckFunc func(ctx context.Context) HealthResult

// HealthReport aggregates every registered check into an overall status.
type HealthReport struct {
	Status     HealthStatus            `json:"status"`
	Checks     map[string]HealthResult `json:"checks"`
	ErrorCount int                     `json:"error_count"`
	Timestamp  time.Time               `json:"timestamp"`
}

// RegisterHealthCheck registers a named health check. Duplicate names are
// rejected with a configuration error.
func (e *Engine) RegisterHealthCheck(name string, check HealthCheckFunc) error {
	if name == "" {
		return errors.ErrConfigError("health check name must not be empty", nil)
	}
	if check == nil {
		return errors.ErrConfigError("health check '"+name+"' must not be nil", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.checks[name]; exists {
		return errors.ErrConfigError("health check '"+name+"' already registered", nil)
	}
	e.checks[name] = check
	return nil
}

// CheckHealth invokes every registered check and aggregates the per-check
// statuses: healthy if all checks are healthy, degraded if any is degraded,
// unhealthy if any is unhealthy or panics.
func (e *Engine) CheckHealth(ctx context.Context) *HealthReport {
	e.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(e.checks))
	for name, check := range e.checks {
		checks[name] = check
	}
	e.mu.RUnlock()

	report := &HealthReport{
		Status:     HealthStatusHealthy,
		Checks:     make(map[string]HealthResult, len(checks)),
		ErrorCount: e.errors.len(),
		Timestamp:  time.Now(),
	}

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		result := e.runCheck(ctx, name, checks[name])
		report.Checks[name] = result
		if result.Status.Severity() > report.Status.Severity() {
			switch result.Status.Severity() {
			case 1:
				report.Status = HealthStatusDegraded
			default:
				report.Status = HealthStatusUnhealthy
			}
		}
	}

	return report
}

// runCheck executes one check, converting a panic into an unhealthy result.
func (e *Engine) runCheck(ctx context.Context, name string, check HealthCheckFunc) (result HealthResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = Unhealthy(fmt.Sprintf("health check panicked: %v", r))
		}
		result.Name = name
		result.Duration = time.Since(start)
		result.Timestamp = time.Now()
	}()

	result = check(ctx)
	if result.Status == "" {
		result.Status = HealthStatusUnknown
	}
	return result
}

// statusCheck is the built-in check reflecting the engine's own lifecycle
// status.
func (e *Engine) statusCheck(ctx context.Context) HealthResult {
	status := e.Status()
	result := HealthResult{Message: "engine status is " + status.String()}

	switch status {
	case StatusRunning:
		result.Status = HealthStatusHealthy
	case StatusCreated, StatusInitializing, StatusShuttingDown:
		result.Status = HealthStatusDegraded
	default:
		result.Status = HealthStatusUnhealthy
	}

	return result.WithDetail("status", status.String()).
		WithDetail("uptime", e.Uptime().String())
}

// registryCheck is the built-in check reporting registry population counts.
func (e *Engine) registryCheck(ctx context.Context) HealthResult {
	stats := e.GetStats()
	return Healthy("registry populated").
		WithDetail("components", stats.Components).
		WithDetail("instances", stats.Instances).
		WithDetail("manifests", stats.Manifests)
}
