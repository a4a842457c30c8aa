package kiln

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xraph/kiln/logger"
)

// Config contains construction-time configuration for an Engine.
type Config struct {
	// Name identifies the engine in status snapshots and log output.
	Name string

	// Version overrides the reported engine version.
	Version string

	// Logger receives all engine log output. Nil means no logging.
	Logger logger.Logger

	// Priority seeds the dependency-order traversal so that foundational
	// components are initialized before unordered ones.
	Priority []string

	// ErrorSink names the component adopted as the engine's error-reporting
	// collaborator once it resolves during initialization.
	ErrorSink string

	// ErrorHistorySize bounds the internal error ring buffer.
	ErrorHistorySize int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Name:             "kiln",
		Version:          Version,
		ErrorHistorySize: 100,
	}
}

// Engine is the component registry, resolver, and lifecycle orchestrator.
// All mutable state is exclusively owned by the engine instance and guarded
// by a single coarse lock; lifecycle operations are idempotent but are not
// designed to race each other.
type Engine struct {
	id      string
	name    string
	version string
	logger  logger.Logger

	mu            sync.RWMutex
	status        Status
	startTime     time.Time
	registrations map[string]*Registration
	order         []string
	instances     map[string]any
	initialized   map[string]bool
	manifests     map[string]*Manifest
	priority      []string
	errorSinkName string
	errorSink     ErrorReporter
	subscribers   []func(Event)

	errors  *errorRing
	metrics *metricsTable
	checks  map[string]HealthCheckFunc
}

// New creates a new engine in the CREATED state. The engine registers its
// own handle under the reserved name so components can declare it as a
// dependency; the error-reporting collaborator named in the configuration is
// adopted later, once it resolves.
func New(opts ...Option) *Engine {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	log := config.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}

	e := &Engine{
		id:            uuid.NewString(),
		name:          config.Name,
		version:       config.Version,
		logger:        log.Named(config.Name),
		status:        StatusCreated,
		registrations: make(map[string]*Registration),
		instances:     make(map[string]any),
		initialized:   make(map[string]bool),
		manifests:     make(map[string]*Manifest),
		priority:      config.Priority,
		errorSinkName: config.ErrorSink,
		errors:        newErrorRing(config.ErrorHistorySize),
		metrics:       newMetricsTable(),
		checks:        make(map[string]HealthCheckFunc),
	}

	e.checks["kiln.status"] = e.statusCheck
	e.checks["kiln.registry"] = e.registryCheck

	// Phase 1 of the self-referential bootstrap.
	if err := e.Register(EngineComponentName, e); err != nil {
		e.logger.Error("failed to register engine handle", logger.Error(err))
	}

	return e
}

// ID returns the unique identifier of this engine instance.
func (e *Engine) ID() string {
	return e.id
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return e.name
}

// Status returns the current lifecycle status.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// StartTime returns the timestamp of the last successful initialize, or the
// zero time if the engine is not running.
func (e *Engine) StartTime() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.startTime
}

// Uptime returns the time elapsed since the engine started running.
func (e *Engine) Uptime() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.startTime.IsZero() {
		return 0
	}
	return time.Since(e.startTime)
}

// captureError records an operational error in the bounded history, forwards
// it to the error-reporting collaborator when one is available (falling back
// to direct log output), and emits an error event. It never propagates.
func (e *Engine) captureError(ctx context.Context, operation string, err error) {
	e.errors.append(CapturedError{Time: time.Now(), Operation: operation, Err: err})

	e.mu.RLock()
	sink := e.errorSink
	e.mu.RUnlock()

	if sink != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("error sink panicked",
						logger.String("operation", operation),
						logger.Any("panic", r),
						logger.Error(err))
				}
			}()
			sink.ReportError(ctx, err)
		}()
	} else {
		e.logger.Error("internal error captured",
			logger.String("operation", operation),
			logger.Error(err))
	}

	e.emit(Event{Type: EventError, Time: time.Now(), Err: err})
}

// Errors returns a snapshot of the captured error history, oldest first.
func (e *Engine) Errors() []CapturedError {
	return e.errors.snapshot()
}

// Stats contains counters describing the engine's registries.
type Stats struct {
	Components   int `json:"components"`
	Instances    int `json:"instances"`
	Manifests    int `json:"manifests"`
	HealthChecks int `json:"health_checks"`
	Errors       int `json:"errors"`
}

// GetStats returns statistics about the engine's registries.
func (e *Engine) GetStats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Stats{
		Components:   len(e.registrations),
		Instances:    len(e.instances),
		Manifests:    len(e.manifests),
		HealthChecks: len(e.checks),
		Errors:       e.errors.len(),
	}
}

// SystemStatus is a plain structured snapshot intended for external
// supervisory polling.
type SystemStatus struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Version    string        `json:"version"`
	Status     Status        `json:"status"`
	StartTime  time.Time     `json:"start_time,omitzero"`
	Uptime     time.Duration `json:"uptime"`
	Components int           `json:"components"`
	Instances  int           `json:"instances"`
	ErrorCount int           `json:"error_count"`
}

// GetSystemStatus returns a snapshot of the engine's identity, lifecycle
// status, uptime, and internal error count.
func (e *Engine) GetSystemStatus() SystemStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var uptime time.Duration
	if !e.startTime.IsZero() {
		uptime = time.Since(e.startTime)
	}

	return SystemStatus{
		ID:         e.id,
		Name:       e.name,
		Version:    e.version,
		Status:     e.status,
		StartTime:  e.startTime,
		Uptime:     uptime,
		Components: len(e.registrations),
		Instances:  len(e.instances),
		ErrorCount: e.errors.len(),
	}
}
