// Package kiln is a named-component registry and runtime engine. It accepts
// component registrations (constructors, factories, or pre-built instances),
// resolves declared dependencies into a valid initialization order,
// instantiates components on demand with singleton caching, and drives a
// uniform lifecycle with integrated health and metrics reporting.
package kiln

import "context"

// Version is the engine version reported in status snapshots.
const Version = "0.1.0"

// EngineComponentName is the reserved name under which every engine
// registers its own handle.
const EngineComponentName = "kiln"

// Dependencies is the bag of resolved dependency instances handed to a
// component's constructor or factory, keyed by dependency name.
type Dependencies map[string]any

// Constructor builds a component from its resolved dependencies.
type Constructor func(deps Dependencies) (any, error)

// Factory builds a component from its resolved dependencies and may perform
// blocking setup work, hence the context.
type Factory func(ctx context.Context, deps Dependencies) (any, error)

// Initializer is implemented by components that need a startup hook. It is
// invoked at most once per engine run.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Shutdowner is implemented by components that need a teardown hook.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ErrorReporter is implemented by the designated error-reporting
// collaborator. Once resolved, it receives every operational error the
// engine captures.
type ErrorReporter interface {
	ReportError(ctx context.Context, err error)
}

// Status represents the lifecycle state of an engine.
type Status string

const (
	StatusCreated      Status = "created"
	StatusInitializing Status = "initializing"
	StatusRunning      Status = "running"
	StatusShuttingDown Status = "shutting_down"
	StatusShutdown     Status = "shutdown"
	StatusError        Status = "error"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// terminal reports whether the engine can no longer be initialized.
func (s Status) terminal() bool {
	return s == StatusShutdown || s == StatusError
}
