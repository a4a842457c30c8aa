package kiln

import (
	"context"
	"time"

	"github.com/xraph/kiln/errors"
	"github.com/xraph/kiln/logger"
)

// Initialize resolves and initializes every registered component in
// dependency order and transitions the engine to RUNNING. Calling it while
// the engine is already running or initializing logs a warning and returns
// without re-running anything. On any failure the engine transitions to
// ERROR and the failure is reported through the internal error path before
// being returned wrapped as a lifecycle error.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.status == StatusRunning || e.status == StatusInitializing:
		status := e.status
		e.mu.Unlock()
		e.logger.Warn("initialize skipped", logger.String("status", status.String()))
		return nil
	case e.status.terminal():
		status := e.status
		e.mu.Unlock()
		return errors.ErrConfigError("cannot initialize engine in status '"+status.String()+"'", nil)
	}
	e.status = StatusInitializing
	e.startTime = time.Now()
	begin := e.startTime
	e.mu.Unlock()

	e.logger.Info("engine initializing",
		logger.Int("components", len(e.Components())))

	order, err := e.DependencyOrder()
	if err != nil {
		return e.initializeFailed(ctx, err)
	}

	for _, name := range order {
		instance, err := e.Resolve(ctx, name)
		if err != nil {
			return e.initializeFailed(ctx, err)
		}

		if name == EngineComponentName {
			continue
		}

		// Phase 2 of the self-referential bootstrap: adopt the designated
		// error-reporting collaborator as soon as it resolves, so every
		// later failure in this wave already routes through it.
		if name == e.errorSinkName {
			if sink, ok := instance.(ErrorReporter); ok {
				e.mu.Lock()
				e.errorSink = sink
				e.mu.Unlock()
				e.logger.Debug("error sink adopted", logger.String("component", name))
			}
		}

		if initializer, ok := instance.(Initializer); ok {
			e.mu.RLock()
			already := e.initialized[name]
			e.mu.RUnlock()
			if already {
				continue
			}

			if err := initializer.Initialize(ctx); err != nil {
				return e.initializeFailed(ctx,
					errors.ErrLifecycleError("initialize", err).WithContext("component", name))
			}

			e.mu.Lock()
			e.initialized[name] = true
			e.mu.Unlock()

			e.logger.Debug("component initialized", logger.String("component", name))
		}
	}

	e.mu.Lock()
	e.status = StatusRunning
	e.mu.Unlock()

	elapsed := time.Since(begin)
	e.metrics.record("kiln.initialize.duration_ms", float64(elapsed.Milliseconds()), nil)

	e.emit(Event{Type: EventInitialized, Time: time.Now(), Duration: elapsed})
	e.emit(Event{Type: EventRunning, Time: time.Now()})

	e.logger.Info("engine running",
		logger.Int("components", len(order)),
		logger.Duration("startup_time", elapsed))

	return nil
}

// initializeFailed transitions the engine to ERROR, reports the failure
// through the internal error path, and wraps it for the caller.
func (e *Engine) initializeFailed(ctx context.Context, err error) error {
	e.mu.Lock()
	e.status = StatusError
	e.startTime = time.Time{}
	e.mu.Unlock()

	wrapped := err
	if !errors.Is(err, errors.ErrLifecycleErrorSentinel) {
		wrapped = errors.ErrLifecycleError("initialize", err)
	}
	// Resolution failures are already captured at the resolve site.
	if !errors.Is(err, errors.ErrResolutionFailedSentinel) {
		e.captureError(ctx, "initialize", wrapped)
	}

	e.logger.Error("engine initialization failed", logger.Error(wrapped))

	return wrapped
}

// Shutdown shuts down every cached component in reverse dependency order,
// clears the instance cache, and transitions the engine to SHUTDOWN. It is a
// no-op when the engine is already shutting down or shut down. Individual
// component shutdown failures are captured, never propagated, so the
// remaining components still get a shutdown attempt.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.status == StatusShutdown || e.status == StatusShuttingDown {
		status := e.status
		e.mu.Unlock()
		e.logger.Debug("shutdown skipped", logger.String("status", status.String()))
		return nil
	}
	e.status = StatusShuttingDown
	e.mu.Unlock()

	begin := time.Now()
	e.logger.Info("engine shutting down")

	order, err := e.DependencyOrder()
	if err != nil {
		// The graph is no longer orderable; fall back to registration order
		// so every component still gets a shutdown attempt.
		e.captureError(ctx, "shutdown", err)
		order = e.Components()
	}

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		if name == EngineComponentName {
			continue
		}

		e.mu.RLock()
		instance, cached := e.instances[name]
		e.mu.RUnlock()
		if !cached {
			continue
		}

		shutdowner, ok := instance.(Shutdowner)
		if !ok {
			continue
		}

		if err := shutdowner.Shutdown(ctx); err != nil {
			e.captureError(ctx, "shutdown",
				errors.ErrLifecycleError("shutdown", err).WithContext("component", name))
			continue
		}

		e.logger.Debug("component shut down", logger.String("component", name))
	}

	e.mu.Lock()
	e.instances = make(map[string]any)
	e.initialized = make(map[string]bool)
	e.errorSink = nil
	e.status = StatusShutdown
	e.startTime = time.Time{}
	e.mu.Unlock()

	elapsed := time.Since(begin)
	e.metrics.record("kiln.shutdown.duration_ms", float64(elapsed.Milliseconds()), nil)

	e.emit(Event{Type: EventShutdown, Time: time.Now(), Duration: elapsed})

	e.logger.Info("engine shut down", logger.Duration("shutdown_time", elapsed))

	return nil
}
