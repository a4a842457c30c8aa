package kiln

import (
	"context"
	"time"

	"github.com/xraph/kiln/errors"
	"github.com/xraph/kiln/logger"
)

// Resolve resolves a component by name, recursively resolving and
// instantiating its declared dependencies depth-first. Singleton results are
// cached: repeated resolution returns the identical instance and never
// re-runs the constructor or factory after the first success. If the engine
// is already running, a freshly created instance that implements Initializer
// is initialized immediately, so components resolved after the startup wave
// are self-initializing.
func (e *Engine) Resolve(ctx context.Context, name string) (any, error) {
	return e.resolve(ctx, name, nil)
}

// resolve carries the recursion stack of names currently being resolved on
// this call path; revisiting one is a circular-dependency violation.
func (e *Engine) resolve(ctx context.Context, name string, stack []string) (any, error) {
	for _, pending := range stack {
		if pending == name {
			return nil, errors.ErrCircularDependency(cyclePath(stack, name))
		}
	}

	e.mu.RLock()
	registration, exists := e.registrations[name]
	if !exists {
		e.mu.RUnlock()
		return nil, errors.ErrComponentNotFound(name)
	}
	if registration.Singleton {
		if instance, cached := e.instances[name]; cached {
			e.mu.RUnlock()
			return instance, nil
		}
	}
	e.mu.RUnlock()

	if registration.Singleton {
		registration.createMu.Lock()
		defer registration.createMu.Unlock()

		// Another caller may have won the race while we waited.
		e.mu.RLock()
		instance, cached := e.instances[name]
		e.mu.RUnlock()
		if cached {
			return instance, nil
		}
	}

	start := time.Now()

	dependencies := make(Dependencies, len(registration.Dependencies))
	childStack := append(stack, name)
	for _, dependency := range registration.Dependencies {
		if !e.Has(dependency) {
			return nil, errors.ErrDependencyNotFound(name, dependency)
		}
		resolved, err := e.resolve(ctx, dependency, childStack)
		if err != nil {
			return nil, err
		}
		dependencies[dependency] = resolved
	}

	instance, err := e.instantiate(ctx, registration, dependencies)
	if err != nil {
		wrapped := errors.ErrResolutionFailed(name, err)
		e.captureError(ctx, "resolve", wrapped)
		return nil, wrapped
	}

	if err := e.maybeInitialize(ctx, registration, instance); err != nil {
		wrapped := errors.ErrResolutionFailed(name, err)
		e.captureError(ctx, "resolve", wrapped)
		return nil, wrapped
	}

	if registration.Singleton {
		e.mu.Lock()
		e.instances[name] = instance
		e.mu.Unlock()
	}

	e.metrics.record("kiln.resolutions", 1, map[string]string{"component": name})

	e.logger.Debug("component resolved",
		logger.String("component", name),
		logger.String("kind", registration.kind.String()),
		logger.Duration("elapsed", time.Since(start)))

	e.emit(Event{
		Type:      EventComponentResolved,
		Component: name,
		Time:      time.Now(),
		Duration:  time.Since(start),
	})

	return instance, nil
}

// instantiate runs the implementation variant fixed at registration time.
func (e *Engine) instantiate(ctx context.Context, registration *Registration, dependencies Dependencies) (any, error) {
	switch registration.kind {
	case kindConstructor:
		return registration.constructor(dependencies)
	case kindFactory:
		return registration.factory(ctx, dependencies)
	default:
		return registration.instance, nil
	}
}

// maybeInitialize initializes an instance created after the startup wave.
// During the wave itself the lifecycle orchestrator owns initialization
// order, so this only fires while the engine is RUNNING. The initialized
// map coordinates with the wave for singletons; a transient produces a
// fresh instance on every resolution, and each new instance is initialized.
func (e *Engine) maybeInitialize(ctx context.Context, registration *Registration, instance any) error {
	if self, ok := instance.(*Engine); ok && self == e {
		return nil
	}

	initializer, ok := instance.(Initializer)
	if !ok {
		return nil
	}

	if !registration.Singleton {
		if e.Status() != StatusRunning {
			return nil
		}
		return initializer.Initialize(ctx)
	}

	e.mu.Lock()
	if e.status != StatusRunning || e.initialized[registration.Name] {
		e.mu.Unlock()
		return nil
	}
	e.initialized[registration.Name] = true
	e.mu.Unlock()

	if err := initializer.Initialize(ctx); err != nil {
		e.mu.Lock()
		delete(e.initialized, registration.Name)
		e.mu.Unlock()
		return err
	}

	return nil
}
