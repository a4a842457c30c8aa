package kiln

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/kiln/errors"
	"github.com/xraph/kiln/logger"
)

// implKind tags the shape of a registered implementation. The shape is fixed
// once at registration time so the resolver's instantiation step is a single
// switch.
type implKind int

const (
	kindInstance implKind = iota
	kindConstructor
	kindFactory
)

func (k implKind) String() string {
	switch k {
	case kindConstructor:
		return "constructor"
	case kindFactory:
		return "factory"
	default:
		return "instance"
	}
}

// Registration holds a component's implementation reference, its options,
// and its declared dependency names. Registrations are immutable once stored.
type Registration struct {
	Name         string
	Singleton    bool
	Dependencies []string
	Created      time.Time

	kind        implKind
	constructor Constructor
	factory     Factory
	instance    any

	// guards one-time instantiation for singletons
	createMu sync.Mutex
}

// RegisterOption mutates a registration before it is stored.
type RegisterOption func(*Registration)

// WithDependencies declares the ordered dependency names the component's
// constructor or factory requires.
func WithDependencies(names ...string) RegisterOption {
	return func(r *Registration) {
		r.Dependencies = append(r.Dependencies, names...)
	}
}

// WithTransient marks the component as non-singleton: every resolution
// creates a fresh instance.
func WithTransient() RegisterOption {
	return func(r *Registration) {
		r.Singleton = false
	}
}

// Register registers a component under a unique name. The implementation may
// be a Constructor, a Factory, or any pre-built value. Registration fails
// with a configuration error on a duplicate name or once the engine is
// shutting down or shut down.
func (e *Engine) Register(name string, implementation any, opts ...RegisterOption) error {
	if name == "" {
		return errors.ErrConfigError("component name must not be empty", nil)
	}

	registration := &Registration{
		Name:      name,
		Singleton: true,
		Created:   time.Now(),
	}

	switch impl := implementation.(type) {
	case Constructor:
		registration.kind = kindConstructor
		registration.constructor = impl
	case func(Dependencies) (any, error):
		registration.kind = kindConstructor
		registration.constructor = impl
	case Factory:
		registration.kind = kindFactory
		registration.factory = impl
	case func(context.Context, Dependencies) (any, error):
		registration.kind = kindFactory
		registration.factory = impl
	default:
		registration.kind = kindInstance
		registration.instance = implementation
	}

	for _, opt := range opts {
		opt(registration)
	}

	e.mu.Lock()
	if e.status == StatusShuttingDown || e.status == StatusShutdown {
		e.mu.Unlock()
		return errors.ErrEngineShutdown("register component '" + name + "'")
	}
	if _, exists := e.registrations[name]; exists {
		e.mu.Unlock()
		return errors.ErrComponentAlreadyExists(name)
	}
	e.registrations[name] = registration
	e.order = append(e.order, name)
	total := len(e.registrations)
	e.mu.Unlock()

	e.metrics.record("kiln.components.registered", float64(total), nil)

	e.logger.Debug("component registered",
		logger.String("component", name),
		logger.String("kind", registration.kind.String()),
		logger.Bool("singleton", registration.Singleton),
		logger.Strings("dependencies", registration.Dependencies),
		logger.Int("total_components", total))

	e.emit(Event{Type: EventComponentRegistered, Component: name, Time: time.Now()})

	return nil
}

// MustRegister is Register for chained calls; it panics on registration
// failure.
func (e *Engine) MustRegister(name string, implementation any, opts ...RegisterOption) *Engine {
	if err := e.Register(name, implementation, opts...); err != nil {
		panic(err)
	}
	return e
}

// RegisterManifest registers the manifest for a component type. One manifest
// is allowed per type; duplicates and registration against a shut-down
// engine are rejected.
func (e *Engine) RegisterManifest(componentType string, manifest *Manifest) error {
	if componentType == "" {
		return errors.ErrConfigError("manifest type must not be empty", nil)
	}
	if manifest == nil {
		return errors.ErrConfigError("manifest must not be nil", nil)
	}

	e.mu.Lock()
	if e.status == StatusShuttingDown || e.status == StatusShutdown {
		e.mu.Unlock()
		return errors.ErrEngineShutdown("register manifest '" + componentType + "'")
	}
	if _, exists := e.manifests[componentType]; exists {
		e.mu.Unlock()
		return errors.ErrManifestAlreadyExists(componentType)
	}
	manifest.Type = componentType
	e.manifests[componentType] = manifest
	e.mu.Unlock()

	e.logger.Debug("manifest registered",
		logger.String("type", componentType),
		logger.Int("schema_fields", len(manifest.Schema)),
		logger.Int("providers", len(manifest.Providers)))

	e.emit(Event{Type: EventManifestRegistered, Component: componentType, Time: time.Now()})

	return nil
}

// Has reports whether a component name is registered.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.registrations[name]
	return exists
}

// HasManifest reports whether a manifest is registered for the type.
func (e *Engine) HasManifest(componentType string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.manifests[componentType]
	return exists
}

// Components returns all registered component names in registration order.
func (e *Engine) Components() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

// Registration returns the stored registration for a name.
func (e *Engine) Registration(name string) (*Registration, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	registration, exists := e.registrations[name]
	return registration, exists
}
