package kiln

import "github.com/xraph/kiln/logger"

// Option mutates the engine configuration at construction time.
type Option func(*Config)

// WithName sets the engine name reported in status snapshots and logs.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithVersion overrides the reported engine version.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithPriority seeds the dependency-order traversal with the given component
// names so they are initialized before unordered components.
func WithPriority(names ...string) Option {
	return func(c *Config) {
		c.Priority = append(c.Priority, names...)
	}
}

// WithErrorSink names the component adopted as the engine's error-reporting
// collaborator once it resolves during initialization.
func WithErrorSink(name string) Option {
	return func(c *Config) {
		c.ErrorSink = name
	}
}

// WithErrorHistorySize bounds the engine's internal error history.
func WithErrorHistorySize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ErrorHistorySize = n
		}
	}
}
