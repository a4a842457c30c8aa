package kiln

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xraph/kiln/errors"
	"github.com/xraph/kiln/logger"
)

// Discovery file-naming convention. A component is defined by a
// "<name>.component.yaml" file; an optional sibling "<name>.config.yaml"
// overrides the configuration embedded in the definition itself.
const (
	definitionSuffix = ".component.yaml"
	configSuffix     = ".config.yaml"
)

// Discovered describes one component found by the discovery loader.
type Discovered struct {
	Name           string
	Config         map[string]any
	Implementation any
}

// Discover scans basePath recursively for component definition files of the
// given type and binds each to an implementation from the type's manifest.
// Per-file failures (unreadable configuration, schema violations, missing
// providers) are logged, captured, and skipped so the scan continues; a
// failure to walk the directory itself is fatal to the call. Definitions
// whose configuration is explicitly disabled are skipped silently.
func (e *Engine) Discover(ctx context.Context, componentType, basePath string) (map[string]Discovered, error) {
	e.mu.RLock()
	manifest, exists := e.manifests[componentType]
	e.mu.RUnlock()
	if !exists {
		return nil, errors.ErrConfigError("no manifest registered for type '"+componentType+"'", nil)
	}

	var definitions []string
	walkErr := filepath.WalkDir(basePath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), definitionSuffix) {
			definitions = append(definitions, path)
		}
		return nil
	})
	if walkErr != nil {
		wrapped := errors.ErrDiscoveryError(basePath, walkErr)
		e.captureError(ctx, "discover", wrapped)
		return nil, wrapped
	}

	discovered := make(map[string]Discovered, len(definitions))

	for _, path := range definitions {
		base := strings.TrimSuffix(filepath.Base(path), definitionSuffix)

		config, err := e.loadComponentConfig(path, base)
		if err != nil {
			e.skipDefinition(ctx, path, err)
			continue
		}

		if enabled, ok := config["enabled"].(bool); ok && !enabled {
			e.logger.Debug("component disabled, skipping",
				logger.String("path", path))
			continue
		}

		if err := manifest.Validate(config); err != nil {
			e.skipDefinition(ctx, path, err)
			continue
		}

		implementation, err := manifest.provider(config, base)
		if err != nil {
			e.skipDefinition(ctx, path, err)
			continue
		}

		name := base
		if configured, ok := config["name"].(string); ok && configured != "" {
			name = configured
		}

		discovered[name] = Discovered{
			Name:           name,
			Config:         config,
			Implementation: implementation,
		}

		e.logger.Debug("component discovered",
			logger.String("type", componentType),
			logger.String("component", name),
			logger.String("path", path))
	}

	e.metrics.record("kiln.discovery.components", float64(len(discovered)),
		map[string]string{"type": componentType})

	e.logger.Info("discovery completed",
		logger.String("type", componentType),
		logger.String("path", basePath),
		logger.Int("definitions", len(definitions)),
		logger.Int("discovered", len(discovered)))

	return discovered, nil
}

// loadComponentConfig loads a definition's configuration with the
// documented precedence: sibling config file, then the definition body,
// then the default {name, enabled} configuration.
func (e *Engine) loadComponentConfig(path, base string) (map[string]any, error) {
	sibling := strings.TrimSuffix(path, definitionSuffix) + configSuffix
	data, err := os.ReadFile(sibling)
	if err == nil {
		return parseConfig(sibling, data)
	}
	if !os.IsNotExist(err) {
		// The sibling exists but cannot be read; that is a per-file
		// failure, not an absent override.
		return nil, err
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		config, err := parseConfig(path, data)
		if err != nil {
			return nil, err
		}
		if len(config) > 0 {
			return config, nil
		}
	}

	return map[string]any{"name": base, "enabled": true}, nil
}

func parseConfig(path string, data []byte) (map[string]any, error) {
	config := make(map[string]any)
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.ErrConfigError("failed to parse configuration '"+path+"'", err)
	}
	return config, nil
}

// skipDefinition records a per-file discovery failure without aborting the
// scan.
func (e *Engine) skipDefinition(ctx context.Context, path string, err error) {
	wrapped := errors.ErrDiscoveryError(path, err)
	e.captureError(ctx, "discover", wrapped)
	e.logger.Warn("skipping component definition",
		logger.String("path", path),
		logger.Error(err))
}
