package kiln

import "github.com/xraph/kiln/errors"

// DependencyOrder computes a linear initialization order over all registered
// components via depth-first topological sort. Traversal is seeded by the
// configured priority names so foundational collaborators are visited first,
// then remaining components in registration order. Every component is
// guaranteed to appear after all of its declared dependencies.
//
// A dependency name with no matching registration is a missing-dependency
// error; a path that revisits a node currently being visited is a
// circular-dependency error naming the full cycle.
func (e *Engine) DependencyOrder() ([]string, error) {
	e.mu.RLock()
	dependencies := make(map[string][]string, len(e.registrations))
	for name, registration := range e.registrations {
		dependencies[name] = registration.Dependencies
	}
	seeds := make([]string, 0, len(e.priority)+len(e.order))
	seeds = append(seeds, e.priority...)
	seeds = append(seeds, e.order...)
	e.mu.RUnlock()

	order := make([]string, 0, len(dependencies))
	visited := make(map[string]bool, len(dependencies))
	visiting := make(map[string]bool, len(dependencies))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if visited[name] {
			return nil
		}
		if visiting[name] {
			return errors.ErrCircularDependency(cyclePath(path, name))
		}

		visiting[name] = true
		path = append(path, name)

		for _, dependency := range dependencies[name] {
			if _, registered := dependencies[dependency]; !registered {
				return errors.ErrDependencyNotFound(name, dependency)
			}
			if err := visit(dependency, path); err != nil {
				return err
			}
		}

		visiting[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range seeds {
		if _, registered := dependencies[name]; !registered {
			// Priority entries for components that were never registered are
			// skipped rather than rejected.
			continue
		}
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// cyclePath trims the traversal path to the cycle itself and closes it with
// the revisited node.
func cyclePath(path []string, name string) []string {
	start := 0
	for i, node := range path {
		if node == name {
			start = i
			break
		}
	}
	cycle := append([]string(nil), path[start:]...)
	return append(cycle, name)
}
