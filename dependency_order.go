package actuator

import (
	"fmt"
	"slices"
)

// resolveDependencies returns modules in initialization order: user modules first,
// then auto-configuration modules. Within each group the order is topological and
// otherwise follows registration order.
func (app *StdApplication) resolveDependencies() ([]string, error) {
	var userModules, autoModules []string
	for _, name := range app.moduleOrder {
		if _, ok := app.moduleRegistry[name].(AutoConfiguration); ok {
			autoModules = append(autoModules, name)
		} else {
			userModules = append(userModules, name)
		}
	}

	graph := make(map[string][]string, len(app.moduleRegistry))
	for _, name := range app.moduleOrder {
		module := app.moduleRegistry[name]
		var deps []string
		if da, ok := module.(DependencyAware); ok {
			deps = append(deps, da.Dependencies()...)
		}
		if ac, ok := module.(AutoConfiguration); ok {
			for _, after := range ac.AutoConfigureAfter() {
				if slices.Contains(autoModules, after) {
					deps = append(deps, after)
				}
			}
		} else {
			for _, dep := range deps {
				if slices.Contains(autoModules, dep) {
					return nil, fmt.Errorf("%w: %s depends on %s", ErrAutoConfigurationDependency, name, dep)
				}
			}
		}
		graph[name] = deps
	}

	var result []string
	visited := make(map[string]bool)
	temp := make(map[string]bool)

	var visit func(string) error
	visit = func(node string) error {
		if temp[node] {
			return fmt.Errorf("%w: %s", ErrCircularDependency, node)
		}
		if visited[node] {
			return nil
		}
		temp[node] = true

		for _, dep := range graph[node] {
			if _, exists := app.moduleRegistry[dep]; !exists {
				return fmt.Errorf("%w: %s depends on non-existent module %s",
					ErrModuleDependencyMissing, node, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		visited[node] = true
		temp[node] = false
		result = append(result, node)
		return nil
	}

	for _, group := range [][]string{userModules, autoModules} {
		for _, node := range group {
			if err := visit(node); err != nil {
				return nil, err
			}
		}
	}

	app.logger.Debug("Module initialization order", "order", result)
	return result, nil
}
