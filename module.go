// Package actuator provides a small modular application core for health-reporting
// services: modules, a name-keyed service registry with duplicate detection,
// configuration feeding, capability checks and health aggregation.
//
// An application is composed of modules. User modules are initialised first, in
// dependency order. Modules implementing AutoConfiguration are initialised afterwards,
// so they can inspect what user modules already published and back off:
//
//	app, err := actuator.NewApplication(
//		actuator.WithLogger(slog.Default()),
//		actuator.WithModules(elasticsearch.NewClientModule(), eshealth.NewModule()),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//		log.Fatal(err)
//	}
package actuator

import "context"

// Module represents a registrable component in the application.
// All modules must implement this interface to be managed by the application.
type Module interface {
	// Name returns the unique identifier for this module.
	// The name is used for dependency resolution and as the RegisteredBy value of
	// every service the module publishes.
	Name() string

	// Init initializes the module with the application context.
	// This method is called during application initialization after
	// all modules have been registered and their configurations loaded.
	//
	// Init is called in dependency order - modules that depend on others
	// are initialized after their dependencies.
	Init(app Application) error
}

// Configurable is an interface for modules that can have configuration.
//
// RegisterConfig should register a section whose struct already carries the
// module's defaults; feeders only overwrite keys present in their source.
//
// Example:
//
//	func (m *MyModule) RegisterConfig(app Application) error {
//		app.RegisterConfigSection("my.section", actuator.NewStdConfigProvider(&Config{Enabled: true}))
//		return nil
//	}
type Configurable interface {
	RegisterConfig(app Application) error
}

// DependencyAware is an interface for modules that depend on other modules.
// Dependencies are resolved by module name and must be exact matches.
// Circular dependencies will cause initialization to fail.
type DependencyAware interface {
	// Dependencies returns names of other modules this module depends on.
	Dependencies() []string
}

// ServiceAware is an interface for modules that can provide or consume services.
type ServiceAware interface {
	// ProvidesServices returns a list of services provided by this module.
	// These services are registered after the module's Init returns.
	ProvidesServices() []ServiceProvider

	// RequiresServices returns a list of services required by this module.
	// Required services must be present in the registry before Init is called.
	RequiresServices() []ServiceDependency
}

// Startable is an interface for modules that need to perform startup operations.
// Start is called after every module has been initialized, in initialization order.
type Startable interface {
	Start(ctx context.Context) error
}

// Stoppable is an interface for modules that need to perform cleanup operations.
// Stop is called in reverse initialization order. The context carries the
// shutdown timeout.
type Stoppable interface {
	Stop(ctx context.Context) error
}

// AutoConfiguration marks a module that supplies defaults. Auto-configuration modules
// are initialised after every user module, so anything a user module registered is
// visible to them. Services they register are recorded with the auto-configuration
// origin, which lets later auto-configurations tell user overrides from defaults.
type AutoConfiguration interface {
	Module

	// AutoConfigureAfter names auto-configuration modules that must be initialised
	// before this one. Names that are not registered are ignored.
	AutoConfigureAfter() []string
}

// ModuleRegistry represents a registry of modules keyed by their names.
type ModuleRegistry map[string]Module
