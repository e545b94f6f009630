package actuator

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/GoCodeAlone/actuator/registry"
)

const applicationRegistrant = "application"

// Application is the container that modules are registered with and initialised by.
type Application interface {
	Subject

	ConfigProvider() ConfigProvider
	RegisterModule(module Module)
	RegisterConfigSection(section string, cp ConfigProvider)
	ConfigSections() map[string]ConfigProvider
	GetConfigSection(section string) (ConfigProvider, error)
	RegisterService(name string, service any) error
	GetService(name string, target any) error
	Registry() *registry.Registry
	Capabilities() CapabilitySet
	Init() error
	Start() error
	Stop() error
	Run() error
	Logger() Logger
}

// StdApplication represents the core StdApplication container
type StdApplication struct {
	cfgProvider    ConfigProvider
	cfgSections    map[string]ConfigProvider
	configFeeders  []Feeder
	svcRegistry    *registry.Registry
	moduleRegistry ModuleRegistry
	moduleOrder    []string
	capabilities   *CapabilitySet
	logger         Logger
	ctx            context.Context
	cancel         context.CancelFunc

	// set while a module's Init runs so its registrations carry the right origin
	initializing Module
	initOrder    []string
	initialized  bool

	observers     map[string]*observerRegistration
	observerMutex sync.RWMutex
}

// NewStdApplication creates a new application instance
func NewStdApplication(cp ConfigProvider, logger Logger) Application {
	return &StdApplication{
		cfgProvider:    cp,
		cfgSections:    make(map[string]ConfigProvider),
		configFeeders:  ConfigFeeders,
		svcRegistry:    registry.NewRegistry(),
		moduleRegistry: make(ModuleRegistry),
		logger:         logger,
		observers:      make(map[string]*observerRegistration),
	}
}

// ConfigProvider retrieves the application config provider
func (app *StdApplication) ConfigProvider() ConfigProvider {
	return app.cfgProvider
}

// Registry returns the service registry shared by all modules
func (app *StdApplication) Registry() *registry.Registry {
	return app.svcRegistry
}

// Capabilities returns the capabilities considered linked for this application.
// Unless overridden with WithCapabilities it is LinkedCapabilities().
func (app *StdApplication) Capabilities() CapabilitySet {
	if app.capabilities != nil {
		return *app.capabilities
	}
	return LinkedCapabilities()
}

// SetCapabilities replaces the capability set consulted by auto-configuration.
func (app *StdApplication) SetCapabilities(set CapabilitySet) {
	app.capabilities = &set
}

// SetConfigFeeders replaces the feeders used by Init.
func (app *StdApplication) SetConfigFeeders(feeders []Feeder) {
	app.configFeeders = feeders
}

// RegisterModule adds a module to the application. Registering a second module
// under the same name replaces the first.
func (app *StdApplication) RegisterModule(module Module) {
	name := module.Name()
	if _, exists := app.moduleRegistry[name]; !exists {
		app.moduleOrder = append(app.moduleOrder, name)
	}
	app.moduleRegistry[name] = module
}

// RegisterConfigSection registers a configuration section with the application
func (app *StdApplication) RegisterConfigSection(section string, cp ConfigProvider) {
	app.cfgSections[section] = cp
}

// ConfigSections retrieves all registered configuration sections
func (app *StdApplication) ConfigSections() map[string]ConfigProvider {
	return app.cfgSections
}

// GetConfigSection retrieves a configuration section
func (app *StdApplication) GetConfigSection(section string) (ConfigProvider, error) {
	cp, exists := app.cfgSections[section]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigSectionNotFound, section)
	}
	return cp, nil
}

// RegisterService publishes a service in the registry. Services registered while an
// AutoConfiguration module initialises carry the auto-configuration origin; all
// others are user services. A name that is already taken fails with
// *registry.DuplicateRegistrationError.
func (app *StdApplication) RegisterService(name string, service any) error {
	origin, registeredBy := app.currentRegistrant()
	reg := &registry.ServiceRegistration{
		Name:         name,
		Service:      service,
		Origin:       origin,
		RegisteredBy: registeredBy,
	}
	if err := app.svcRegistry.Register(context.Background(), reg); err != nil {
		return fmt.Errorf("register service %q: %w", name, err)
	}

	app.logger.Debug("Registered service", "name", name, "type", reflect.TypeOf(service), "origin", origin, "registeredBy", registeredBy)
	app.emitEvent(context.Background(), EventTypeServiceRegistered, map[string]any{
		"serviceName":  name,
		"serviceType":  fmt.Sprintf("%T", service),
		"origin":       string(origin),
		"registeredBy": registeredBy,
	})
	return nil
}

func (app *StdApplication) currentRegistrant() (registry.Origin, string) {
	if app.initializing == nil {
		return registry.OriginUser, applicationRegistrant
	}
	if _, ok := app.initializing.(AutoConfiguration); ok {
		return registry.OriginAutoConfiguration, app.initializing.Name()
	}
	return registry.OriginUser, app.initializing.Name()
}

// GetService retrieves a service with type assertion
func (app *StdApplication) GetService(name string, target any) error {
	service, err := app.svcRegistry.ResolveByName(context.Background(), name)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr || targetValue.IsNil() {
		return ErrTargetNotPointer
	}

	if !targetValue.Elem().IsValid() {
		return ErrTargetValueInvalid
	}

	serviceType := reflect.TypeOf(service)
	targetType := targetValue.Elem().Type()

	// Direct assignment, including interfaces the service implements
	if serviceType.AssignableTo(targetType) {
		targetValue.Elem().Set(reflect.ValueOf(service))
		return nil
	}
	// Pointer dereference into a value target
	if serviceType.Kind() == reflect.Ptr && serviceType.Elem().AssignableTo(targetType) {
		targetValue.Elem().Set(reflect.ValueOf(service).Elem())
		return nil
	}

	return fmt.Errorf("%w: service '%s' of type %s cannot be assigned to %s",
		ErrServiceIncompatible, name, serviceType, targetType)
}

// Init registers module configs, feeds them, then initialises modules: user modules
// first in dependency order, auto-configuration modules afterwards.
func (app *StdApplication) Init() error {
	if app.initialized {
		return ErrAlreadyInitialized
	}

	for _, name := range app.moduleOrder {
		if err := app.registerModuleConfig(name); err != nil {
			return err
		}
	}

	if err := loadAppConfig(app); err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}
	app.emitEvent(context.Background(), EventTypeConfigLoaded, map[string]any{
		"sections": len(app.cfgSections),
	})

	moduleOrder, err := app.resolveDependencies()
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}

	for _, moduleName := range moduleOrder {
		if err = app.initModule(moduleName); err != nil {
			app.emitEvent(context.Background(), EventTypeApplicationFailed, map[string]any{
				"phase":  "init",
				"module": moduleName,
				"error":  err.Error(),
			})
			return err
		}
	}

	app.initOrder = moduleOrder
	app.initialized = true
	return nil
}

// registerModuleConfig runs RegisterConfig with the module marked as the current
// registrant, so services it publishes early carry its origin.
func (app *StdApplication) registerModuleConfig(name string) error {
	module := app.moduleRegistry[name]
	configurableModule, ok := module.(Configurable)
	if !ok {
		app.logger.Debug("Module does not implement Configurable, skipping", "module", name)
		return nil
	}

	app.initializing = module
	defer func() { app.initializing = nil }()

	if err := configurableModule.RegisterConfig(app); err != nil {
		return fmt.Errorf("failed to register config for module %s: %w", name, err)
	}
	return nil
}

func (app *StdApplication) initModule(moduleName string) error {
	module := app.moduleRegistry[moduleName]

	svcAware, isServiceAware := module.(ServiceAware)
	if isServiceAware {
		for _, dep := range svcAware.RequiresServices() {
			if !dep.Required {
				continue
			}
			if _, exists := app.svcRegistry.Lookup(dep.Name); !exists {
				return fmt.Errorf("%w: %s requires %s", ErrRequiredServiceNotFound, moduleName, dep.Name)
			}
		}
	}

	app.initializing = module
	defer func() { app.initializing = nil }()

	if err := module.Init(app); err != nil {
		return fmt.Errorf("failed to initialize module '%s': %w", moduleName, err)
	}

	if isServiceAware {
		for _, svc := range svcAware.ProvidesServices() {
			if err := app.RegisterService(svc.Name, svc.Instance); err != nil {
				return fmt.Errorf("module '%s' failed to register service: %w", moduleName, err)
			}
		}
	}

	_, auto := module.(AutoConfiguration)
	app.logger.Info("Initialized module", "module", moduleName, "type", fmt.Sprintf("%T", module), "autoConfiguration", auto)
	app.emitEvent(context.Background(), EventTypeModuleInitialized, map[string]any{
		"moduleName":        moduleName,
		"autoConfiguration": auto,
	})
	return nil
}

// Start starts the application
func (app *StdApplication) Start() error {
	if !app.initialized {
		return ErrNotInitialized
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.ctx = ctx
	app.cancel = cancel

	for _, name := range app.initOrder {
		startableModule, ok := app.moduleRegistry[name].(Startable)
		if !ok {
			continue
		}
		app.logger.Info("Starting module", "module", name)
		if err := startableModule.Start(ctx); err != nil {
			return fmt.Errorf("failed to start module %s: %w", name, err)
		}
		app.emitEvent(ctx, EventTypeModuleStarted, map[string]any{"moduleName": name})
	}

	app.emitEvent(ctx, EventTypeApplicationStarted, nil)
	return nil
}

// Stop stops the application
func (app *StdApplication) Stop() error {
	modules := slices.Clone(app.initOrder)
	slices.Reverse(modules)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var lastErr error
	for _, name := range modules {
		stoppableModule, ok := app.moduleRegistry[name].(Stoppable)
		if !ok {
			continue
		}
		app.logger.Info("Stopping module", "module", name)
		if err := stoppableModule.Stop(ctx); err != nil {
			app.logger.Error("Error stopping module", "module", name, "error", err)
			lastErr = err
			continue
		}
		app.emitEvent(ctx, EventTypeModuleStopped, map[string]any{"moduleName": name})
	}

	if app.cancel != nil {
		app.cancel()
	}

	app.emitEvent(ctx, EventTypeApplicationStopped, nil)
	return lastErr
}

// Run starts the application and blocks until termination
func (app *StdApplication) Run() error {
	if err := app.Init(); err != nil {
		return err
	}

	if err := app.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	app.logger.Info("Received signal, shutting down", "signal", sig)

	return app.Stop()
}

// Logger represents a logger
func (app *StdApplication) Logger() Logger {
	return app.logger
}
