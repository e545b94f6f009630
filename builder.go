package actuator

import (
	"fmt"
)

// Option configures an ApplicationBuilder
type Option func(*ApplicationBuilder) error

// ApplicationBuilder collects options and builds a StdApplication.
type ApplicationBuilder struct {
	logger         Logger
	configProvider ConfigProvider
	modules        []Module
	configFeeders  []Feeder
	feedersSet     bool
	capabilities   *CapabilitySet
	observers      []ObserverFunc
}

// NewApplicationBuilder creates a new application builder
func NewApplicationBuilder() *ApplicationBuilder {
	return &ApplicationBuilder{
		modules:   make([]Module, 0),
		observers: make([]ObserverFunc, 0),
	}
}

// NewApplication creates a new application with the provided options
func NewApplication(opts ...Option) (Application, error) {
	builder := NewApplicationBuilder()

	for _, opt := range opts {
		if err := opt(builder); err != nil {
			return nil, err
		}
	}

	return builder.Build()
}

// Build constructs the application
func (b *ApplicationBuilder) Build() (Application, error) {
	if b.logger == nil {
		return nil, ErrLoggerNotSet
	}
	if b.configProvider == nil {
		b.configProvider = NewStdConfigProvider(&struct{}{})
	}

	app := NewStdApplication(b.configProvider, b.logger).(*StdApplication)

	if b.feedersSet {
		app.SetConfigFeeders(b.configFeeders)
	}
	if b.capabilities != nil {
		app.SetCapabilities(*b.capabilities)
	}

	for i, fn := range b.observers {
		if err := app.RegisterObserver(NewFunctionalObserver(fmt.Sprintf("builder-observer-%d", i), fn)); err != nil {
			return nil, fmt.Errorf("failed to register observer: %w", err)
		}
	}

	for _, module := range b.modules {
		app.RegisterModule(module)
	}

	return app, nil
}

// WithLogger sets the logger for the application
func WithLogger(logger Logger) Option {
	return func(b *ApplicationBuilder) error {
		b.logger = logger
		return nil
	}
}

// WithConfigProvider sets the configuration provider
func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *ApplicationBuilder) error {
		b.configProvider = provider
		return nil
	}
}

// WithModules adds modules to the application
func WithModules(modules ...Module) Option {
	return func(b *ApplicationBuilder) error {
		b.modules = append(b.modules, modules...)
		return nil
	}
}

// WithConfigFeeders replaces the default ConfigFeeders. Feeders are applied in order,
// so later feeders override earlier ones. Calling it with no feeders disables feeding.
func WithConfigFeeders(feeders ...Feeder) Option {
	return func(b *ApplicationBuilder) error {
		b.configFeeders = append(b.configFeeders, feeders...)
		b.feedersSet = true
		return nil
	}
}

// WithCapabilities overrides the linked capability set, e.g.
// LinkedCapabilities().Without(elasticsearch.CapabilityHighLevelClient).
func WithCapabilities(set CapabilitySet) Option {
	return func(b *ApplicationBuilder) error {
		b.capabilities = &set
		return nil
	}
}

// WithObserver registers event handlers that receive every application event
func WithObserver(observers ...ObserverFunc) Option {
	return func(b *ApplicationBuilder) error {
		b.observers = append(b.observers, observers...)
		return nil
	}
}
