// Package endpoint exposes the health of every registered actuator.HealthProvider over
// HTTP.
//
// The module is an auto-configuration that runs after the health contributors. It
// collects providers from the service registry into an actuator.AggregateHealthService
// and publishes a chi router serving:
//
//	GET {base_path}/health         aggregated health of all providers
//	GET {base_path}/health/{name}  health of the provider registered as name
//
// Unhealthy readiness answers 503. When an address is configured the module serves the
// router itself; a refresh schedule keeps the cached result warm and logs transitions.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"

	"github.com/GoCodeAlone/actuator"
)

// ModuleName is the name of the endpoint module
const ModuleName = "endpoint"

// Service names published by the module
const (
	ServiceRouter = "actuator.router"
	ServiceHealth = "actuator.health"
)

var healthProviderType = reflect.TypeOf((*actuator.HealthProvider)(nil)).Elem()

// Module serves aggregated health over HTTP.
type Module struct {
	config     *Config
	logger     actuator.Logger
	aggregator *actuator.AggregateHealthService
	router     chi.Router

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	cron     *cron.Cron
	last     actuator.HealthStatus
	hasLast  bool
}

var (
	_ actuator.AutoConfiguration = (*Module)(nil)
	_ actuator.Configurable      = (*Module)(nil)
	_ actuator.ServiceAware      = (*Module)(nil)
	_ actuator.Startable         = (*Module)(nil)
	_ actuator.Stoppable         = (*Module)(nil)
)

// NewModule creates the endpoint module
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return ModuleName
}

// AutoConfigureAfter runs the module once health contributors are registered.
func (m *Module) AutoConfigureAfter() []string {
	return []string{"eshealth"}
}

// RegisterConfig registers the management.endpoint.health section
func (m *Module) RegisterConfig(app actuator.Application) error {
	app.RegisterConfigSection(ConfigSection, actuator.NewStdConfigProvider(DefaultConfig()))
	return nil
}

// Init builds the aggregator from the registry's health providers and the router.
func (m *Module) Init(app actuator.Application) error {
	m.logger = app.Logger()

	cp, err := app.GetConfigSection(ConfigSection)
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", ConfigSection, err)
	}
	m.config = cp.GetConfig().(*Config)

	m.aggregator = actuator.NewAggregateHealthServiceWithConfig(actuator.AggregateHealthServiceConfig{
		CacheTTL:       m.config.CacheTTL,
		DefaultTimeout: m.config.Timeout,
		CacheEnabled:   m.config.CacheTTL > 0,
	})
	m.aggregator.SetEventSubject(app)

	entries, err := app.Registry().ResolveAllAssignableTo(context.Background(), healthProviderType)
	if err != nil {
		return fmt.Errorf("failed to resolve health providers: %w", err)
	}
	for _, entry := range entries {
		if err = m.aggregator.RegisterProvider(entry.Name(), entry.Service().(actuator.HealthProvider), false); err != nil {
			return err
		}
	}
	m.logger.Info("Health endpoint providers", "providers", m.aggregator.ProviderNames(), "basePath", m.config.basePath())

	m.router = m.newRouter()
	return nil
}

// ProvidesServices publishes the router and the aggregator
func (m *Module) ProvidesServices() []actuator.ServiceProvider {
	return []actuator.ServiceProvider{
		{
			Name:        ServiceRouter,
			Description: "chi router serving the health endpoint",
			Instance:    m.router,
		},
		{
			Name:        ServiceHealth,
			Description: "aggregated health of registered providers",
			Instance:    m.aggregator,
		},
	}
}

// RequiresServices returns nil: providers are discovered, not required.
func (m *Module) RequiresServices() []actuator.ServiceDependency {
	return nil
}

// Start schedules refreshes and begins serving when an address is configured. The
// schedule is set up first so a failure leaves nothing running.
func (m *Module) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.Address != "" && m.server != nil {
		return ErrServerStarted
	}

	var scheduler *cron.Cron
	if m.config.RefreshSchedule != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(m.config.RefreshSchedule, func() { m.refresh(context.Background()) }); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}
	}

	if m.config.Address != "" {
		listener, err := net.Listen("tcp", m.config.Address)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", m.config.Address, err)
		}
		m.listener = listener
		m.server = &http.Server{Handler: m.router, ReadHeaderTimeout: m.config.Timeout}

		go func(server *http.Server, listener net.Listener) {
			m.logger.Info("Starting health endpoint", "address", listener.Addr().String())
			if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				m.logger.Error("Health endpoint stopped", "error", err)
			}
		}(m.server, listener)
	}

	if scheduler != nil {
		m.cron = scheduler
		m.cron.Start()
		m.logger.Info("Scheduled health refresh", "schedule", m.config.RefreshSchedule)
	}
	return nil
}

// Stop shuts the server down and stops scheduled refreshes.
func (m *Module) Stop(ctx context.Context) error {
	m.mu.Lock()
	scheduler, server := m.cron, m.server
	m.cron, m.server, m.listener = nil, nil, nil
	m.mu.Unlock()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if server == nil {
		return nil
	}

	m.logger.Info("Stopping health endpoint", "timeout", m.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(ctx, m.config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down health endpoint: %w", err)
	}
	return nil
}

// Addr returns the address the server listens on, or nil when not serving.
func (m *Module) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

// Router returns the health router
func (m *Module) Router() chi.Router {
	return m.router
}

// Aggregator returns the health aggregator
func (m *Module) Aggregator() *actuator.AggregateHealthService {
	return m.aggregator
}

// refresh collects health and logs when the overall status changes.
func (m *Module) refresh(ctx context.Context) {
	health, err := m.aggregator.Refresh(ctx)
	if err != nil {
		m.logger.Error("Scheduled health refresh failed", "error", err)
		return
	}

	m.mu.Lock()
	previous, seen := m.last, m.hasLast
	m.last, m.hasLast = health.Health, true
	m.mu.Unlock()

	if seen && previous != health.Health {
		m.logger.Warn("Health status changed", "previous", previous.String(), "current", health.Health.String())
		return
	}
	m.logger.Debug("Health refreshed", "status", health.Health.String())
}
