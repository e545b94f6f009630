// Package elasticsearch provides Elasticsearch clients and their auto-configuration.
//
// Two client shapes exist. RestClient is the low-level client that sends raw requests.
// HighLevelClient is the legacy shape that offers typed calls and exposes the
// RestClient it runs on. Each shape is a capability; an application built with a
// capability removed behaves as if that client type were not available.
//
// ClientModule is an auto-configuration: it publishes clients built from the
// "elasticsearch" config section unless an application module already published one.
// Its RestClientBuilder is published while configs are registered, so application
// modules can build clients from it in their own Init.
package elasticsearch

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/GoCodeAlone/actuator"
	"github.com/GoCodeAlone/actuator/registry"
)

// ModuleName is the name of the client auto-configuration module
const ModuleName = "elasticsearch"

// ConfigSection is the configuration section read by ClientModule
const ConfigSection = "elasticsearch"

// Service names used by the auto-configured clients
const (
	ServiceRestClient        = "elasticsearchRestClient"
	ServiceHighLevelClient   = "elasticsearchHighLevelClient"
	ServiceRestClientBuilder = "elasticsearchRestClientBuilder"
)

// Capability names for the two client shapes
const (
	CapabilityRestClient      = "elasticsearch.rest-client"
	CapabilityHighLevelClient = "elasticsearch.high-level-client"
)

func init() {
	actuator.DeclareCapability(CapabilityRestClient)
	actuator.DeclareCapability(CapabilityHighLevelClient)
}

var (
	restClientType      = reflect.TypeOf((*RestClient)(nil))
	highLevelClientType = reflect.TypeOf((*HighLevelClient)(nil))
)

// ClientModule auto-configures Elasticsearch clients.
type ClientModule struct {
	config    *Config
	logger    actuator.Logger
	transport http.RoundTripper
	builder   *RestClientBuilder

	restClient      *RestClient
	highLevelClient *HighLevelClient
}

var (
	_ actuator.AutoConfiguration = (*ClientModule)(nil)
	_ actuator.Configurable      = (*ClientModule)(nil)
	_ actuator.Stoppable         = (*ClientModule)(nil)
)

// ModuleOption customises a ClientModule
type ModuleOption func(*ClientModule)

// WithHTTPTransport makes auto-configured clients use rt instead of a transport
// derived from the config.
func WithHTTPTransport(rt http.RoundTripper) ModuleOption {
	return func(m *ClientModule) {
		m.transport = rt
	}
}

// NewClientModule creates the client auto-configuration module
func NewClientModule(opts ...ModuleOption) *ClientModule {
	m := &ClientModule{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name
func (m *ClientModule) Name() string {
	return ModuleName
}

// AutoConfigureAfter returns nil: client configuration has no prerequisites.
func (m *ClientModule) AutoConfigureAfter() []string {
	return nil
}

// RegisterConfig registers the elasticsearch section with its defaults and publishes
// the RestClientBuilder reading from it.
func (m *ClientModule) RegisterConfig(app actuator.Application) error {
	m.config = DefaultConfig()
	app.RegisterConfigSection(ConfigSection, actuator.NewStdConfigProvider(m.config))

	m.builder = NewRestClientBuilder(m.config).WithLogger(app.Logger())
	if m.transport != nil {
		m.builder.WithTransport(m.transport)
	}
	return app.RegisterService(ServiceRestClientBuilder, m.builder)
}

// Init publishes, unless an application module already published a client, the
// clients whose capability is available.
func (m *ClientModule) Init(app actuator.Application) error {
	m.logger = app.Logger()

	cp, err := app.GetConfigSection(ConfigSection)
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", ConfigSection, err)
	}
	m.config = cp.GetConfig().(*Config)

	userRest, userHighLevel := UserClients(app.Registry())
	if userRest != nil || userHighLevel != nil {
		m.logger.Info("Elasticsearch client supplied by application, skipping auto-configuration",
			"restClient", userRest != nil, "highLevelClient", userHighLevel != nil)
		return nil
	}

	caps := app.Capabilities()
	hasRest := caps.Has(CapabilityRestClient)
	hasHighLevel := caps.Has(CapabilityHighLevelClient)

	switch {
	case hasHighLevel:
		if m.highLevelClient, err = m.builder.BuildHighLevel(); err != nil {
			return err
		}
		if err = app.RegisterService(ServiceHighLevelClient, m.highLevelClient); err != nil {
			return err
		}
		if hasRest {
			m.restClient = m.highLevelClient.LowLevelClient()
		}
	case hasRest:
		if m.restClient, err = m.builder.Build(); err != nil {
			return err
		}
	default:
		m.logger.Info("No Elasticsearch client type available, skipping auto-configuration")
		return nil
	}

	if m.restClient != nil {
		if err = app.RegisterService(ServiceRestClient, m.restClient); err != nil {
			return err
		}
	}

	m.logger.Info("Auto-configured Elasticsearch clients",
		"addresses", m.config.Addresses(),
		"restClient", m.restClient != nil,
		"highLevelClient", m.highLevelClient != nil)
	return nil
}

// Stop releases idle connections held by the builder's transport
func (m *ClientModule) Stop(context.Context) error {
	if m.builder != nil {
		m.builder.CloseIdleConnections()
	}
	return nil
}

// Builder returns the published RestClientBuilder, nil before RegisterConfig
func (m *ClientModule) Builder() *RestClientBuilder {
	return m.builder
}

// RestClient returns the auto-configured low-level client, if any
func (m *ClientModule) RestClient() *RestClient {
	return m.restClient
}

// HighLevelClient returns the auto-configured legacy client, if any
func (m *ClientModule) HighLevelClient() *HighLevelClient {
	return m.highLevelClient
}

// UserClients returns the first RestClient and HighLevelClient published with user
// origin, by registration order.
func UserClients(reg *registry.Registry) (*RestClient, *HighLevelClient) {
	return clientsWithOrigin(reg, registry.OriginUser)
}

// AutoConfiguredClients returns the clients published by auto-configuration.
func AutoConfiguredClients(reg *registry.Registry) (*RestClient, *HighLevelClient) {
	return clientsWithOrigin(reg, registry.OriginAutoConfiguration)
}

func clientsWithOrigin(reg *registry.Registry, origin registry.Origin) (*RestClient, *HighLevelClient) {
	ctx := context.Background()
	var rest *RestClient
	var highLevel *HighLevelClient

	if entries, _ := reg.ResolveAllAssignableTo(ctx, restClientType); len(entries) > 0 {
		for _, entry := range entries {
			if entry.Registration.Origin == origin {
				rest = entry.Service().(*RestClient)
				break
			}
		}
	}
	if entries, _ := reg.ResolveAllAssignableTo(ctx, highLevelClientType); len(entries) > 0 {
		for _, entry := range entries {
			if entry.Registration.Origin == origin {
				highLevel = entry.Service().(*HighLevelClient)
				break
			}
		}
	}
	return rest, highLevel
}
