// Package eshealth registers the Elasticsearch health contributor.
//
// At most one contributor is registered, under ContributorName. Which one depends on
// the management.health.elasticsearch.enabled switch, on which Elasticsearch client
// types are available and on clients the application published itself:
//
//  1. disabled: nothing
//  2. application HighLevelClient without an application RestClient: legacy-client-based
//  3. application RestClient: client-based, bound to it
//  4. no client type available: nothing
//  5. RestClient type available: client-based, bound to the auto-configured RestClient
//  6. only the HighLevelClient type: client-based, bound to the auto-configured
//     HighLevelClient's low-level connection
//
// The first matching row wins. Evaluate computes the decision without side effects and
// Registrar applies it to a registry.
package eshealth

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/actuator"
	"github.com/GoCodeAlone/actuator/modules/elasticsearch"
)

// ModuleName is the name of the contributor auto-configuration module
const ModuleName = "eshealth"

// Module is the auto-configuration that runs the Registrar once clients are in place.
type Module struct {
	config    *Config
	registrar *Registrar
	outcome   Outcome
}

var (
	_ actuator.AutoConfiguration = (*Module)(nil)
	_ actuator.Configurable      = (*Module)(nil)
)

// NewModule creates the contributor auto-configuration module
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return ModuleName
}

// AutoConfigureAfter orders the module after client auto-configuration.
func (m *Module) AutoConfigureAfter() []string {
	return []string{elasticsearch.ModuleName}
}

// RegisterConfig registers the management.health.elasticsearch section
func (m *Module) RegisterConfig(app actuator.Application) error {
	app.RegisterConfigSection(ConfigSection, actuator.NewStdConfigProvider(DefaultConfig()))
	return nil
}

// Init evaluates the conditions visible to app and registers the contributor.
func (m *Module) Init(app actuator.Application) error {
	cp, err := app.GetConfigSection(ConfigSection)
	if err != nil {
		return fmt.Errorf("failed to get config section '%s': %w", ConfigSection, err)
	}
	m.config = cp.GetConfig().(*Config)

	conditions := ConditionsFor(app, m.config)
	userClient, userLegacy := elasticsearch.UserClients(app.Registry())

	m.registrar = NewRegistrar(app.Registry(), ModuleName, app.Logger()).WithEventSubject(app)
	m.outcome, err = m.registrar.EvaluateAndRegister(context.Background(), conditions, Overrides{
		Client: userClient,
		Legacy: userLegacy,
	})
	return err
}

// Outcome returns the result of the evaluation made during Init.
func (m *Module) Outcome() Outcome {
	return m.outcome
}

// ConditionsFor derives Conditions from the application's capabilities and cfg.
func ConditionsFor(app actuator.Application, cfg *Config) Conditions {
	caps := app.Capabilities()
	return Conditions{
		FeatureEnabled:          cfg.Enabled,
		ClientTypePresent:       caps.Has(elasticsearch.CapabilityRestClient),
		LegacyClientTypePresent: caps.Has(elasticsearch.CapabilityHighLevelClient),
	}
}
