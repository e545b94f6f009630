// Package testutil holds helpers for tests that build whole applications: a
// ContextRunner that initialises an application from modules and property values,
// a recording logger and an Elasticsearch stand-in server.
package testutil

import (
	"context"
	"slices"
	"testing"

	"github.com/GoCodeAlone/actuator"
	"github.com/GoCodeAlone/actuator/feeders"
	"github.com/GoCodeAlone/actuator/registry"
)

// ContextRunner builds and initialises an application for a single assertion
// callback. Every With method returns a new runner, so a base runner can be shared
// across test cases. Module factories are called on each Run.
type ContextRunner struct {
	autoConfigurations []func() actuator.Module
	userModules        []func() actuator.Module
	properties         []string
	hiddenCapabilities []string
	extraFeeders       []actuator.Feeder
}

// NewContextRunner returns an empty runner.
func NewContextRunner() ContextRunner {
	return ContextRunner{}
}

// WithAutoConfiguration adds auto-configuration module factories.
func (r ContextRunner) WithAutoConfiguration(factories ...func() actuator.Module) ContextRunner {
	r.autoConfigurations = append(slices.Clone(r.autoConfigurations), factories...)
	return r
}

// WithUserModules adds application module factories.
func (r ContextRunner) WithUserModules(factories ...func() actuator.Module) ContextRunner {
	r.userModules = append(slices.Clone(r.userModules), factories...)
	return r
}

// WithPropertyValues adds "key=value" properties, e.g.
// "management.health.elasticsearch.enabled=false".
func (r ContextRunner) WithPropertyValues(pairs ...string) ContextRunner {
	r.properties = append(slices.Clone(r.properties), pairs...)
	return r
}

// WithoutCapabilities hides capabilities from the application, as if the packages
// providing them were not linked.
func (r ContextRunner) WithoutCapabilities(names ...string) ContextRunner {
	r.hiddenCapabilities = append(slices.Clone(r.hiddenCapabilities), names...)
	return r
}

// WithFeeders adds feeders applied after the property values.
func (r ContextRunner) WithFeeders(fs ...actuator.Feeder) ContextRunner {
	r.extraFeeders = append(slices.Clone(r.extraFeeders), fs...)
	return r
}

// RunContext is what an assertion callback receives.
type RunContext struct {
	App    actuator.Application
	Logger *RecordingLogger

	// Err is the error returned by Init, or by building the application.
	Err error
}

// Registry returns the application's service registry.
func (c *RunContext) Registry() *registry.Registry {
	return c.App.Registry()
}

// HasService reports whether name is registered.
func (c *RunContext) HasService(name string) bool {
	_, ok := c.App.Registry().Lookup(name)
	return ok
}

// Service returns the instance registered under name, or nil.
func (c *RunContext) Service(name string) any {
	entry, ok := c.App.Registry().Lookup(name)
	if !ok {
		return nil
	}
	return entry.Service()
}

// ServicesOfType returns every registered instance of type T, in registration order.
func ServicesOfType[T any](c *RunContext) []T {
	var out []T
	entries, _ := c.App.Registry().List(context.Background())
	for _, entry := range entries {
		if svc, ok := entry.Service().(T); ok {
			out = append(out, svc)
		}
	}
	return out
}

// Run builds an application from the runner's modules and configuration, runs Init
// and passes the result to assertions. User modules are registered before
// auto-configuration, although Init order does not depend on it.
func (r ContextRunner) Run(t *testing.T, assertions func(t *testing.T, rc *RunContext)) {
	t.Helper()

	logger := &RecordingLogger{}
	rc := &RunContext{Logger: logger}

	props, err := feeders.NewPropertiesFeeder(r.properties...)
	if err != nil {
		rc.Err = err
		assertions(t, rc)
		return
	}

	modules := make([]actuator.Module, 0, len(r.userModules)+len(r.autoConfigurations))
	for _, factory := range r.userModules {
		modules = append(modules, factory())
	}
	for _, factory := range r.autoConfigurations {
		modules = append(modules, factory())
	}

	app, err := actuator.NewApplication(
		actuator.WithLogger(logger),
		actuator.WithConfigFeeders(append([]actuator.Feeder{props}, r.extraFeeders...)...),
		actuator.WithCapabilities(actuator.LinkedCapabilities().Without(r.hiddenCapabilities...)),
		actuator.WithModules(modules...),
	)
	if err != nil {
		rc.Err = err
		assertions(t, rc)
		return
	}

	rc.App = app
	rc.Err = app.Init()
	assertions(t, rc)
}
