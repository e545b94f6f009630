package eshealth

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoCodeAlone/actuator"
	"github.com/GoCodeAlone/actuator/modules/elasticsearch"
	"github.com/GoCodeAlone/actuator/registry"
)

// ContributorName is the registry name of the Elasticsearch health contributor.
const ContributorName = "elasticsearchHealthContributor"

// Metadata keys recorded on the contributor's registration
const (
	MetadataVariant = "variant"
	MetadataSource  = "source"
	MetadataRule    = "rule"
)

// Outcome describes what EvaluateAndRegister did.
type Outcome struct {
	Decision Decision

	// Contributor is the entry under ContributorName after evaluation, nil when
	// nothing was registered.
	Contributor actuator.HealthProvider

	// Reused is set when an identical contributor was already registered.
	Reused bool
}

// Registered reports whether a contributor is in place.
func (o Outcome) Registered() bool {
	return o.Contributor != nil
}

// Registrar evaluates conditions and places at most one contributor in a registry.
// Auto-configured clients are looked up in the same registry.
type Registrar struct {
	registry     *registry.Registry
	registeredBy string
	logger       actuator.Logger
	subject      actuator.Subject
}

// NewRegistrar creates a Registrar writing to reg. registeredBy is recorded on the
// registration.
func NewRegistrar(reg *registry.Registry, registeredBy string, logger actuator.Logger) *Registrar {
	return &Registrar{registry: reg, registeredBy: registeredBy, logger: logger}
}

// WithEventSubject makes the registrar emit registration events to subject.
func (r *Registrar) WithEventSubject(subject actuator.Subject) *Registrar {
	r.subject = subject
	return r
}

// EvaluateAndRegister applies Evaluate and registers the selected contributor.
//
// Running again with the same inputs against the same registry changes nothing and
// returns the same outcome. Any other attempt to fill an occupied name fails with a
// *registry.DuplicateRegistrationError. When the decision needs an auto-configured
// client that was never published, nothing is registered.
func (r *Registrar) EvaluateAndRegister(ctx context.Context, conditions Conditions, overrides Overrides) (Outcome, error) {
	if r.registry == nil {
		return Outcome{}, ErrRegistryNil
	}

	decision := Evaluate(conditions, overrides)
	outcome := Outcome{Decision: decision}

	if !decision.Registers() {
		r.skipped(ctx, decision, decision.Reason)
		return outcome, nil
	}

	candidate, err := r.candidate(decision, overrides)
	if err != nil {
		r.logger.Warn("Elasticsearch health contributor not registered",
			"rule", decision.Rule.String(), "variant", decision.Variant.String(), "error", err)
		outcome.Decision.Variant = VariantNone
		r.emit(ctx, EventTypeContributorSkipped, outcome.Decision, err.Error())
		return outcome, nil
	}

	err = r.registry.Register(ctx, &registry.ServiceRegistration{
		Name:         ContributorName,
		Service:      candidate,
		Origin:       registry.OriginAutoConfiguration,
		RegisteredBy: r.registeredBy,
		Metadata: map[string]any{
			MetadataVariant: decision.Variant.String(),
			MetadataSource:  decision.Source.String(),
			MetadataRule:    int(decision.Rule),
		},
	})
	if err != nil {
		var dup *registry.DuplicateRegistrationError
		if errors.As(err, &dup) && sameContributor(dup.Existing.Service, candidate) {
			r.logger.Debug("Elasticsearch health contributor already registered",
				"name", ContributorName, "rule", decision.Rule.String(), "variant", decision.Variant.String())
			outcome.Contributor = dup.Existing.Service.(actuator.HealthProvider)
			outcome.Reused = true
			return outcome, nil
		}
		return outcome, fmt.Errorf("register %s: %w", ContributorName, err)
	}

	outcome.Contributor = candidate
	r.logger.Info("Registered Elasticsearch health contributor",
		"name", ContributorName,
		"rule", decision.Rule.String(),
		"variant", decision.Variant.String(),
		"source", decision.Source.String())
	r.emit(ctx, EventTypeContributorRegistered, decision, decision.Reason)
	return outcome, nil
}

// candidate creates the contributor the decision selects, bound to its client.
func (r *Registrar) candidate(decision Decision, overrides Overrides) (contributor, error) {
	switch decision.Rule {
	case RuleLegacyOverride:
		return NewLegacyClientHealthIndicator(overrides.Legacy)
	case RuleClientOverride:
		return NewClientHealthIndicator(overrides.Client)
	}

	autoClient, autoLegacy := elasticsearch.AutoConfiguredClients(r.registry)
	switch decision.Rule {
	case RuleAutoConfiguredClient:
		if autoClient == nil {
			return nil, fmt.Errorf("%w: no auto-configured RestClient", ErrClientNil)
		}
		return NewClientHealthIndicator(autoClient)
	case RuleAutoConfiguredLegacyConnection:
		if autoLegacy == nil {
			return nil, fmt.Errorf("%w: no auto-configured HighLevelClient", ErrClientNil)
		}
		return NewClientHealthIndicator(autoLegacy.LowLevelClient())
	default:
		return nil, fmt.Errorf("%w: rule %s selects no client", ErrClientNil, decision.Rule)
	}
}

func sameContributor(existing any, candidate contributor) bool {
	c, ok := existing.(contributor)
	return ok && c.variant() == candidate.variant() && c.target() == candidate.target()
}

func (r *Registrar) skipped(ctx context.Context, decision Decision, reason string) {
	r.logger.Info("Elasticsearch health contributor not registered",
		"rule", decision.Rule.String(), "reason", reason)
	r.emit(ctx, EventTypeContributorSkipped, decision, reason)
}

func (r *Registrar) emit(ctx context.Context, eventType string, decision Decision, reason string) {
	if err := r.emitEvent(ctx, eventType, decision, reason); err != nil && !errors.Is(err, ErrNoSubjectForEventEmission) {
		r.logger.Debug("Failed to emit event", "type", eventType, "error", err)
	}
}

func (r *Registrar) emitEvent(ctx context.Context, eventType string, decision Decision, reason string) error {
	if r.subject == nil {
		return ErrNoSubjectForEventEmission
	}
	event := actuator.NewCloudEvent(eventType, r.registeredBy, map[string]any{
		"name":    ContributorName,
		"rule":    decision.Rule.String(),
		"variant": decision.Variant.String(),
		"source":  decision.Source.String(),
		"reason":  reason,
	}, nil)
	if err := r.subject.NotifyObservers(ctx, event); err != nil {
		return fmt.Errorf("failed to notify observers: %w", err)
	}
	return nil
}
