package eshealth

import (
	"fmt"

	"github.com/GoCodeAlone/actuator/modules/elasticsearch"
)

// Variant is the kind of contributor an evaluation selects.
type Variant int

const (
	// VariantNone means no contributor is registered
	VariantNone Variant = iota
	// VariantClientBased checks the cluster through a low-level RestClient
	VariantClientBased
	// VariantLegacyClientBased checks the cluster through a HighLevelClient
	VariantLegacyClientBased
)

func (v Variant) String() string {
	switch v {
	case VariantClientBased:
		return "client-based"
	case VariantLegacyClientBased:
		return "legacy-client-based"
	default:
		return "none"
	}
}

// Source tells where the client bound to a contributor comes from.
type Source int

const (
	SourceNone Source = iota
	SourceOverride
	SourceAutoConfigured
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceAutoConfigured:
		return "auto-configured"
	default:
		return "none"
	}
}

// Rule identifies the decision row that matched. Rows are checked in order and the
// first match wins.
type Rule int

const (
	RuleDisabled Rule = iota + 1
	RuleLegacyOverride
	RuleClientOverride
	RuleNoClientType
	RuleAutoConfiguredClient
	RuleAutoConfiguredLegacyConnection
)

func (r Rule) String() string {
	switch r {
	case RuleDisabled:
		return "disabled"
	case RuleLegacyOverride:
		return "legacy-override"
	case RuleClientOverride:
		return "client-override"
	case RuleNoClientType:
		return "no-client-type"
	case RuleAutoConfiguredClient:
		return "auto-configured-client"
	case RuleAutoConfiguredLegacyConnection:
		return "auto-configured-legacy-connection"
	default:
		return fmt.Sprintf("rule(%d)", int(r))
	}
}

// Conditions are the facts an evaluation depends on besides user overrides.
type Conditions struct {
	FeatureEnabled          bool
	ClientTypePresent       bool
	LegacyClientTypePresent bool
}

// Overrides are clients published by the application itself. Either may be nil.
type Overrides struct {
	Client *elasticsearch.RestClient
	Legacy *elasticsearch.HighLevelClient
}

// usable drops overrides whose client type is not present: a type that is not linked
// cannot have been supplied.
func (o Overrides) usable(c Conditions) Overrides {
	if !c.ClientTypePresent {
		o.Client = nil
	}
	if !c.LegacyClientTypePresent {
		o.Legacy = nil
	}
	return o
}

// Decision is the result of Evaluate.
type Decision struct {
	Variant Variant
	Source  Source
	Rule    Rule
	Reason  string
}

// Registers reports whether the decision places a contributor in the registry.
func (d Decision) Registers() bool {
	return d.Variant != VariantNone
}

// Evaluate decides which contributor, if any, the conditions and overrides call for.
// It has no side effects.
func Evaluate(c Conditions, o Overrides) Decision {
	o = o.usable(c)

	switch {
	case !c.FeatureEnabled:
		return Decision{VariantNone, SourceNone, RuleDisabled,
			ConfigSection + ".enabled is false"}
	case o.Legacy != nil && o.Client == nil:
		return Decision{VariantLegacyClientBased, SourceOverride, RuleLegacyOverride,
			"application supplied a HighLevelClient"}
	case o.Client != nil:
		return Decision{VariantClientBased, SourceOverride, RuleClientOverride,
			"application supplied a RestClient"}
	case !c.ClientTypePresent && !c.LegacyClientTypePresent:
		return Decision{VariantNone, SourceNone, RuleNoClientType,
			"no Elasticsearch client type is available"}
	case c.ClientTypePresent:
		return Decision{VariantClientBased, SourceAutoConfigured, RuleAutoConfiguredClient,
			"RestClient type is available"}
	default:
		return Decision{VariantClientBased, SourceAutoConfigured, RuleAutoConfiguredLegacyConnection,
			"only the HighLevelClient type is available, using its low-level connection"}
	}
}
