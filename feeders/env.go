package feeders

import (
	"os"
	"reflect"
	"strings"
)

// EnvFeeder reads environment variables named after the section key and the field's
// env tag: section "management.health.elasticsearch" with `env:"ENABLED"` reads
// MANAGEMENT_HEALTH_ELASTICSEARCH_ENABLED. An optional Prefix is prepended.
type EnvFeeder struct {
	Prefix string

	lookup func(string) (string, bool)
}

// NewEnvFeeder creates a new EnvFeeder that reads from the process environment
func NewEnvFeeder() EnvFeeder {
	return EnvFeeder{lookup: os.LookupEnv}
}

// NewPrefixedEnvFeeder creates an EnvFeeder whose variable names start with prefix
func NewPrefixedEnvFeeder(prefix string) EnvFeeder {
	return EnvFeeder{Prefix: prefix, lookup: os.LookupEnv}
}

// Feed populates structure from unsectioned variables
func (f EnvFeeder) Feed(structure any) error {
	return f.FeedKey("", structure)
}

// FeedKey populates target from variables for the given section
func (f EnvFeeder) FeedKey(key string, target any) error {
	lookup := f.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return feedFromLookup(lookup, f.Prefix, key, target)
}

// EnvVarName returns the variable name that feeds field segments under section.
func EnvVarName(prefix, section string, segments ...string) string {
	parts := make([]string, 0, len(segments)+2)
	if prefix != "" {
		parts = append(parts, strings.ToUpper(strings.TrimSuffix(prefix, "_")))
	}
	if section != "" {
		parts = append(parts, normalizeEnvSegment(section))
	}
	for _, s := range segments {
		parts = append(parts, normalizeEnvSegment(s))
	}
	return strings.Join(parts, "_")
}

func normalizeEnvSegment(s string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(s))
}

func feedFromLookup(lookup func(string) (string, bool), prefix, key string, target any) error {
	rv, err := targetStruct(target)
	if err != nil {
		return err
	}

	return walkFields(rv, nil, envName, func(field reflect.Value, _ reflect.StructField, path []string) error {
		value, ok := lookup(EnvVarName(prefix, key, path...))
		if !ok || value == "" {
			return nil
		}
		return setFieldValue(field, value)
	})
}
