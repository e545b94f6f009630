package feeders

import (
	"reflect"
	"strings"
)

// PropertiesFeeder populates configuration from dotted property keys such as
// "management.health.elasticsearch.enabled". Keys are matched against the section key
// followed by the yaml tag names of the target's fields.
type PropertiesFeeder struct {
	Properties map[string]string
}

// NewPropertiesFeeder creates a PropertiesFeeder from "key=value" or "key:value" pairs.
// Whichever separator appears first splits the pair.
func NewPropertiesFeeder(pairs ...string) (PropertiesFeeder, error) {
	props := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		idx := strings.IndexAny(pair, "=:")
		if idx <= 0 {
			return PropertiesFeeder{}, ErrInvalidPropertyPair
		}
		props[strings.TrimSpace(pair[:idx])] = strings.TrimSpace(pair[idx+1:])
	}
	return PropertiesFeeder{Properties: props}, nil
}

// Feed populates structure using keys relative to the document root.
func (p PropertiesFeeder) Feed(structure any) error {
	return p.FeedKey("", structure)
}

// FeedKey populates target from properties prefixed with key.
func (p PropertiesFeeder) FeedKey(key string, target any) error {
	rv, err := targetStruct(target)
	if err != nil {
		return err
	}

	var prefix []string
	if key != "" {
		prefix = []string{key}
	}

	return walkFields(rv, prefix, propertyName, func(field reflect.Value, _ reflect.StructField, path []string) error {
		value, ok := p.Properties[strings.Join(path, ".")]
		if !ok {
			return nil
		}
		return setFieldValue(field, value)
	})
}
