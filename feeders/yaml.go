package feeders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlFeeder is a feeder that reads YAML files
type YamlFeeder struct {
	Path string
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file
func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{Path: filePath}
}

// Feed decodes the whole file into structure
func (y YamlFeeder) Feed(structure any) error {
	if _, err := targetStruct(structure); err != nil {
		return err
	}

	data, err := os.ReadFile(y.Path)
	if err != nil {
		return fmt.Errorf("failed to read YAML: %w", err)
	}
	if err = yaml.Unmarshal(data, structure); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return nil
}

// FeedKey reads a YAML file and extracts a specific key. Dotted keys resolve through
// nested mappings.
func (y YamlFeeder) FeedKey(key string, target any) error {
	if _, err := targetStruct(target); err != nil {
		return err
	}

	data, err := os.ReadFile(y.Path)
	if err != nil {
		return fmt.Errorf("failed to read YAML: %w", err)
	}

	var allData map[string]any
	if err = yaml.Unmarshal(data, &allData); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	value, exists := lookupSection(allData, key)
	if !exists || value == nil {
		return nil
	}
	if _, ok := asStringMap(value); !ok {
		return fmt.Errorf("%w: %s", ErrSectionNotAMap, key)
	}

	// Remarshal and unmarshal to handle type conversions
	valueBytes, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err = yaml.Unmarshal(valueBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal value to target: %w", err)
	}

	return nil
}
