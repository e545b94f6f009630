package feeders

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// TomlFeeder is a feeder that reads TOML files
type TomlFeeder struct {
	Path string
}

// NewTomlFeeder creates a new TomlFeeder that reads from the specified TOML file
func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// Feed decodes the whole file into structure
func (t TomlFeeder) Feed(structure any) error {
	if _, err := targetStruct(structure); err != nil {
		return err
	}
	if _, err := toml.DecodeFile(t.Path, structure); err != nil {
		return fmt.Errorf("failed to decode TOML: %w", err)
	}
	return nil
}

// FeedKey decodes the table addressed by key into target. Dotted keys resolve through
// nested tables, so [management.health.elasticsearch] and a quoted literal key both work.
func (t TomlFeeder) FeedKey(key string, target any) error {
	if _, err := targetStruct(target); err != nil {
		return err
	}

	var allData map[string]any
	if _, err := toml.DecodeFile(t.Path, &allData); err != nil {
		return fmt.Errorf("failed to decode TOML: %w", err)
	}

	value, exists := lookupSection(allData, key)
	if !exists {
		return nil
	}
	table, ok := asStringMap(value)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSectionNotAMap, key)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(table); err != nil {
		return fmt.Errorf("failed to encode TOML section %s: %w", key, err)
	}
	if _, err := toml.Decode(buf.String(), target); err != nil {
		return fmt.Errorf("failed to decode TOML section %s: %w", key, err)
	}
	return nil
}
