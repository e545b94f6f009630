package feeders

import (
	"fmt"

	"github.com/joho/godotenv"
)

// DotEnvFeeder reads a .env file and applies the EnvFeeder naming rules to its entries.
// The process environment is not modified.
type DotEnvFeeder struct {
	Path   string
	Prefix string
}

// NewDotEnvFeeder creates a new DotEnvFeeder that reads from the specified .env file
func NewDotEnvFeeder(filePath string) DotEnvFeeder {
	return DotEnvFeeder{Path: filePath}
}

// Feed populates structure from unsectioned entries
func (f DotEnvFeeder) Feed(structure any) error {
	return f.FeedKey("", structure)
}

// FeedKey populates target from entries for the given section
func (f DotEnvFeeder) FeedKey(key string, target any) error {
	vars, err := godotenv.Read(f.Path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrDotEnvFileUnreadable, f.Path, err)
	}

	return feedFromLookup(func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}, f.Prefix, key, target)
}
