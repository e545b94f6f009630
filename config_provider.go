package actuator

import (
	"fmt"
	"slices"

	"github.com/GoCodeAlone/actuator/feeders"
)

// ConfigFeeders is the default feeder set used when an application is built without
// WithConfigFeeders.
var ConfigFeeders = []Feeder{
	feeders.NewEnvFeeder(),
}

// ConfigProvider defines the interface for providing configuration objects
type ConfigProvider interface {
	// GetConfig returns the configuration object
	GetConfig() any
}

// StdConfigProvider provides a standard implementation of ConfigProvider
type StdConfigProvider struct {
	cfg any
}

// GetConfig returns the configuration object
func (s *StdConfigProvider) GetConfig() any {
	return s.cfg
}

// NewStdConfigProvider creates a new standard configuration provider
func NewStdConfigProvider(cfg any) *StdConfigProvider {
	return &StdConfigProvider{cfg: cfg}
}

// Feeder populates a whole configuration struct.
type Feeder interface {
	Feed(structure any) error
}

// ComplexFeeder extends the basic Feeder interface with keyed feeding of a single
// configuration section.
type ComplexFeeder interface {
	Feeder
	FeedKey(key string, target any) error
}

// ConfigValidator is implemented by configs that check themselves after feeding.
type ConfigValidator interface {
	Validate() error
}

// loadAppConfig feeds every registered section, in name order, then the main config.
// Feeders run in the order given, so later feeders win.
func loadAppConfig(app *StdApplication) error {
	if app == nil {
		return ErrApplicationNil
	}

	if len(app.configFeeders) == 0 {
		app.logger.Debug("No config feeders defined, using defaults")
	}

	sections := make([]string, 0, len(app.cfgSections))
	for section := range app.cfgSections {
		sections = append(sections, section)
	}
	slices.Sort(sections)

	for _, section := range sections {
		cp := app.cfgSections[section]
		if cp == nil || cp.GetConfig() == nil {
			return fmt.Errorf("%w: section %s", ErrConfigProviderNil, section)
		}
		cfg := cp.GetConfig()

		for _, f := range app.configFeeders {
			cf, ok := f.(ComplexFeeder)
			if !ok {
				continue
			}
			if err := cf.FeedKey(section, cfg); err != nil {
				return fmt.Errorf("%w: section %s: %w", ErrConfigFeederError, section, err)
			}
		}

		if err := validateConfig(section, cfg); err != nil {
			return err
		}
		app.logger.Debug("Loaded config section", "section", section)
	}

	if app.cfgProvider != nil && app.cfgProvider.GetConfig() != nil {
		main := app.cfgProvider.GetConfig()
		for _, f := range app.configFeeders {
			if err := f.Feed(main); err != nil {
				return fmt.Errorf("%w: main config: %w", ErrConfigFeederError, err)
			}
		}
		if err := validateConfig("main", main); err != nil {
			return err
		}
	}

	return nil
}

func validateConfig(section string, cfg any) error {
	v, ok := cfg.(ConfigValidator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w for %s: %w", ErrConfigValidation, section, err)
	}
	return nil
}
