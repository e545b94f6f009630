package actuator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/actuator/feeders"
)

type toggleConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Name    string `yaml:"name" env:"NAME"`
}

var errNameRequired = errors.New("name is required")

type validatedConfig struct {
	Name string `yaml:"name" env:"NAME"`
}

func (c *validatedConfig) Validate() error {
	if c.Name == "" {
		return errNameRequired
	}
	return nil
}

type configModule struct {
	section string
	cfg     any
}

func (m *configModule) Name() string           { return "config-" + m.section }
func (m *configModule) Init(Application) error { return nil }
func (m *configModule) RegisterConfig(app Application) error {
	app.RegisterConfigSection(m.section, NewStdConfigProvider(m.cfg))
	return nil
}

func TestConfigFeedingKeepsDefaults(t *testing.T) {
	props, err := feeders.NewPropertiesFeeder("feature.toggle.name=custom")
	require.NoError(t, err)

	cfg := &toggleConfig{Enabled: true}
	app, err := NewApplication(
		WithLogger(&testLogger{}),
		WithConfigFeeders(props),
		WithModules(&configModule{section: "feature.toggle", cfg: cfg}),
	)
	require.NoError(t, err)
	require.NoError(t, app.Init())

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "custom", cfg.Name)
}

func TestLaterFeedersWin(t *testing.T) {
	t.Setenv("FEATURE_TOGGLE_ENABLED", "true")
	props, err := feeders.NewPropertiesFeeder("feature.toggle.enabled=false")
	require.NoError(t, err)

	cfg := &toggleConfig{}
	app, err := NewApplication(
		WithLogger(&testLogger{}),
		WithConfigFeeders(props, feeders.NewEnvFeeder()),
		WithModules(&configModule{section: "feature.toggle", cfg: cfg}),
	)
	require.NoError(t, err)
	require.NoError(t, app.Init())

	assert.True(t, cfg.Enabled)
}

func TestConfigValidationRunsAfterFeeding(t *testing.T) {
	app, err := NewApplication(
		WithLogger(&testLogger{}),
		WithConfigFeeders(),
		WithModules(&configModule{section: "validated", cfg: &validatedConfig{}}),
	)
	require.NoError(t, err)

	err = app.Init()
	require.ErrorIs(t, err, ErrConfigValidation)
	assert.ErrorIs(t, err, errNameRequired)
}

func TestConfigFeederErrorIsWrapped(t *testing.T) {
	props, err := feeders.NewPropertiesFeeder("broken.enabled=maybe")
	require.NoError(t, err)

	app, err := NewApplication(
		WithLogger(&testLogger{}),
		WithConfigFeeders(props),
		WithModules(&configModule{section: "broken", cfg: &toggleConfig{}}),
	)
	require.NoError(t, err)

	err = app.Init()
	require.ErrorIs(t, err, ErrConfigFeederError)
	assert.ErrorIs(t, err, feeders.ErrFieldConversion)
}

func TestNilSectionConfig(t *testing.T) {
	app, err := NewApplication(
		WithLogger(&testLogger{}),
		WithConfigFeeders(),
		WithModules(&configModule{section: "nil", cfg: nil}),
	)
	require.NoError(t, err)
	assert.ErrorIs(t, app.Init(), ErrConfigProviderNil)
}
