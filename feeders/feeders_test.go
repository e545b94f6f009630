package feeders

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clientSection struct {
	URIs        []string      `yaml:"uris" toml:"uris" env:"URIS"`
	Username    string        `yaml:"username" toml:"username" env:"USERNAME"`
	ReadTimeout time.Duration `yaml:"read_timeout" toml:"read_timeout" env:"READ_TIMEOUT"`
	Retries     int           `yaml:"retries" toml:"retries" env:"RETRIES"`
	Pool        poolSection   `yaml:"pool" toml:"pool" env:"POOL"`
}

type poolSection struct {
	MaxIdle int `yaml:"max_idle" toml:"max_idle" env:"MAX_IDLE"`
}

type toggleSection struct {
	Enabled bool `yaml:"enabled" toml:"enabled" env:"ENABLED"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPropertiesFeeder(t *testing.T) {
	t.Run("colon and equals separators", func(t *testing.T) {
		feeder, err := NewPropertiesFeeder(
			"management.health.elasticsearch.enabled:false",
			"other.key=value",
		)
		require.NoError(t, err)
		assert.Equal(t, "false", feeder.Properties["management.health.elasticsearch.enabled"])
		assert.Equal(t, "value", feeder.Properties["other.key"])
	})

	t.Run("invalid pair", func(t *testing.T) {
		_, err := NewPropertiesFeeder("no-separator")
		assert.ErrorIs(t, err, ErrInvalidPropertyPair)
	})

	t.Run("only present keys overwrite defaults", func(t *testing.T) {
		feeder, err := NewPropertiesFeeder("management.health.elasticsearch.enabled=false")
		require.NoError(t, err)

		cfg := &toggleSection{Enabled: true}
		require.NoError(t, feeder.FeedKey("management.health.elasticsearch", cfg))
		assert.False(t, cfg.Enabled)

		untouched := &toggleSection{Enabled: true}
		require.NoError(t, feeder.FeedKey("management.health.redis", untouched))
		assert.True(t, untouched.Enabled)
	})

	t.Run("nested, slices and durations", func(t *testing.T) {
		feeder, err := NewPropertiesFeeder(
			"elasticsearch.uris=http://a:9200, http://b:9200",
			"elasticsearch.read_timeout=1500ms",
			"elasticsearch.retries=3",
			"elasticsearch.pool.max_idle=7",
		)
		require.NoError(t, err)

		cfg := &clientSection{}
		require.NoError(t, feeder.FeedKey("elasticsearch", cfg))
		assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, cfg.URIs)
		assert.Equal(t, 1500*time.Millisecond, cfg.ReadTimeout)
		assert.Equal(t, 3, cfg.Retries)
		assert.Equal(t, 7, cfg.Pool.MaxIdle)
	})

	t.Run("conversion failure", func(t *testing.T) {
		feeder, err := NewPropertiesFeeder("elasticsearch.retries=lots")
		require.NoError(t, err)
		err = feeder.FeedKey("elasticsearch", &clientSection{})
		assert.ErrorIs(t, err, ErrFieldConversion)
	})

	t.Run("rejects non-pointer", func(t *testing.T) {
		feeder := PropertiesFeeder{}
		assert.ErrorIs(t, feeder.FeedKey("x", toggleSection{}), ErrInvalidStructure)
	})
}

func TestEnvFeeder(t *testing.T) {
	t.Setenv("MANAGEMENT_HEALTH_ELASTICSEARCH_ENABLED", "false")
	t.Setenv("ELASTICSEARCH_USERNAME", "elastic")
	t.Setenv("ELASTICSEARCH_POOL_MAX_IDLE", "4")
	t.Setenv("APP_ELASTICSEARCH_RETRIES", "9")

	toggle := &toggleSection{Enabled: true}
	require.NoError(t, NewEnvFeeder().FeedKey("management.health.elasticsearch", toggle))
	assert.False(t, toggle.Enabled)

	client := &clientSection{Retries: 1}
	require.NoError(t, NewEnvFeeder().FeedKey("elasticsearch", client))
	assert.Equal(t, "elastic", client.Username)
	assert.Equal(t, 4, client.Pool.MaxIdle)
	assert.Equal(t, 1, client.Retries, "unprefixed feeder ignores prefixed variables")

	prefixed := &clientSection{}
	require.NoError(t, NewPrefixedEnvFeeder("APP_").FeedKey("elasticsearch", prefixed))
	assert.Equal(t, 9, prefixed.Retries)
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "MANAGEMENT_HEALTH_ELASTICSEARCH_ENABLED", EnvVarName("", "management.health.elasticsearch", "ENABLED"))
	assert.Equal(t, "APP_ENDPOINT_BASE_PATH", EnvVarName("app", "endpoint", "base-path"))
}

func TestDotEnvFeeder(t *testing.T) {
	path := writeFile(t, ".env", "ELASTICSEARCH_USERNAME=fromfile\nELASTICSEARCH_READ_TIMEOUT=2s\n")

	cfg := &clientSection{}
	require.NoError(t, NewDotEnvFeeder(path).FeedKey("elasticsearch", cfg))
	assert.Equal(t, "fromfile", cfg.Username)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)

	_, set := os.LookupEnv("ELASTICSEARCH_USERNAME")
	assert.False(t, set, "process environment must not be modified")

	err := NewDotEnvFeeder(filepath.Join(t.TempDir(), "missing.env")).FeedKey("elasticsearch", cfg)
	assert.ErrorIs(t, err, ErrDotEnvFileUnreadable)
}

func TestYamlFeeder(t *testing.T) {
	path := writeFile(t, "config.yaml", `
management:
  health:
    elasticsearch:
      enabled: false
elasticsearch:
  uris:
    - http://localhost:9200
  username: elastic
  read_timeout: 3s
  pool:
    max_idle: 2
`)

	toggle := &toggleSection{Enabled: true}
	require.NoError(t, NewYamlFeeder(path).FeedKey("management.health.elasticsearch", toggle))
	assert.False(t, toggle.Enabled)

	client := &clientSection{Retries: 5}
	require.NoError(t, NewYamlFeeder(path).FeedKey("elasticsearch", client))
	assert.Equal(t, []string{"http://localhost:9200"}, client.URIs)
	assert.Equal(t, 3*time.Second, client.ReadTimeout)
	assert.Equal(t, 2, client.Pool.MaxIdle)
	assert.Equal(t, 5, client.Retries, "absent keys keep their defaults")

	missing := &toggleSection{Enabled: true}
	require.NoError(t, NewYamlFeeder(path).FeedKey("management.health.redis", missing))
	assert.True(t, missing.Enabled)
}

func TestTomlFeeder(t *testing.T) {
	path := writeFile(t, "config.toml", `
[management.health.elasticsearch]
enabled = false

[elasticsearch]
uris = ["http://localhost:9200"]
username = "elastic"
retries = 2

[elasticsearch.pool]
max_idle = 6
`)

	toggle := &toggleSection{Enabled: true}
	require.NoError(t, NewTomlFeeder(path).FeedKey("management.health.elasticsearch", toggle))
	assert.False(t, toggle.Enabled)

	client := &clientSection{}
	require.NoError(t, NewTomlFeeder(path).FeedKey("elasticsearch", client))
	assert.Equal(t, "elastic", client.Username)
	assert.Equal(t, 2, client.Retries)
	assert.Equal(t, 6, client.Pool.MaxIdle)

	err := NewTomlFeeder(path).FeedKey("elasticsearch.username", &toggleSection{})
	assert.ErrorIs(t, err, ErrSectionNotAMap)
}
