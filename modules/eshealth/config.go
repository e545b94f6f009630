package eshealth

// ConfigSection is the configuration section holding the contributor switch
const ConfigSection = "management.health.elasticsearch"

// Config controls the Elasticsearch health contributor.
type Config struct {
	// Enabled turns the contributor on. When false nothing is registered, whatever
	// clients are available.
	Enabled bool `yaml:"enabled" toml:"enabled" json:"enabled" env:"ENABLED"`
}

// DefaultConfig returns the configuration used when no source sets a value
func DefaultConfig() *Config {
	return &Config{Enabled: true}
}
