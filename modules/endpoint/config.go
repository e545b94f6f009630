package endpoint

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ConfigSection is the configuration section read by the endpoint module
const ConfigSection = "management.endpoint.health"

// Config holds the health endpoint settings.
//
// Example YAML configuration:
//
//	management:
//	  endpoint:
//	    health:
//	      base_path: /actuator
//	      address: ":8081"
//	      refresh_schedule: "@every 30s"
//
// Example environment variables:
//
//	MANAGEMENT_ENDPOINT_HEALTH_ADDRESS=:8081
//	MANAGEMENT_ENDPOINT_HEALTH_REFRESH_SCHEDULE=*/5 * * * *
type Config struct {
	// BasePath prefixes every route. Default: /actuator
	BasePath string `yaml:"base_path" toml:"base_path" json:"base_path" env:"BASE_PATH"`

	// Address the endpoint listens on. Empty leaves serving to the application, which
	// can mount the router service itself.
	Address string `yaml:"address" toml:"address" json:"address" env:"ADDRESS"`

	// RefreshSchedule is a cron expression (or @every descriptor) for background
	// refreshes. Empty disables them.
	RefreshSchedule string `yaml:"refresh_schedule" toml:"refresh_schedule" json:"refresh_schedule" env:"REFRESH_SCHEDULE"`

	// CacheTTL bounds how long a collected result is served. Default: 1s
	CacheTTL time.Duration `yaml:"cache_ttl" toml:"cache_ttl" json:"cache_ttl" env:"CACHE_TTL"`

	// Timeout bounds each provider's check. Default: 5s
	Timeout time.Duration `yaml:"timeout" toml:"timeout" json:"timeout" env:"TIMEOUT"`

	// ShutdownTimeout bounds graceful shutdown of the server. Must be positive.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DefaultConfig returns the endpoint defaults
func DefaultConfig() *Config {
	return &Config{
		BasePath:        "/actuator",
		CacheTTL:        time.Second,
		Timeout:         5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate implements actuator.ConfigValidator
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidBasePath, c.BasePath)
	}
	if c.CacheTTL < 0 || c.Timeout < 0 || c.ShutdownTimeout < 0 {
		return ErrNegativeDuration
	}
	if c.ShutdownTimeout == 0 {
		return ErrNoShutdownTimeout
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, c.RefreshSchedule, err)
		}
	}
	return nil
}

func (c *Config) basePath() string {
	return strings.TrimSuffix(c.BasePath, "/")
}
