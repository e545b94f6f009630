package elasticsearch

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config defines how auto-configured Elasticsearch clients connect.
//
// Example YAML configuration:
//
//	elasticsearch:
//	  uris:
//	    - http://localhost:9200
//	  username: elastic
//	  password: changeme
//	  path_prefix: /es
//	  connection_timeout: 1s
//	  read_timeout: 30s
//
// Example environment variables:
//
//	ELASTICSEARCH_URIS=http://es-1:9200,http://es-2:9200
//	ELASTICSEARCH_READ_TIMEOUT=10s
type Config struct {
	// URIs lists the cluster nodes. Default: http://localhost:9200
	URIs []string `yaml:"uris" toml:"uris" json:"uris" env:"URIS"`

	Username string `yaml:"username" toml:"username" json:"username" env:"USERNAME"`
	Password string `yaml:"password" toml:"password" json:"-" env:"PASSWORD"`

	// PathPrefix is prepended to every request path, for clusters behind a proxy.
	PathPrefix string `yaml:"path_prefix" toml:"path_prefix" json:"path_prefix" env:"PATH_PREFIX"`

	// ConnectionTimeout bounds dialing a node. Default: 1s
	ConnectionTimeout time.Duration `yaml:"connection_timeout" toml:"connection_timeout" json:"connection_timeout" env:"CONNECTION_TIMEOUT"`

	// ReadTimeout bounds waiting for response headers. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout" toml:"read_timeout" json:"read_timeout" env:"READ_TIMEOUT"`

	// Verbose logs every request at debug level.
	Verbose bool `yaml:"verbose" toml:"verbose" json:"verbose" env:"VERBOSE"`
}

// DefaultConfig returns the defaults applied before configuration is fed.
func DefaultConfig() *Config {
	return &Config{
		URIs:              []string{"http://localhost:9200"},
		ConnectionTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
	}
}

// Validate checks that every URI is an absolute http(s) URL and the timeouts are sane.
func (c *Config) Validate() error {
	if len(c.URIs) == 0 {
		return ErrNoURIs
	}
	for _, raw := range c.URIs {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidURI, raw, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidURI, raw)
		}
	}
	if c.ConnectionTimeout < 0 || c.ReadTimeout < 0 {
		return ErrNegativeTimeout
	}
	return nil
}

// Addresses returns the URIs with PathPrefix applied.
func (c *Config) Addresses() []string {
	prefix := strings.Trim(c.PathPrefix, "/")
	addresses := make([]string, 0, len(c.URIs))
	for _, raw := range c.URIs {
		addr := strings.TrimRight(raw, "/")
		if prefix != "" {
			addr += "/" + prefix
		}
		addresses = append(addresses, addr)
	}
	return addresses
}
