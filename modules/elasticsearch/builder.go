package elasticsearch

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	es8 "github.com/elastic/go-elasticsearch/v8"

	"github.com/GoCodeAlone/actuator"
)

// RestClientBuilder creates clients from a Config. The auto-configured builder is
// published as a service so application modules can create their own clients with the
// same connection settings.
//
// The config is read when a client is built, not when the builder is created.
type RestClientBuilder struct {
	config    *Config
	transport http.RoundTripper
	logger    actuator.Logger

	mu    sync.Mutex
	owned *http.Transport
}

// NewRestClientBuilder returns a builder for cfg. A nil cfg uses DefaultConfig.
func NewRestClientBuilder(cfg *Config) *RestClientBuilder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &RestClientBuilder{config: cfg}
}

// WithTransport replaces the HTTP transport derived from the config timeouts.
func (b *RestClientBuilder) WithTransport(rt http.RoundTripper) *RestClientBuilder {
	b.transport = rt
	return b
}

// WithLogger enables request logging when the config is verbose.
func (b *RestClientBuilder) WithLogger(logger actuator.Logger) *RestClientBuilder {
	b.logger = logger
	return b
}

// Config returns the configuration clients are built from.
func (b *RestClientBuilder) Config() *Config {
	return b.config
}

// Build creates a low-level RestClient.
func (b *RestClientBuilder) Build() (*RestClient, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	transport := b.roundTripper()
	if b.config.Verbose && b.logger != nil {
		transport = &loggingTransport{transport: transport, logger: b.logger}
	}

	client, err := NewRestClient(es8.Config{
		Addresses: b.config.Addresses(),
		Username:  b.config.Username,
		Password:  b.config.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// BuildHighLevel creates a HighLevelClient on top of a newly built RestClient.
func (b *RestClientBuilder) BuildHighLevel() (*HighLevelClient, error) {
	low, err := b.Build()
	if err != nil {
		return nil, err
	}
	return NewHighLevelClient(low), nil
}

// CloseIdleConnections closes idle connections of the transport the builder created.
// A transport supplied through WithTransport is left alone.
func (b *RestClientBuilder) CloseIdleConnections() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owned != nil {
		b.owned.CloseIdleConnections()
	}
}

// roundTripper returns the supplied transport or one derived from the config, shared
// by every client the builder creates.
func (b *RestClientBuilder) roundTripper() http.RoundTripper {
	if b.transport != nil {
		return b.transport
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owned == nil {
		b.owned = newTransport(b.config)
	}
	return b.owned
}

func newTransport(cfg *Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectionTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}
}

// loggingTransport logs each request's method, URL, status and duration at debug level.
type loggingTransport struct {
	transport http.RoundTripper
	logger    actuator.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.logger.Debug("Elasticsearch request failed",
			"method", req.Method,
			"url", req.URL.Redacted(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return resp, fmt.Errorf("elasticsearch transport: %w", err)
	}

	t.logger.Debug("Elasticsearch request",
		"method", req.Method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)
	return resp, nil
}
