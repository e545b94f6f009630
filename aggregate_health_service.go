package actuator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// EventTypeHealthStatusChanged is emitted when the aggregated health changes between
// two collections.
const EventTypeHealthStatusChanged = "com.modular.health.status.changed"

const (
	defaultHealthCacheTTL = 250 * time.Millisecond
	defaultHealthTimeout  = 200 * time.Millisecond
)

// AggregateHealthService implements HealthAggregator. Providers are checked
// concurrently, each under its own timeout; a panicking or failing provider yields an
// unhealthy report instead of failing the collection. Results are cached for CacheTTL.
type AggregateHealthService struct {
	providers map[string]providerInfo
	mu        sync.RWMutex

	cacheEnabled bool
	cacheTTL     time.Duration
	lastResult   *AggregatedHealth
	lastCheck    time.Time

	defaultTimeout time.Duration

	eventSubject   Subject
	previousStatus HealthStatus
}

// providerInfo holds information about a registered health provider
type providerInfo struct {
	provider HealthProvider
	optional bool
}

// AggregateHealthServiceConfig provides configuration for the health aggregation service
type AggregateHealthServiceConfig struct {
	// CacheTTL is the time-to-live for cached health results. Default: 250ms
	CacheTTL time.Duration

	// DefaultTimeout bounds each provider call. Default: 200ms
	DefaultTimeout time.Duration

	CacheEnabled bool
}

// NewAggregateHealthService creates a new aggregate health service with default configuration
func NewAggregateHealthService() *AggregateHealthService {
	return NewAggregateHealthServiceWithConfig(AggregateHealthServiceConfig{
		CacheTTL:       defaultHealthCacheTTL,
		DefaultTimeout: defaultHealthTimeout,
		CacheEnabled:   true,
	})
}

// NewAggregateHealthServiceWithConfig creates a new aggregate health service with custom configuration
func NewAggregateHealthServiceWithConfig(config AggregateHealthServiceConfig) *AggregateHealthService {
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaultHealthCacheTTL
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaultHealthTimeout
	}

	return &AggregateHealthService{
		providers:      make(map[string]providerInfo),
		cacheEnabled:   config.CacheEnabled,
		cacheTTL:       config.CacheTTL,
		defaultTimeout: config.DefaultTimeout,
	}
}

// SetEventSubject sets the subject that receives health status change events
func (s *AggregateHealthService) SetEventSubject(subject Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventSubject = subject
}

// RegisterProvider registers a health provider under name
func (s *AggregateHealthService) RegisterProvider(name string, provider HealthProvider, optional bool) error {
	if name == "" {
		return fmt.Errorf("health aggregation: %w", ErrModuleNameEmpty)
	}
	if provider == nil {
		return fmt.Errorf("health aggregation: %w", ErrProviderNil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.providers[name]; exists {
		return fmt.Errorf("health aggregation: provider '%s': %w", name, ErrProviderAlreadyExists)
	}

	s.providers[name] = providerInfo{provider: provider, optional: optional}
	s.lastResult = nil
	return nil
}

// UnregisterProvider removes the provider registered under name
func (s *AggregateHealthService) UnregisterProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.providers[name]; !exists {
		return fmt.Errorf("health aggregation: provider '%s': %w", name, ErrProviderNotRegistered)
	}

	delete(s.providers, name)
	s.lastResult = nil
	s.lastCheck = time.Time{}
	return nil
}

// ProviderNames returns the registered provider names in sorted order.
func (s *AggregateHealthService) ProviderNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Collect returns the aggregated health, served from cache when still fresh.
//
// Aggregation rules:
//   - Readiness: worst status across non-optional reports
//   - Health: worst status across all reports
//   - No providers: healthy
func (s *AggregateHealthService) Collect(ctx context.Context) (AggregatedHealth, error) {
	s.mu.RLock()
	if s.cacheEnabled && s.lastResult != nil && time.Since(s.lastCheck) < s.cacheTTL {
		result := *s.lastResult
		s.mu.RUnlock()
		return result, nil
	}
	s.mu.RUnlock()

	return s.Refresh(ctx)
}

// Refresh collects from every provider regardless of the cache and updates it.
func (s *AggregateHealthService) Refresh(ctx context.Context) (AggregatedHealth, error) {
	s.mu.RLock()
	providers := make(map[string]providerInfo, len(s.providers))
	for name, info := range s.providers {
		providers[name] = info
	}
	s.mu.RUnlock()

	reports, err := s.collectReports(ctx, providers)
	if err != nil {
		return AggregatedHealth{}, fmt.Errorf("health aggregation: failed to collect reports: %w", err)
	}

	aggregated := AggregateReports(reports)
	aggregated.GeneratedAt = time.Now()

	s.mu.Lock()
	previous := s.previousStatus
	s.previousStatus = aggregated.Health
	if s.cacheEnabled {
		s.lastResult = &aggregated
		s.lastCheck = time.Now()
	}
	subject := s.eventSubject
	s.mu.Unlock()

	if subject != nil && previous != HealthStatusUnknown && previous != aggregated.Health {
		event := NewCloudEvent(EventTypeHealthStatusChanged, "health-aggregator", map[string]any{
			"previous": previous.String(),
			"current":  aggregated.Health.String(),
		}, nil)
		_ = subject.NotifyObservers(ctx, event)
	}

	return aggregated, nil
}

// collectReports checks all providers concurrently and returns reports sorted by
// module and component.
func (s *AggregateHealthService) collectReports(ctx context.Context, providers map[string]providerInfo) ([]HealthReport, error) {
	if len(providers) == 0 {
		return []HealthReport{}, nil
	}

	var (
		mu      sync.Mutex
		reports = make([]HealthReport, 0, len(providers))
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, info := range providers {
		g.Go(func() error {
			collected := s.collectFromProvider(gctx, name, info)
			mu.Lock()
			reports = append(reports, collected...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(reports, func(a, b HealthReport) int {
		if c := strings.Compare(a.Module, b.Module); c != 0 {
			return c
		}
		return strings.Compare(a.Component, b.Component)
	})
	return reports, nil
}

// collectFromProvider runs one provider with panic recovery
func (s *AggregateHealthService) collectFromProvider(ctx context.Context, name string, info providerInfo) (reports []HealthReport) {
	now := time.Now()
	failure := func(message string, details map[string]any) []HealthReport {
		return []HealthReport{{
			Module:        name,
			Status:        HealthStatusUnhealthy,
			Message:       message,
			CheckedAt:     now,
			ObservedSince: now,
			Optional:      info.optional,
			Details:       details,
		}}
	}

	defer func() {
		if r := recover(); r != nil {
			reports = failure(fmt.Sprintf("Health check panicked: %v", r), map[string]any{"panic": fmt.Sprint(r)})
		}
	}()

	providerCtx, cancel := context.WithTimeout(ctx, s.defaultTimeout)
	defer cancel()

	reports, err := info.provider.HealthCheck(providerCtx)
	if err != nil {
		return failure(fmt.Sprintf("Health check failed: %v", err), map[string]any{"error": err.Error()})
	}
	if len(reports) == 0 {
		return []HealthReport{{
			Module:        name,
			Status:        HealthStatusUnknown,
			Message:       "provider returned no reports",
			CheckedAt:     now,
			ObservedSince: now,
			Optional:      info.optional,
		}}
	}

	for i := range reports {
		reports[i].Module = name
		reports[i].Optional = info.optional
		if reports[i].CheckedAt.IsZero() {
			reports[i].CheckedAt = now
		}
		if reports[i].ObservedSince.IsZero() {
			reports[i].ObservedSince = now
		}
	}
	return reports
}

// AggregateReports applies the aggregation rules to determine overall health and readiness.
// GeneratedAt is left unset.
func AggregateReports(reports []HealthReport) AggregatedHealth {
	readiness := HealthStatusHealthy
	health := HealthStatusHealthy

	for _, report := range reports {
		if report.Status.worse(health) {
			health = report.Status
		}
		if !report.Optional && report.Status.worse(readiness) {
			readiness = report.Status
		}
	}

	return AggregatedHealth{
		Readiness: readiness,
		Health:    health,
		Reports:   reports,
	}
}
