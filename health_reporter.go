package actuator

import (
	"context"
)

// HealthProvider is implemented by anything that can report on its own health.
// Registering a HealthProvider as a service makes it visible to the health endpoint.
type HealthProvider interface {
	// HealthCheck returns one or more reports. A returned error is converted into an
	// unhealthy report by the aggregator.
	HealthCheck(ctx context.Context) ([]HealthReport, error)
}

// HealthAggregator collects and combines reports from all registered providers.
type HealthAggregator interface {
	Collect(ctx context.Context) (AggregatedHealth, error)
}
