package actuator

import (
	"encoding/json"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus int

const (
	// HealthStatusUnknown indicates the health status cannot be determined
	HealthStatusUnknown HealthStatus = iota

	// HealthStatusHealthy indicates the component is operating normally
	HealthStatusHealthy

	// HealthStatusDegraded indicates the component is operating with reduced functionality
	HealthStatusDegraded

	// HealthStatusUnhealthy indicates the component is not operating correctly
	HealthStatusUnhealthy
)

// String returns the string representation of the health status
func (s HealthStatus) String() string {
	switch s {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusDegraded:
		return "degraded"
	case HealthStatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// IsHealthy returns true if the status represents a healthy state
func (s HealthStatus) IsHealthy() bool {
	return s == HealthStatusHealthy
}

// MarshalJSON encodes the status by name.
func (s HealthStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// worse reports whether s ranks below other. Unknown ranks between degraded and
// unhealthy.
func (s HealthStatus) worse(other HealthStatus) bool {
	return statusRank(s) > statusRank(other)
}

func statusRank(s HealthStatus) int {
	switch s {
	case HealthStatusHealthy:
		return 0
	case HealthStatusDegraded:
		return 1
	case HealthStatusUnknown:
		return 2
	default:
		return 3
	}
}

// HealthReport is the outcome of checking one component.
type HealthReport struct {
	// Module is the name of the provider that produced the report
	Module string `json:"module"`

	// Component optionally narrows the report within the module
	Component string `json:"component,omitempty"`

	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`

	CheckedAt     time.Time `json:"checkedAt"`
	ObservedSince time.Time `json:"observedSince"`

	// Optional reports do not affect readiness
	Optional bool `json:"optional"`

	Details map[string]any `json:"details,omitempty"`
}

// AggregatedHealth combines every provider's reports.
type AggregatedHealth struct {
	// Readiness is the worst status among non-optional reports
	Readiness HealthStatus `json:"readiness"`

	// Health is the worst status among all reports
	Health HealthStatus `json:"health"`

	Reports     []HealthReport `json:"reports"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
