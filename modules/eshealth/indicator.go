package eshealth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/GoCodeAlone/actuator"
	"github.com/GoCodeAlone/actuator/modules/elasticsearch"
)

const (
	componentClient       = "client"
	componentLegacyClient = "legacy-client"

	clusterStatusRed = "red"
)

// contributor is implemented by both indicators so re-registration can tell whether an
// existing entry is the one it would create.
type contributor interface {
	actuator.HealthProvider
	variant() Variant
	target() any
}

// ClientHealthIndicator reports cluster health by sending GET /_cluster/health through
// a low-level RestClient.
type ClientHealthIndicator struct {
	client *elasticsearch.RestClient
}

// NewClientHealthIndicator returns an indicator bound to client.
func NewClientHealthIndicator(client *elasticsearch.RestClient) (*ClientHealthIndicator, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	return &ClientHealthIndicator{client: client}, nil
}

// Client returns the client the indicator is bound to.
func (i *ClientHealthIndicator) Client() *elasticsearch.RestClient {
	return i.client
}

// HealthCheck implements actuator.HealthProvider.
func (i *ClientHealthIndicator) HealthCheck(ctx context.Context) ([]actuator.HealthReport, error) {
	checkedAt := time.Now()

	res, err := i.client.Perform(ctx, http.MethodGet, elasticsearch.ClusterHealthPath)
	if err != nil {
		return []actuator.HealthReport{failureReport(componentClient, checkedAt, err)}, nil
	}
	health, err := elasticsearch.DecodeClusterHealth(res.StatusCode, res.Body)
	if err != nil {
		return []actuator.HealthReport{failureReport(componentClient, checkedAt, err)}, nil
	}
	return []actuator.HealthReport{clusterReport(componentClient, checkedAt, health)}, nil
}

func (i *ClientHealthIndicator) variant() Variant { return VariantClientBased }
func (i *ClientHealthIndicator) target() any      { return i.client }

// LegacyClientHealthIndicator reports cluster health through the typed cluster health
// call of a HighLevelClient.
type LegacyClientHealthIndicator struct {
	client *elasticsearch.HighLevelClient
}

// NewLegacyClientHealthIndicator returns an indicator bound to client.
func NewLegacyClientHealthIndicator(client *elasticsearch.HighLevelClient) (*LegacyClientHealthIndicator, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	return &LegacyClientHealthIndicator{client: client}, nil
}

// Client returns the client the indicator is bound to.
func (i *LegacyClientHealthIndicator) Client() *elasticsearch.HighLevelClient {
	return i.client
}

// HealthCheck implements actuator.HealthProvider.
func (i *LegacyClientHealthIndicator) HealthCheck(ctx context.Context) ([]actuator.HealthReport, error) {
	checkedAt := time.Now()

	health, err := i.client.ClusterHealth(ctx)
	if err != nil {
		return []actuator.HealthReport{failureReport(componentLegacyClient, checkedAt, err)}, nil
	}
	return []actuator.HealthReport{clusterReport(componentLegacyClient, checkedAt, health)}, nil
}

func (i *LegacyClientHealthIndicator) variant() Variant { return VariantLegacyClientBased }
func (i *LegacyClientHealthIndicator) target() any      { return i.client }

// clusterReport maps a cluster health response: a red cluster is out of service, any
// other status on a 2xx answer is healthy, and a non-2xx answer is unhealthy.
func clusterReport(component string, checkedAt time.Time, health *elasticsearch.ClusterHealth) actuator.HealthReport {
	report := actuator.HealthReport{
		Module:        elasticsearch.ModuleName,
		Component:     component,
		CheckedAt:     checkedAt,
		ObservedSince: checkedAt,
	}

	switch {
	case !health.IsSuccess():
		report.Status = actuator.HealthStatusUnhealthy
		report.Message = fmt.Sprintf("cluster health request returned status %d", health.StatusCode)
		report.Details = map[string]any{"statusCode": health.StatusCode}
	case health.Status == clusterStatusRed:
		report.Status = actuator.HealthStatusUnhealthy
		report.Message = "out of service"
		report.Details = health.Details
	default:
		report.Status = actuator.HealthStatusHealthy
		report.Details = health.Details
	}
	return report
}

func failureReport(component string, checkedAt time.Time, err error) actuator.HealthReport {
	return actuator.HealthReport{
		Module:        elasticsearch.ModuleName,
		Component:     component,
		Status:        actuator.HealthStatusUnhealthy,
		Message:       err.Error(),
		CheckedAt:     checkedAt,
		ObservedSince: checkedAt,
		Details:       map[string]any{"error": err.Error()},
	}
}
