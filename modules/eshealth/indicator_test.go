package eshealth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/actuator"
	"github.com/GoCodeAlone/actuator/internal/testutil"
	"github.com/GoCodeAlone/actuator/modules/elasticsearch"
)

func indicatorsFor(t *testing.T, server *testutil.ElasticsearchServer) map[string]actuator.HealthProvider {
	t.Helper()
	builder := elasticsearch.NewRestClientBuilder(&elasticsearch.Config{URIs: []string{server.URL}})

	rest, err := builder.Build()
	require.NoError(t, err)
	client, err := NewClientHealthIndicator(rest)
	require.NoError(t, err)

	highLevel, err := builder.BuildHighLevel()
	require.NoError(t, err)
	legacy, err := NewLegacyClientHealthIndicator(highLevel)
	require.NoError(t, err)

	return map[string]actuator.HealthProvider{"client": client, "legacy": legacy}
}

func TestIndicatorHealthMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		statusCode  int
		want        actuator.HealthStatus
		wantMessage string
	}{
		{name: "green", status: "green", statusCode: http.StatusOK, want: actuator.HealthStatusHealthy},
		{name: "yellow", status: "yellow", statusCode: http.StatusOK, want: actuator.HealthStatusHealthy},
		{name: "red", status: "red", statusCode: http.StatusOK, want: actuator.HealthStatusUnhealthy, wantMessage: "out of service"},
		{name: "forbidden", statusCode: http.StatusForbidden, want: actuator.HealthStatusUnhealthy, wantMessage: "returned status 403"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewElasticsearchServer(t)
			server.SetClusterStatus(tt.status)
			server.SetStatusCode(tt.statusCode)

			for kind, indicator := range indicatorsFor(t, server) {
				reports, err := indicator.HealthCheck(context.Background())
				require.NoError(t, err, kind)
				require.Len(t, reports, 1, kind)

				report := reports[0]
				assert.Equal(t, tt.want, report.Status, kind)
				assert.Contains(t, report.Message, tt.wantMessage, kind)
				assert.Equal(t, elasticsearch.ModuleName, report.Module, kind)
				assert.False(t, report.CheckedAt.IsZero(), kind)

				if tt.statusCode == http.StatusOK {
					assert.Equal(t, "test-cluster", report.Details["cluster_name"], kind)
					assert.Equal(t, tt.status, report.Details["status"], kind)
				} else {
					assert.Equal(t, tt.statusCode, report.Details["statusCode"], kind)
				}
			}
		})
	}
}

func TestIndicatorTransportFailure(t *testing.T) {
	server := testutil.NewElasticsearchServer(t)
	indicators := indicatorsFor(t, server)
	server.Close()

	for kind, indicator := range indicators {
		reports, err := indicator.HealthCheck(context.Background())
		require.NoError(t, err, kind)
		require.Len(t, reports, 1, kind)
		assert.Equal(t, actuator.HealthStatusUnhealthy, reports[0].Status, kind)
		assert.Contains(t, reports[0].Details, "error", kind)
	}
}

func TestIndicatorComponents(t *testing.T) {
	server := testutil.NewElasticsearchServer(t)
	indicators := indicatorsFor(t, server)

	reports, err := indicators["client"].HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "client", reports[0].Component)

	reports, err = indicators["legacy"].HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "legacy-client", reports[0].Component)
}

func TestIndicatorsRequireClient(t *testing.T) {
	_, err := NewClientHealthIndicator(nil)
	assert.ErrorIs(t, err, ErrClientNil)
	_, err = NewLegacyClientHealthIndicator(nil)
	assert.ErrorIs(t, err, ErrClientNil)
}
