package actuator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	status HealthStatus
	err    error
	calls  atomic.Int32
}

func (p *staticProvider) HealthCheck(context.Context) ([]HealthReport, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return []HealthReport{{Status: p.status, Message: p.status.String()}}, nil
}

type panickingProvider struct{}

func (panickingProvider) HealthCheck(context.Context) ([]HealthReport, error) {
	panic("provider exploded")
}

type slowProvider struct{}

func (slowProvider) HealthCheck(ctx context.Context) ([]HealthReport, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type emptyProvider struct{}

func (emptyProvider) HealthCheck(context.Context) ([]HealthReport, error) { return nil, nil }

func TestAggregateHealthRules(t *testing.T) {
	tests := []struct {
		name          string
		providers     map[string]HealthProvider
		optional      map[string]bool
		wantHealth    HealthStatus
		wantReadiness HealthStatus
	}{
		{
			name:          "no providers",
			providers:     map[string]HealthProvider{},
			wantHealth:    HealthStatusHealthy,
			wantReadiness: HealthStatusHealthy,
		},
		{
			name: "all healthy",
			providers: map[string]HealthProvider{
				"a": &staticProvider{status: HealthStatusHealthy},
				"b": &staticProvider{status: HealthStatusHealthy},
			},
			wantHealth:    HealthStatusHealthy,
			wantReadiness: HealthStatusHealthy,
		},
		{
			name: "optional unhealthy does not affect readiness",
			providers: map[string]HealthProvider{
				"a": &staticProvider{status: HealthStatusHealthy},
				"b": &staticProvider{status: HealthStatusUnhealthy},
			},
			optional:      map[string]bool{"b": true},
			wantHealth:    HealthStatusUnhealthy,
			wantReadiness: HealthStatusHealthy,
		},
		{
			name: "required degraded",
			providers: map[string]HealthProvider{
				"a": &staticProvider{status: HealthStatusDegraded},
			},
			wantHealth:    HealthStatusDegraded,
			wantReadiness: HealthStatusDegraded,
		},
		{
			name: "provider error becomes unhealthy",
			providers: map[string]HealthProvider{
				"a": &staticProvider{err: errors.New("connection refused")},
			},
			wantHealth:    HealthStatusUnhealthy,
			wantReadiness: HealthStatusUnhealthy,
		},
		{
			name: "panic becomes unhealthy",
			providers: map[string]HealthProvider{
				"a": panickingProvider{},
			},
			wantHealth:    HealthStatusUnhealthy,
			wantReadiness: HealthStatusUnhealthy,
		},
		{
			name: "empty provider is unknown",
			providers: map[string]HealthProvider{
				"a": emptyProvider{},
				"b": &staticProvider{status: HealthStatusDegraded},
			},
			wantHealth:    HealthStatusUnknown,
			wantReadiness: HealthStatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAggregateHealthService()
			for name, provider := range tt.providers {
				require.NoError(t, svc.RegisterProvider(name, provider, tt.optional[name]))
			}

			result, err := svc.Collect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantHealth, result.Health)
			assert.Equal(t, tt.wantReadiness, result.Readiness)
			assert.Len(t, result.Reports, len(tt.providers))
			assert.False(t, result.GeneratedAt.IsZero())
		})
	}
}

func TestAggregateHealthTimeout(t *testing.T) {
	svc := NewAggregateHealthServiceWithConfig(AggregateHealthServiceConfig{DefaultTimeout: 20 * time.Millisecond})
	require.NoError(t, svc.RegisterProvider("slow", slowProvider{}, false))

	start := time.Now()
	result, err := svc.Collect(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, HealthStatusUnhealthy, result.Health)
	assert.Equal(t, "slow", result.Reports[0].Module)
}

func TestAggregateHealthCache(t *testing.T) {
	provider := &staticProvider{status: HealthStatusHealthy}
	svc := NewAggregateHealthServiceWithConfig(AggregateHealthServiceConfig{
		CacheEnabled: true,
		CacheTTL:     time.Hour,
	})
	require.NoError(t, svc.RegisterProvider("a", provider, false))

	_, err := svc.Collect(context.Background())
	require.NoError(t, err)
	_, err = svc.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.calls.Load())

	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestAggregateHealthProviderRegistration(t *testing.T) {
	svc := NewAggregateHealthService()
	provider := &staticProvider{status: HealthStatusHealthy}

	assert.ErrorIs(t, svc.RegisterProvider("", provider, false), ErrModuleNameEmpty)
	assert.ErrorIs(t, svc.RegisterProvider("a", nil, false), ErrProviderNil)
	require.NoError(t, svc.RegisterProvider("a", provider, false))
	assert.ErrorIs(t, svc.RegisterProvider("a", provider, false), ErrProviderAlreadyExists)
	assert.Equal(t, []string{"a"}, svc.ProviderNames())

	require.NoError(t, svc.UnregisterProvider("a"))
	assert.ErrorIs(t, svc.UnregisterProvider("a"), ErrProviderNotRegistered)
}

func TestAggregateHealthEmitsStatusChange(t *testing.T) {
	app, _ := newTestApp(t)

	var (
		mu      sync.Mutex
		changes []map[string]any
	)
	require.NoError(t, app.RegisterObserver(NewFunctionalObserver("health-watch", func(_ context.Context, event CloudEvent) error {
		var data map[string]any
		if err := event.DataAs(&data); err != nil {
			return err
		}
		mu.Lock()
		changes = append(changes, data)
		mu.Unlock()
		return nil
	}), EventTypeHealthStatusChanged))

	provider := &staticProvider{status: HealthStatusHealthy}
	svc := NewAggregateHealthServiceWithConfig(AggregateHealthServiceConfig{})
	svc.SetEventSubject(app)
	require.NoError(t, svc.RegisterProvider("a", provider, false))

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	provider.status = HealthStatusUnhealthy
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, changes, 1)
	assert.Equal(t, "healthy", changes[0]["previous"])
	assert.Equal(t, "unhealthy", changes[0]["current"])
}

func TestHealthStatusJSON(t *testing.T) {
	b, err := HealthStatusDegraded.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"degraded"`, string(b))
	assert.True(t, HealthStatusHealthy.IsHealthy())
	assert.False(t, HealthStatusUnknown.IsHealthy())
}
