package kiln

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln/errors"
)

func TestCheckHealthAggregation(t *testing.T) {
	tests := []struct {
		name     string
		results  map[string]HealthResult
		expected HealthStatus
	}{
		{
			name: "all healthy",
			results: map[string]HealthResult{
				"db":    Healthy("connected"),
				"cache": Healthy("warm"),
			},
			expected: HealthStatusHealthy,
		},
		{
			name: "degraded dominates healthy",
			results: map[string]HealthResult{
				"db":    Healthy("connected"),
				"cache": Degraded("high latency"),
			},
			expected: HealthStatusDegraded,
		},
		{
			name: "unhealthy dominates all",
			results: map[string]HealthResult{
				"db":    Unhealthy("connection refused"),
				"cache": Degraded("high latency"),
				"queue": Healthy("draining"),
			},
			expected: HealthStatusUnhealthy,
		},
		{
			name: "unknown counts as degraded",
			results: map[string]HealthResult{
				"db":      Healthy("connected"),
				"unclear": {},
			},
			expected: HealthStatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New()
			require.NoError(t, engine.Initialize(context.Background()))

			for name, result := range tt.results {
				result := result
				require.NoError(t, engine.RegisterHealthCheck(name, func(ctx context.Context) HealthResult {
					return result
				}))
			}

			report := engine.CheckHealth(context.Background())
			assert.Equal(t, tt.expected, report.Status)
			// Two built-in checks plus the registered ones.
			assert.Len(t, report.Checks, len(tt.results)+2)
		})
	}
}

func TestCheckHealthPanicContained(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Initialize(context.Background()))

	require.NoError(t, engine.RegisterHealthCheck("explosive", func(ctx context.Context) HealthResult {
		panic("boom")
	}))

	report := engine.CheckHealth(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, report.Status)

	explosive, ok := report.Checks["explosive"]
	require.True(t, ok)
	assert.Equal(t, HealthStatusUnhealthy, explosive.Status)
	assert.Contains(t, explosive.Message, "boom")
	assert.Equal(t, "explosive", explosive.Name)
}

func TestRegisterHealthCheckRejections(t *testing.T) {
	engine := New()
	ok := func(ctx context.Context) HealthResult { return Healthy("fine") }

	err := engine.RegisterHealthCheck("", ok)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	require.Error(t, engine.RegisterHealthCheck("nilcheck", nil))

	require.NoError(t, engine.RegisterHealthCheck("db", ok))
	err = engine.RegisterHealthCheck("db", ok)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestBuiltinStatusCheck(t *testing.T) {
	engine := New()
	ctx := context.Background()

	report := engine.CheckHealth(ctx)
	assert.Equal(t, HealthStatusDegraded, report.Checks["kiln.status"].Status,
		"a created but not yet running engine is degraded")

	require.NoError(t, engine.Initialize(ctx))
	report = engine.CheckHealth(ctx)
	check := report.Checks["kiln.status"]
	assert.Equal(t, HealthStatusHealthy, check.Status)
	assert.Equal(t, "running", check.Details["status"])

	require.NoError(t, engine.Shutdown(ctx))
	report = engine.CheckHealth(ctx)
	assert.Equal(t, HealthStatusUnhealthy, report.Checks["kiln.status"].Status)
}

func TestBuiltinRegistryCheck(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Register("svc", struct{}{}))

	report := engine.CheckHealth(context.Background())
	check := report.Checks["kiln.registry"]
	assert.Equal(t, HealthStatusHealthy, check.Status)
	assert.Equal(t, 2, check.Details["components"])
}

func TestHealthResultWithDetail(t *testing.T) {
	result := Healthy("fine").WithDetail("region", "eu-west-1").WithDetail("shards", 4)
	assert.Equal(t, "eu-west-1", result.Details["region"])
	assert.Equal(t, 4, result.Details["shards"])
}

func TestHealthReportTracksErrorCount(t *testing.T) {
	engine := New()
	ctx := context.Background()

	require.NoError(t, engine.Register("a", struct{}{}, WithDependencies("ghost")))
	require.Error(t, engine.Initialize(ctx))

	report := engine.CheckHealth(ctx)
	assert.Equal(t, 1, report.ErrorCount)
}
