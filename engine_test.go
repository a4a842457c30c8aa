package kiln

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{
			name: "default config",
			opts: nil,
			want: "kiln",
		},
		{
			name: "custom name",
			opts: []Option{WithName("test-engine")},
			want: "test-engine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(tt.opts...)
			if engine == nil {
				t.Fatal("expected engine, got nil")
			}
			if got := engine.Name(); got != tt.want {
				t.Errorf("engine.Name() = %v, want %v", got, tt.want)
			}
			if got := engine.Status(); got != StatusCreated {
				t.Errorf("engine.Status() = %v, want %v", got, StatusCreated)
			}
		})
	}
}

func TestNewRegistersOwnHandle(t *testing.T) {
	engine := New()

	require.True(t, engine.Has(EngineComponentName))

	resolved, err := engine.Resolve(context.Background(), EngineComponentName)
	require.NoError(t, err)
	assert.Same(t, engine, resolved)
}

func TestGetSystemStatus(t *testing.T) {
	engine := New(WithName("status-test"), WithVersion("9.9.9"))

	status := engine.GetSystemStatus()
	assert.NotEmpty(t, status.ID)
	assert.Equal(t, "status-test", status.Name)
	assert.Equal(t, "9.9.9", status.Version)
	assert.Equal(t, StatusCreated, status.Status)
	assert.Zero(t, status.Uptime)
	assert.Equal(t, 1, status.Components) // the engine's own handle

	require.NoError(t, engine.Initialize(context.Background()))
	status = engine.GetSystemStatus()
	assert.Equal(t, StatusRunning, status.Status)
	assert.False(t, status.StartTime.IsZero())

	require.NoError(t, engine.Shutdown(context.Background()))
	status = engine.GetSystemStatus()
	assert.Equal(t, StatusShutdown, status.Status)
	assert.True(t, status.StartTime.IsZero())
	assert.Zero(t, status.Uptime)
}

func TestGetStats(t *testing.T) {
	engine := New()

	require.NoError(t, engine.Register("a", struct{}{}))
	require.NoError(t, engine.Register("b", struct{}{}))
	require.NoError(t, engine.RegisterManifest("plugin", &Manifest{}))

	stats := engine.GetStats()
	assert.Equal(t, 3, stats.Components) // a, b, and the engine handle
	assert.Equal(t, 1, stats.Manifests)
	assert.Equal(t, 2, stats.HealthChecks) // built-ins
	assert.Equal(t, 0, stats.Instances)

	_, err := engine.Resolve(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 1, engine.GetStats().Instances)
}

func TestErrorHistoryEviction(t *testing.T) {
	engine := New(WithErrorHistorySize(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		engine.captureError(ctx, "test", fmt.Errorf("failure %d", i))
	}

	captured := engine.Errors()
	require.Len(t, captured, 3)
	assert.EqualError(t, captured[0].Err, "failure 2")
	assert.EqualError(t, captured[2].Err, "failure 4")
}

func TestErrorSinkFallbackWhenAbsent(t *testing.T) {
	engine := New()
	ctx := context.Background()

	// No sink configured: capture must not panic and must still record.
	engine.captureError(ctx, "test", errors.New("boom"))
	assert.Len(t, engine.Errors(), 1)
}

type panickingSink struct{}

func (panickingSink) ReportError(ctx context.Context, err error) {
	panic("sink exploded")
}

func TestErrorSinkPanicIsContained(t *testing.T) {
	engine := New(WithErrorSink("reporter"))
	require.NoError(t, engine.Register("reporter", panickingSink{}))
	require.NoError(t, engine.Initialize(context.Background()))

	// The sink panics on every report; the engine must survive and still
	// record the error in its history.
	engine.captureError(context.Background(), "test", errors.New("boom"))
	assert.NotEmpty(t, engine.Errors())
}
