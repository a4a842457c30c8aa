package kiln

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln/errors"
)

func TestRegisterShapes(t *testing.T) {
	tests := []struct {
		name           string
		implementation any
		wantKind       implKind
	}{
		{
			name: "constructor",
			implementation: func(deps Dependencies) (any, error) {
				return "built", nil
			},
			wantKind: kindConstructor,
		},
		{
			name: "typed constructor",
			implementation: Constructor(func(deps Dependencies) (any, error) {
				return "built", nil
			}),
			wantKind: kindConstructor,
		},
		{
			name: "factory",
			implementation: func(ctx context.Context, deps Dependencies) (any, error) {
				return "made", nil
			},
			wantKind: kindFactory,
		},
		{
			name: "typed factory",
			implementation: Factory(func(ctx context.Context, deps Dependencies) (any, error) {
				return "made", nil
			}),
			wantKind: kindFactory,
		},
		{
			name:           "pre-built instance",
			implementation: &struct{ V int }{V: 7},
			wantKind:       kindInstance,
		},
		{
			name:           "plain function is an instance",
			implementation: func() {},
			wantKind:       kindInstance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New()
			require.NoError(t, engine.Register("component", tt.implementation))

			registration, ok := engine.Registration("component")
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, registration.kind)
			assert.True(t, registration.Singleton)
		})
	}
}

func TestRegisterRejections(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		engine := New()
		err := engine.Register("", struct{}{})
		require.Error(t, err)
		assert.True(t, errors.IsConfiguration(err))
	})

	t.Run("duplicate name", func(t *testing.T) {
		engine := New()
		require.NoError(t, engine.Register("db", struct{}{}))
		err := engine.Register("db", struct{}{})
		require.Error(t, err)
		assert.True(t, errors.IsComponentAlreadyExists(err))
	})

	t.Run("reserved engine name", func(t *testing.T) {
		engine := New()
		err := engine.Register(EngineComponentName, struct{}{})
		require.Error(t, err)
		assert.True(t, errors.IsComponentAlreadyExists(err))
	})

	t.Run("after shutdown", func(t *testing.T) {
		engine := New()
		ctx := context.Background()
		require.NoError(t, engine.Initialize(ctx))
		require.NoError(t, engine.Shutdown(ctx))

		err := engine.Register("late", struct{}{})
		require.Error(t, err)
		assert.True(t, errors.IsConfiguration(err))
	})
}

func TestRegisterOptions(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Register("svc", struct{}{},
		WithDependencies("a", "b"),
		WithTransient()))

	registration, ok := engine.Registration("svc")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, registration.Dependencies)
	assert.False(t, registration.Singleton)
}

func TestMustRegisterChains(t *testing.T) {
	engine := New()
	engine.MustRegister("a", struct{}{}).
		MustRegister("b", struct{}{}, WithDependencies("a"))

	assert.True(t, engine.Has("a"))
	assert.True(t, engine.Has("b"))

	assert.Panics(t, func() {
		engine.MustRegister("a", struct{}{})
	})
}

func TestRegisterManifest(t *testing.T) {
	engine := New()

	require.NoError(t, engine.RegisterManifest("runner", &Manifest{
		Schema: Schema{"name": {Required: true, Type: FieldTypeString}},
	}))
	assert.True(t, engine.HasManifest("runner"))

	t.Run("duplicate type", func(t *testing.T) {
		err := engine.RegisterManifest("runner", &Manifest{})
		require.Error(t, err)
		assert.True(t, errors.IsComponentAlreadyExists(err))
	})

	t.Run("empty type", func(t *testing.T) {
		err := engine.RegisterManifest("", &Manifest{})
		require.Error(t, err)
		assert.True(t, errors.IsConfiguration(err))
	})

	t.Run("nil manifest", func(t *testing.T) {
		err := engine.RegisterManifest("other", nil)
		require.Error(t, err)
		assert.True(t, errors.IsConfiguration(err))
	})

	t.Run("after shutdown", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, engine.Initialize(ctx))
		require.NoError(t, engine.Shutdown(ctx))

		err := engine.RegisterManifest("late", &Manifest{})
		require.Error(t, err)
		assert.True(t, errors.IsConfiguration(err))
	})
}

func TestComponentsReturnsRegistrationOrder(t *testing.T) {
	engine := New()
	engine.MustRegister("c", struct{}{}).
		MustRegister("a", struct{}{}).
		MustRegister("b", struct{}{})

	assert.Equal(t, []string{EngineComponentName, "c", "a", "b"}, engine.Components())
}
