package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
)

func TestSpanWithoutInit(t *testing.T) {
	// No Init: spans must be safe no-ops.
	ctx, span := NewSpan(context.Background(), "spawn.test")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetAttribute("template", "enemy")
	span.SetAttribute("count", 3)
	span.End()
}

func TestLifecycleTracerPropagatesError(t *testing.T) {
	lt := NewLifecycleTracer("enemy")

	wantErr := spawnerrors.New(spawnerrors.ErrorTypeHost, "activation failed")
	err := lt.Trace(context.Background(), "spawn", func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, error(wantErr))

	err = lt.Trace(context.Background(), "despawn", func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig("arena-server")
	assert.Equal(t, "arena-server", cfg.ServiceName)
	assert.Greater(t, cfg.SamplingRate, 0.0)
}
