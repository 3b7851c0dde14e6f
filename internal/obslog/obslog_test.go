package obslog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "axm-shard", cfg.ServiceName)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.False(t, cfg.Enabled)
	require.True(t, cfg.Insecure)
}

func TestNewProviderDisabledSkipsNetworkSetup(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Logger())
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
}

func TestStartStageReturnsAWorkingDoneFunc(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	ctx, done := p.StartStage(context.Background(), "test.stage")
	require.NotNil(t, ctx)
	done()
}

func TestShutdownOnDisabledProviderIsANoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, p.Shutdown(context.Background()))
}
