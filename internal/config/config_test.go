package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "legacy", cfg.DefaultSuite)
	assert.False(t, cfg.OTLPEnabled)
	assert.Greater(t, cfg.MaxFileBytes, int64(0))
}

func TestLoadRespectsEnv(t *testing.T) {
	t.Setenv("AXM_SHARD_DEFAULT_SUITE", "pq")
	cfg := Load()
	assert.Equal(t, "pq", cfg.DefaultSuite)
}

func TestLimitsProjectsPolicyFields(t *testing.T) {
	cfg := Load()
	lim := cfg.Limits()
	assert.Equal(t, cfg.MaxFileBytes, lim.MaxFileBytes)
	assert.Equal(t, cfg.MaxTotalScannedBytes, lim.MaxTotalScannedBytes)
	assert.Equal(t, cfg.MaxFileCount, lim.MaxFileCount)
}
