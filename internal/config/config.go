// Package config loads the policy limits and defaults the compiler and
// verifier run under. Grounded on the teacher's pkg/config/config.go: a
// flat struct populated from environment variables with sane defaults,
// overridable by CLI flags (flags win).
package config

import (
	"os"
	"strconv"

	"github.com/axm-labs/shard/internal/merkle"
)

// Config holds the resource policy limits and default suite for a
// compile/verify invocation.
type Config struct {
	MaxFileBytes         int64
	MaxTotalScannedBytes int64
	MaxManifestBytes     int64
	MaxFileCount         int
	DefaultSuite         string
	OTLPEndpoint         string
	OTLPEnabled          bool
}

// Load reads configuration from environment variables, falling back to
// conservative production defaults for any unset value.
func Load() *Config {
	return &Config{
		MaxFileBytes:         getEnvInt64("AXM_SHARD_MAX_FILE_BYTES", 256*1024*1024),
		MaxTotalScannedBytes: getEnvInt64("AXM_SHARD_MAX_TOTAL_BYTES", 4*1024*1024*1024),
		MaxManifestBytes:     getEnvInt64("AXM_SHARD_MAX_MANIFEST_BYTES", 1*1024*1024),
		MaxFileCount:         int(getEnvInt64("AXM_SHARD_MAX_FILE_COUNT", 100000)),
		DefaultSuite:         getEnv("AXM_SHARD_DEFAULT_SUITE", "legacy"),
		OTLPEndpoint:         getEnv("AXM_SHARD_OTLP_ENDPOINT", "localhost:4317"),
		OTLPEnabled:          getEnvBool("AXM_SHARD_OTLP_ENABLED", false),
	}
}

// Limits projects the policy-limit fields onto merkle.Limits, the shape the
// compiler and verifier's file-selection walk actually consumes.
func (c *Config) Limits() merkle.Limits {
	return merkle.Limits{
		MaxFileBytes:         c.MaxFileBytes,
		MaxTotalScannedBytes: c.MaxTotalScannedBytes,
		MaxFileCount:         c.MaxFileCount,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
