package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, SourceEmbedded, cfg.Catalog.Source)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.QuietPeriod)
	assert.Equal(t, 10*time.Second, cfg.Backend.CallTimeout)
	assert.Equal(t, 5*time.Minute, cfg.JWT.SweepInterval)
	assert.Equal(t, 1.0, cfg.Backend.LatencyScale)
	assert.Equal(t, "admin@example.com", cfg.Admin.Marker)
	assert.Equal(t, TrafficMemory, cfg.Traffic.Backend)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SEARCH_DEBOUNCE_MS", "250")
	t.Setenv("BACKEND_CALL_TIMEOUT_MS", "0")
	t.Setenv("BACKEND_LATENCY_SCALE", "0.1")
	t.Setenv("ADMIN_MARKER", "root@corp.test")
	t.Setenv("TRAFFIC_BACKEND", "Redis")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.QuietPeriod)
	assert.Zero(t, cfg.Backend.CallTimeout)
	assert.InDelta(t, 0.1, cfg.Backend.LatencyScale, 1e-9)
	assert.Equal(t, "root@corp.test", cfg.Admin.Marker)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown source":    {"CATALOG_SOURCE": "ftp"},
		"s3 without bucket": {"CATALOG_SOURCE": "s3"},
		"unknown traffic":   {"TRAFFIC_BACKEND": "kafka"},
		"zero debounce":     {"SEARCH_DEBOUNCE_MS": "0"},
		"negative latency":  {"BACKEND_LATENCY_SCALE": "-1"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "1", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:1/d?sslmode=disable", c.DSN())
	c.URL = "postgres://x"
	assert.Equal(t, "postgres://x", c.DSN())
}
