package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 24*time.Hour, cfg.RedisTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "kayak", cfg.BookingStyle)
	assert.Equal(t, 14, cfg.DefaultTripDays)
	assert.Equal(t, 7, cfg.DefaultLeadDays)
	assert.Equal(t, "airports", cfg.MongoDatabase)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("REDIS_TTL", "10m")
	t.Setenv("TIMEZONE", "Asia/Jakarta")
	t.Setenv("BOOKING_STYLE", "QUERY")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.RedisTTL)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
	assert.Equal(t, "query", cfg.BookingStyle)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\ndefault_trip_days: 10\nlog_format: console\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEFAULT_LEAD_DAYS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 10, cfg.DefaultTripDays)
	assert.Equal(t, 3, cfg.DefaultLeadDays)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"unknown timezone": {"TIMEZONE", "Mars/Olympus"},
		"zero trip length": {"DEFAULT_TRIP_DAYS", "0"},
		"negative lead":    {"DEFAULT_LEAD_DAYS", "-1"},
		"log format":       {"LOG_FORMAT", "xml"},
		"rate limit":       {"RATE_LIMIT_BURST", "0"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})
}
