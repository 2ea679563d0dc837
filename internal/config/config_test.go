package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 30*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 15, cfg.FlightCapacity)
	assert.Equal(t, 2*time.Hour, cfg.DepartedGrace)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.EnforceCapacity)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", "127.0.0.1:9000")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_URL", "postgres://localhost/skydesk")
	t.Setenv("ENFORCE_CAPACITY", "yes")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FLIGHT_CAPACITY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/skydesk", cfg.Store.PostgresURL)
	assert.True(t, cfg.EnforceCapacity)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 15, cfg.FlightCapacity, "unparsable values fall back to the default")
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsZeroCapacity(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("FLIGHT_CAPACITY", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestRateLimitClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "5s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 50*time.Second, cfg.TTL)
}

func TestRedisAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	assert.Equal(t, "cache:6379", LoadRedisConfig().Addr)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	assert.Equal(t, "redis:6380", LoadRedisConfig().Addr)
}

func TestNewRedisClientWithoutAddr(t *testing.T) {
	assert.Nil(t, NewRedisClient(t.Context(), RedisConfig{}))
}
