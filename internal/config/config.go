// Package config loads the skydesk server configuration from environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/skydesk/internal/storage"
)

// Config holds all runtime configuration values for the server binary.
type Config struct {
	Env      string
	Port     string
	LogLevel slog.Level

	Store        storage.Config
	StoreTimeout time.Duration

	JWTSecret string

	AMQPURL      string
	OTLPEndpoint string

	FlightCapacity  int
	EnforceCapacity bool
	DepartedGrace   time.Duration
	SweepInterval   time.Duration

	RateLimit RateLimitConfig
	Redis     RedisConfig
}

// Load reads the configuration. JWT_SECRET is required; everything else
// has a default.
func Load() (Config, error) {
	cfg := Config{
		Env:      envStr("APP_ENV", "dev"),
		Port:     envStr("APP_PORT", "8080"),
		LogLevel: parseLevel(envStr("LOG_LEVEL", "info")),

		Store: storage.Config{
			Driver:        envStr("STORE_DRIVER", storage.DriverSQLite),
			SQLitePath:    envStr("SQLITE_PATH", "skydesk.db"),
			PostgresURL:   os.Getenv("POSTGRES_URL"),
			MongoURI:      os.Getenv("MONGO_URI"),
			MongoDatabase: envStr("MONGO_DATABASE", "skydesk"),
		},
		StoreTimeout: envDur("STORE_TIMEOUT", 30*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		FlightCapacity:  envInt("FLIGHT_CAPACITY", 15),
		EnforceCapacity: envBool("ENFORCE_CAPACITY", false),
		DepartedGrace:   envDur("DEPARTED_GRACE", 2*time.Hour),
		SweepInterval:   envDur("SWEEP_INTERVAL", 10*time.Minute),

		RateLimit: LoadRateLimitConfig(),
		Redis:     LoadRedisConfig(),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: missing required env var JWT_SECRET")
	}
	if cfg.FlightCapacity < 1 {
		return Config{}, fmt.Errorf("config: FLIGHT_CAPACITY must be positive, got %d", cfg.FlightCapacity)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
