// Package storage opens the store backend named by configuration.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/store/memory"
	"github.com/xraph/skydesk/store/mongo"
	"github.com/xraph/skydesk/store/postgres"
	"github.com/xraph/skydesk/store/sqlite"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config selects and locates a backend.
type Config struct {
	Driver        string `json:"driver" mapstructure:"driver" yaml:"driver"`
	SQLitePath    string `json:"sqlite_path" mapstructure:"sqlite_path" yaml:"sqlite_path"`
	PostgresURL   string `json:"postgres_url" mapstructure:"postgres_url" yaml:"postgres_url"`
	MongoURI      string `json:"mongo_uri" mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `json:"mongo_database" mapstructure:"mongo_database" yaml:"mongo_database"`
}

// Open returns a connected store for cfg. An empty driver means memory.
// The caller owns the store and must Close it.
func Open(ctx context.Context, cfg Config) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return memory.New(), nil

	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("storage: sqlite driver needs a path")
		}
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil

	case DriverPostgres, "pg":
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("storage: postgres driver needs a url")
		}
		s, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return s, nil

	case DriverMongo, "mongodb":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("storage: mongo driver needs a uri")
		}
		name := cfg.MongoDatabase
		if name == "" {
			name = "skydesk"
		}
		s, err := mongo.Open(cfg.MongoURI, name)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
