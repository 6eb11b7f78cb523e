// Package dial opens a curve store from a driver name and a DSN.
package dial

import (
	"context"
	"fmt"
	"strings"

	"github.com/xraph/grove"

	"github.com/xraph/curve/store"
	"github.com/xraph/curve/store/memory"
	"github.com/xraph/curve/store/mongo"
	"github.com/xraph/curve/store/postgres"
	"github.com/xraph/curve/store/sqlite"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// DefaultMongoDatabase is used when Config.Database is empty.
const DefaultMongoDatabase = "curve"

// Config selects and locates a store backend.
type Config struct {
	// Driver is one of memory, sqlite, postgres or mongo (default: memory).
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// DSN is a file path for sqlite and a connection URI for postgres and
	// mongo. Ignored by memory.
	DSN string `json:"dsn" mapstructure:"dsn" yaml:"dsn"`

	// Database names the mongo database.
	Database string `json:"database" mapstructure:"database" yaml:"database"`
}

// Open connects to the configured backend. The caller owns the returned
// store and must Close it.
func Open(ctx context.Context, cfg Config) (store.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver != "" && driver != DriverMemory && cfg.DSN == "" {
		return nil, fmt.Errorf("dial: driver %q requires a dsn", driver)
	}

	switch driver {
	case "", DriverMemory:
		return memory.New(), nil
	case DriverSQLite, "sqlite3":
		s, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres, "postgresql", "pg":
		s, err := postgres.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMongo, "mongodb":
		name := cfg.Database
		if name == "" {
			name = DefaultMongoDatabase
		}
		s, err := mongo.Connect(ctx, cfg.DSN, name)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("dial: unknown store driver %q", cfg.Driver)
	}
}

// FromGrove wraps an open grove database in the store for its driver. The
// store shares db; closing either closes both.
func FromGrove(db *grove.DB) (store.Store, error) {
	if db == nil {
		return nil, fmt.Errorf("dial: nil grove database")
	}
	switch name := db.Driver().Name(); name {
	case "sqlite":
		return sqlite.New(db), nil
	case "pg":
		return postgres.New(db), nil
	case "mongo":
		return mongo.New(db), nil
	default:
		return nil, fmt.Errorf("dial: unsupported grove driver %q", name)
	}
}
