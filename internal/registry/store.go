// Package registry resolves map ids to validated levels. Maps come from the
// embedded built-in set or from a Store backed by a JSON file or SQL database.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// ErrMapNotFound is returned when no source holds the requested map.
var ErrMapNotFound = errors.New("map not found")

// Store persists map configurations.
type Store interface {
	SaveMap(ctx context.Context, cfg *world.MapConfig) error
	LoadMap(ctx context.Context, id string) (*world.MapConfig, error)
	ListMaps(ctx context.Context) ([]string, error)
	Close() error
}

// StoreConfig selects and configures a Store.
type StoreConfig struct {
	// Driver is "json", "sqlite" or "postgres". Empty keeps maps in memory.
	Driver string `yaml:"driver"`
	// Path is the JSON file or SQLite database file.
	Path string `yaml:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn"`
	// ConnectTimeout bounds the retried initial ping of SQL stores.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DefaultStoreConfig keeps generated maps in a JSON file under data/.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Driver:         "json",
		Path:           "data/maps.json",
		ConnectTimeout: 15 * time.Second,
	}
}

// OpenStore opens the store described by cfg.
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewJSONStore("")
	case "json":
		return NewJSONStore(cfg.Path)
	case string(DialectSQLite):
		return OpenSQLStore(ctx, NewDialect(DialectSQLite), cfg.Path, cfg.ConnectTimeout)
	case string(DialectPostgres):
		return OpenSQLStore(ctx, NewDialect(DialectPostgres), cfg.DSN, cfg.ConnectTimeout)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
