package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// SQLStore keeps maps in a SQL database, one row per map with the full
// configuration stored as JSON.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLStore connects with the dialect's driver, waits for the database
// to answer a ping and runs migrations. For SQLite, dsn is a file path and
// its directory is created.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string, connectTimeout time.Duration) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("sql store requires a path or dsn")
	}
	if _, ok := dialect.(*SQLiteDialect); ok {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ping(ctx, db, connectTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	s := &SQLStore{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// ping retries with exponential backoff until the database answers or the
// timeout elapses.
func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			logger.Debug("database ping failed", "attempt", attempt, "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(timeout),
	)
	return err
}

func (s *SQLStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS maps (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			config TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// SaveMap inserts or replaces a map.
func (s *SQLStore) SaveMap(ctx context.Context, cfg *world.MapConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal map %s: %w", cfg.ID, err)
	}

	query := rebind(s.dialect, `INSERT INTO maps (id, name, width, height, config)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			width = excluded.width,
			height = excluded.height,
			config = excluded.config,
			updated_at = CURRENT_TIMESTAMP`)
	if _, err := s.db.ExecContext(ctx, query, cfg.ID, cfg.Name, cfg.Width, cfg.Height, string(data)); err != nil {
		return fmt.Errorf("failed to save map %s: %w", cfg.ID, err)
	}
	return nil
}

// LoadMap returns the map with the given id.
func (s *SQLStore) LoadMap(ctx context.Context, id string) (*world.MapConfig, error) {
	var data string
	err := s.db.QueryRowContext(ctx, rebind(s.dialect, `SELECT config FROM maps WHERE id = ?`), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load map %s: %w", id, err)
	}
	return world.ParseMapConfig([]byte(data))
}

// ListMaps returns the stored map ids in sorted order.
func (s *SQLStore) ListMaps(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM maps ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan map id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
