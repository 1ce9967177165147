package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// applicationName tags conversion log sessions in pg_stat_activity unless
// the DSN names one.
const applicationName = "workouthub"

// ErrSchemaMissing is returned by New when the conversion_logs table does
// not exist yet.
var ErrSchemaMissing = errors.New("conversion_logs table missing, run migrations first")

// DB is the conversion log. The server handlers and the validate workers
// share one DB.
type DB struct {
	Pool *pgxpool.Pool
}

// New connects to the conversion log at dsn and checks that its table has
// been migrated.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := poolConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	var migrated bool
	if err := pool.QueryRow(ctx, `SELECT to_regclass('conversion_logs') IS NOT NULL`).Scan(&migrated); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging conversion log: %w", err)
	}
	if !migrated {
		pool.Close()
		return nil, ErrSchemaMissing
	}
	return &DB{Pool: pool}, nil
}

func poolConfig(dsn string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing conversion log dsn: %w", err)
	}
	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	return cfg, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations applies the pending conversion log migrations from
// migrationsPath and returns the resulting schema version.
func RunMigrations(dsn, migrationsPath string) (uint, error) {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return 0, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("running migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("conversion log schema version %d is dirty", version)
	}
	return version, nil
}
