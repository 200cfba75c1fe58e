package db

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
)

// DefaultMigrationsTable records applied versions.
const DefaultMigrationsTable = "schema_migrations"

// MigrateOption configures Migrate.
type MigrateOption func(*migrateConfig)

type migrateConfig struct {
	log   *slog.Logger
	table string
}

// WithMigrationLogger logs each applied migration.
func WithMigrationLogger(l *slog.Logger) MigrateOption {
	return func(c *migrateConfig) { c.log = l }
}

// WithMigrationsTable overrides DefaultMigrationsTable.
func WithMigrationsTable(name string) MigrateOption {
	return func(c *migrateConfig) { c.table = name }
}

// Migrate applies every pending SQL migration in migrations. A Postgres
// advisory lock keeps concurrently starting replicas from racing.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, opts ...MigrateOption) error {
	cfg := migrateConfig{log: slog.New(slog.DiscardHandler), table: DefaultMigrationsTable}
	for _, opt := range opts {
		opt(&cfg)
	}

	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}

	// The sql.DB shares the pool's connections, so it is not closed here.
	sqlDB := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations,
		goose.WithTableName(cfg.table),
		goose.WithSessionLocker(locker),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}
	for _, r := range results {
		cfg.log.InfoContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}
