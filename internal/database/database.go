// Package database owns the Postgres connection pool lifecycle and schema
// migrations.
package database

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"bookstore/db/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Open creates a pool for dsn and verifies it with a ping. The caller owns
// the pool and must Close it on shutdown.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
	}

	logger.Info("database connection OK", zap.String("dsn", RedactDSN(dsn)))
	return pool, nil
}

// NewMigrator returns a goose provider over pool. An empty dir selects the
// migrations embedded in the binary. The returned close func releases the
// database/sql handle but leaves pool open.
func NewMigrator(pool *pgxpool.Pool, dir string) (*goose.Provider, func() error, error) {
	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, MigrationsFS(dir))
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider, db.Close, nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) error {
	provider, closeDB, err := NewMigrator(pool, dir)
	if err != nil {
		return err
	}
	defer closeDB()

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		LogMigration(logger, "migration applied", res)
	}
	if len(results) == 0 {
		logger.Info("database schema up to date")
	}
	return nil
}

// LogMigration writes one goose result as a structured log line.
func LogMigration(logger *zap.Logger, msg string, res *goose.MigrationResult) {
	logger.Info(msg,
		zap.Int64("version", res.Source.Version),
		zap.String("source", res.Source.Path),
		zap.String("direction", res.Direction),
		zap.Duration("duration", res.Duration),
	)
}

// MigrationsFS returns the embedded migrations, or dir on disk when set.
func MigrationsFS(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

// RedactDSN hides the credentials of a URL style DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
