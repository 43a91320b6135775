package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/logger"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "db/migrations"

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create, reset")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	if err := run(*command, *name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(command, name string) error {
	if !validCommand(command) {
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create, reset", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.IsProduction(), cfg.Log.Level, nil)
	if err != nil {
		return err
	}
	defer logger.Sync(log)
	log = log.With(zap.String("env", cfg.Env))

	if command == "create" {
		return create(createDir(cfg.Database.MigrationsDir), name, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Open(ctx, cfg.DatabaseDSN(), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	provider, closeDB, err := database.NewMigrator(pool, cfg.Database.MigrationsDir)
	if err != nil {
		return err
	}
	defer closeDB()

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logResults(log, "migration applied", results)
		log.Info("migrations applied successfully", zap.Int("count", len(results)))
	case "down":
		res, err := provider.Down(ctx)
		if errors.Is(err, goose.ErrNoNextVersion) {
			log.Info("no migration to roll back")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
		database.LogMigration(log, "migration rolled back", res)
	case "reset":
		results, err := provider.DownTo(ctx, 0)
		if err != nil {
			return fmt.Errorf("failed to reset migrations: %w", err)
		}
		logResults(log, "migration rolled back", results)
		log.Info("migrations reset", zap.Int("count", len(results)))
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		for _, st := range statuses {
			fields := []zap.Field{
				zap.Int64("version", st.Source.Version),
				zap.String("source", st.Source.Path),
				zap.String("state", string(st.State)),
			}
			if !st.AppliedAt.IsZero() {
				fields = append(fields, zap.Time("applied_at", st.AppliedAt))
			}
			log.Info("migration status", fields...)
		}
	}
	return nil
}

func validCommand(command string) bool {
	switch command {
	case "up", "down", "status", "create", "reset":
		return true
	}
	return false
}

// createDir is where new migration files are written. Embedded migrations
// cannot be written to, so the source tree is used by default.
func createDir(configured string) string {
	if configured != "" {
		return configured
	}
	return defaultMigrationsDir
}

func create(dir, name string, log *zap.Logger) error {
	if name == "" {
		return errors.New("name is required for 'create' command")
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	log.Info("migration created", zap.String("name", name), zap.String("dir", dir))
	return nil
}

func logResults(log *zap.Logger, msg string, results []*goose.MigrationResult) {
	for _, res := range results {
		database.LogMigration(log, msg, res)
	}
}
