package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/logger"
	"bookstore/internal/server"

	"go.uber.org/zap"
)

// @title Bookstore API
// @version 1.0
// @description CRUD service for book records backed by PostgreSQL.
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.Open(ctx, cfg.DatabaseDSN(), log)
	if err != nil {
		log.Error("cannot open database", zap.Error(err))
		return err
	}
	defer dbPool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, dbPool, cfg.Database.MigrationsDir, log); err != nil {
			log.Error("cannot migrate database", zap.Error(err))
			return err
		}
	}

	bookRepository := book.NewPostgresRepo(dbPool, cfg.Database.StatementTimeout)
	bookService := book.NewService(bookRepository)
	bookHandler := book.NewHTTPHandler(bookService, log)

	router := server.NewRouter(ctx, cfg.Server, log, dbPool, bookHandler)
	return server.Run(ctx, cfg.Server, server.New(cfg.Server, router), nil, log)
}
