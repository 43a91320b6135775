package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/logger"

	"go.uber.org/zap"
)

var sampleBooks = []book.Book{
	{
		ISBN:      "0123456789",
		AmazonURL: "http://amazon.com/book1",
		Author:    "That One Guy",
		Language:  "Esperanto",
		Pages:     1000,
		Publisher: "Random Peguin",
		Title:     "Saluton",
		Year:      2022,
	},
	{
		ISBN:      "0987654321",
		AmazonURL: "http://amazon.com/book2",
		Author:    "Some One",
		Language:  "English",
		Pages:     421,
		Publisher: "Random Peguin",
		Title:     "Hello",
		Year:      2021,
	},
}

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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.Open(ctx, cfg.DatabaseDSN(), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, cfg.Database.MigrationsDir, log); err != nil {
		return err
	}

	service := book.NewService(book.NewPostgresRepo(pool, cfg.Database.StatementTimeout))
	inserted, err := seed(ctx, service, sampleBooks, log)
	if err != nil {
		return err
	}
	log.Info("seed complete", zap.Int("inserted", inserted), zap.Int("total", len(sampleBooks)))
	return nil
}

// seed creates each book, skipping ISBNs that are already stored.
func seed(ctx context.Context, service *book.Service, books []book.Book, log *zap.Logger) (int, error) {
	inserted := 0
	for _, b := range books {
		_, err := service.Create(ctx, book.NewCreateInput(b))
		switch {
		case err == nil:
			inserted++
			log.Info("book seeded", zap.String("isbn", b.ISBN), zap.String("title", b.Title))
		case book.IsDuplicate(err):
			log.Info("book already present", zap.String("isbn", b.ISBN))
		default:
			return inserted, fmt.Errorf("seed book %s: %w", b.ISBN, err)
		}
	}
	return inserted, nil
}
