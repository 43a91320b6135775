package testutil

import (
	"context"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"bookstore/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.uber.org/zap/zaptest"
)

// TestDSNEnv points the integration tests at an existing database instead of
// a throwaway container.
const TestDSNEnv = "DB_TEST_DSN"

// StartPostgres returns a pool connected to a migrated, empty database. It
// uses DB_TEST_DSN when set and otherwise starts a postgres container, which
// is purged when the test finishes. The test is skipped in -short mode or
// when Docker is unavailable.
func StartPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		dsn = startContainer(t)
	}

	logger := zaptest.NewLogger(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.Open(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(ctx, pool, "", logger); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	ResetBooks(t, pool)
	return pool
}

func startContainer(t *testing.T) string {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}
	pool.MaxWait = time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=books_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("purge postgres: %v", err)
		}
	})

	addr := net.JoinHostPort("localhost", resource.GetPort("5432/tcp"))
	dsn := fmt.Sprintf("postgres://postgres:postgres@%s/books_test?sslmode=disable", addr)

	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		defer p.Close()
		return p.Ping(ctx)
	})
	if err != nil {
		t.Fatalf("postgres never became ready: %v", err)
	}
	return dsn
}

// ResetBooks empties the books table and restarts its insertion sequence.
func ResetBooks(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "TRUNCATE books RESTART IDENTITY"); err != nil {
		t.Fatalf("reset books: %v", err)
	}
}
