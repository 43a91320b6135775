package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestCreateDir(t *testing.T) {
	if got := createDir("/custom/migrations"); got != "/custom/migrations" {
		t.Fatalf("expected MIGRATIONS_DIR override, got %q", got)
	}
	if got := createDir(""); got != "db/migrations" {
		t.Fatalf("expected default migrations dir, got %q", got)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run("sideways", "")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestCreate_WritesSQLMigration(t *testing.T) {
	dir := t.TempDir()

	if err := create(dir, "add_books_index", zaptest.NewLogger(t)); err != nil {
		t.Fatalf("create: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*_add_books_index.sql"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one migration file, got %v (%v)", matches, err)
	}
	b, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "-- +goose Up") {
		t.Fatalf("generated migration missing goose directive:\n%s", b)
	}
}

func TestCreate_RequiresName(t *testing.T) {
	if err := create(t.TempDir(), "", zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected error for empty name")
	}
}
