package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uptrace/bun"
)

func countRows(t *testing.T, db *DB, query string, args ...any) int {
	t.Helper()
	var n int
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(query, args...).Scan(ctx, &n)
	})
	if err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func TestApplyEmbeddedMigrations(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "embedded.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply embedded migrations: %v", err)
	}
	if err := ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("re-apply embedded migrations: %v", err)
	}

	if n := countRows(t, db, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'state_slots'`); n != 1 {
		t.Fatalf("expected state_slots table, got %d", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, "0001_state_slots.sql"); n != 1 {
		t.Fatalf("expected one recorded migration, got %d", n)
	}
}

func TestApplyMigrationsFromDirRunsEachFileOnce(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("0001_items.sql", `CREATE TABLE items (id INTEGER PRIMARY KEY);`)
	write("0002_seed.sql", `INSERT INTO items (id) VALUES (1); INSERT INTO items (id) VALUES (2);`)
	write("README.txt", `not a migration`)

	db, err := OpenDB(filepath.Join(t.TempDir(), "dir.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(context.Background(), db, dir); err != nil {
			t.Fatalf("apply migrations (pass %d): %v", i, err)
		}
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM items`); n != 2 {
		t.Fatalf("seed must run once, got %d rows", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM schema_migrations`); n != 2 {
		t.Fatalf("expected two recorded migrations, got %d", n)
	}
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0001_ok.sql"), []byte(`CREATE TABLE ok_table (id INTEGER);`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "0002_bad.sql"), []byte(`CREATE TABLE half (id INTEGER); NOT SQL;`), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := OpenDB(filepath.Join(t.TempDir(), "bad.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	err = ApplyMigrationsFromDir(context.Background(), db, dir)
	if err == nil || !strings.Contains(err.Error(), "0002_bad.sql") {
		t.Fatalf("expected failure naming 0002_bad.sql, got %v", err)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM schema_migrations`); n != 1 {
		t.Fatalf("only the good migration may be recorded, got %d", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'half'`); n != 0 {
		t.Fatalf("failed migration must roll back its partial work")
	}
}
