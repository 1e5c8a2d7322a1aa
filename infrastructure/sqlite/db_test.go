package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/uptrace/bun"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "migrations")
	if err := ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestWithWriteTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state_slots (name, payload) VALUES (?, ?)`, "rollback-slot", "{}"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got: %v", err)
	}

	var count int
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM state_slots WHERE name = ?`, "rollback-slot").Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count slot: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to discard the slot, count=%d", count)
	}
}

func TestWithWriteTxCommitsOnSuccess(t *testing.T) {
	db := openTestDB(t)

	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO state_slots (name, payload) VALUES (?, ?)`, "commit-slot", "{}")
		return err
	})
	if err != nil {
		t.Fatalf("write tx failed: %v", err)
	}

	var count int
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM state_slots WHERE name = ?`, "commit-slot").Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count slot: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected committed slot, count=%d", count)
	}
}

func TestWithReadTxRejectsWrite(t *testing.T) {
	db := openTestDB(t)

	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO state_slots (name, payload) VALUES (?, ?)`, "read-only-slot", "{}")
		return err
	})
	var count int
	if err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM state_slots WHERE name = ?`, "read-only-slot").Scan(ctx, &count)
	}); err != nil {
		t.Fatalf("count slot: %v", err)
	}
	if err == nil && count > 0 {
		t.Fatalf("expected write in read tx to be blocked; write succeeded")
	}
}

func TestOpenDBConfiguresWriterPragmas(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "pragmas.db"), WithBusyTimeout(1500*time.Millisecond))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var mode string
	var busy int
	err = db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewRaw(`PRAGMA journal_mode`).Scan(ctx, &mode); err != nil {
			return err
		}
		return tx.NewRaw(`PRAGMA busy_timeout`).Scan(ctx, &busy)
	})
	if err != nil {
		t.Fatalf("read pragmas: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal, got %q", mode)
	}
	if busy != 1500 {
		t.Fatalf("expected busy_timeout 1500, got %d", busy)
	}
}

func TestCloseLeavesSingleFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "close.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if info, err := os.Stat(dbPath + "-wal"); err == nil && info.Size() > 0 {
		t.Fatalf("expected wal to be checkpointed on close, size=%d", info.Size())
	}
}
