package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultBusyTimeout is how long a connection waits on a locked database
// before SQLITE_BUSY is returned.
const DefaultBusyTimeout = 5 * time.Second

// DB holds one serialized writer and a small pool of query-only readers over
// the same WAL-mode database file.
type DB struct {
	write *bun.DB
	read  *bun.DB
}

type options struct {
	busyTimeout time.Duration
	readers     int
}

// Option tunes OpenDB.
type Option func(*options)

// WithBusyTimeout overrides DefaultBusyTimeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithReaders sets the size of the read pool.
func WithReaders(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readers = n
		}
	}
}

// OpenDB opens path, creating it when missing. The writer is opened first so
// the file exists and is in WAL mode before any reader connects.
func OpenDB(path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	o := options{busyTimeout: DefaultBusyTimeout, readers: 2}
	for _, opt := range opts {
		opt(&o)
	}
	busy := o.busyTimeout.Milliseconds()

	wsql, err := sql.Open("sqlite3", fmt.Sprintf(
		"file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL&_txlock=immediate", path, busy))
	if err != nil {
		return nil, fmt.Errorf("open write db: %w", err)
	}
	wsql.SetMaxOpenConns(1)
	wsql.SetConnMaxLifetime(15 * time.Minute)
	if err := wsql.Ping(); err != nil {
		_ = wsql.Close()
		return nil, fmt.Errorf("open write db %s: %w", path, err)
	}

	rsql, err := sql.Open("sqlite3", fmt.Sprintf(
		"file:%s?_busy_timeout=%d&_query_only=1", path, busy))
	if err != nil {
		_ = wsql.Close()
		return nil, fmt.Errorf("open read db: %w", err)
	}
	rsql.SetMaxOpenConns(o.readers)
	rsql.SetConnMaxIdleTime(5 * time.Minute)
	rsql.SetConnMaxLifetime(15 * time.Minute)

	return &DB{
		write: bun.NewDB(wsql, sqlitedialect.New()),
		read:  bun.NewDB(rsql, sqlitedialect.New()),
	}, nil
}

// Close folds the WAL back into the main file and closes both pools, so a
// closed database can be copied as a single file.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	var errs []error
	if db.read != nil {
		errs = append(errs, db.read.Close())
	}
	if db.write != nil {
		if _, err := db.write.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			errs = append(errs, fmt.Errorf("checkpoint wal: %w", err))
		}
		errs = append(errs, db.write.Close())
	}
	return errors.Join(errs...)
}

// WithWriteTx runs fn in an IMMEDIATE transaction on the single writer.
func (db *DB) WithWriteTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	if db == nil || db.write == nil {
		return errors.New("write db is not initialized")
	}
	return db.write.RunInTx(ctx, nil, fn)
}

// WithReadTx runs fn on a query-only connection; writes inside fn fail.
func (db *DB) WithReadTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	if db == nil || db.read == nil {
		return errors.New("read db is not initialized")
	}
	return db.read.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}
