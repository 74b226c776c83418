// Package store implements the per-project persistent Store (§4.C): a
// single-file transactional relational database (modernc.org/sqlite, pure
// Go, no cgo) backing summaries, entities, relationships, context
// snapshots, analysis hashes, doc-quality, ignore patterns, metadata, and
// vectors.
package store

import (
	"database/sql"
	"os"

	_ "modernc.org/sqlite"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/logging"
)

// DB wraps a sqlite connection with transaction helpers and the schema
// migration machinery.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	path   string
}

// Open opens (creating if absent) the sqlite database at path, applying
// pragmas for WAL concurrency and foreign-key enforcement, then running any
// pending schema migrations.
func Open(path string, logger *logging.Logger) (*DB, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "open database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, pcerrors.Wrap(pcerrors.IoError, "set pragma "+p, err)
		}
	}

	db := &DB{conn: conn, logger: logger, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Ping verifies the connection is still usable, for health-check surfaces.
func (db *DB) Ping() error {
	if err := db.conn.Ping(); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "ping database", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back (re-panicking) on error or panic.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", map[string]interface{}{
				"error":         err.Error(),
				"rollbackError": rbErr.Error(),
			})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "commit transaction", err)
	}
	return nil
}

// Exec runs a statement outside any explicit transaction (sqlite wraps it
// in an implicit one).
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query runs a query outside any explicit transaction.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow runs a single-row query outside any explicit transaction.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// Conn exposes the underlying *sql.DB for callers (e.g. the vector store's
// brute-force scan) that need direct access.
func (db *DB) Conn() *sql.DB { return db.conn }

// openFileForRead checkpoints the WAL and reopens the database file for a
// consistent byte-for-byte read, used by Snapshot.
func (db *DB) openFileForRead() (*os.File, error) {
	if _, err := db.conn.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "checkpoint WAL before snapshot", err)
	}
	f, err := os.Open(db.path)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "open database file for snapshot", err)
	}
	return f, nil
}
