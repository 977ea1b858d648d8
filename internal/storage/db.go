// Package storage implements the durable embedded store: neurons,
// synapses, the indexed-file manifest, and the query log, all described in
// the external interfaces section of the design. It owns all persistent
// state; the vector index and graph walker only hold transient or cached
// derivatives of it.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo

	"neuralrag/internal/errors"
	"neuralrag/internal/logging"
	"neuralrag/internal/storelock"
)

// DB wraps a SQLite connection with the transaction helpers the
// repositories build on.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
	lock   *storelock.Lock
}

// openDB opens or creates the store at <repoRoot>/.neuralrag/brain.db,
// acquiring the single-writer lock for the store directory first.
func openDB(repoRoot string, logger *logging.Logger, busyTimeoutMs int) (*DB, error) {
	storeDir := filepath.Join(repoRoot, ".neuralrag")
	if err := os.MkdirAll(storeDir, 0755); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "creating store directory", err)
	}

	lock, err := storelock.Acquire(storeDir)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "acquiring store lock", err)
	}

	dbPath := filepath.Join(storeDir, "brain.db")
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		lock.Release()
		return nil, errors.Wrap(errors.StoreFailure, "opening database", err)
	}

	if busyTimeoutMs <= 0 {
		busyTimeoutMs = 5000
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs),
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			lock.Release()
			return nil, errors.Wrap(errors.StoreFailure, "setting pragma", err)
		}
	}

	db := &DB{conn: conn, logger: logger, dbPath: dbPath, lock: lock}

	if !dbExists {
		logger.Info("creating new store", map[string]interface{}{"path": dbPath})
		if err := db.initializeSchema(); err != nil {
			conn.Close()
			lock.Release()
			return nil, errors.Wrap(errors.StoreFailure, "initializing schema", err)
		}
	} else {
		logger.Debug("running store migrations", map[string]interface{}{"path": dbPath})
		if err := db.runMigrations(); err != nil {
			conn.Close()
			lock.Release()
			return nil, err
		}
	}

	return db, nil
}

// Close closes the database connection and releases the writer lock.
func (db *DB) Close() error {
	defer db.lock.Release()
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying sql.DB connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back (re-panicking if fn panicked) otherwise.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "beginning transaction", err)
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
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.StoreFailure, "committing transaction", err)
	}
	return nil
}

// Exec executes a query without returning rows.
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
