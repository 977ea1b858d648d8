package storage

import (
	"database/sql"
	"strconv"

	"neuralrag/internal/errors"
)

// currentSchemaVersion is stored under the _meta key "schema_version".
const currentSchemaVersion = 1

func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createMetaTable(tx); err != nil {
			return err
		}
		if err := createNeuronsTable(tx); err != nil {
			return err
		}
		if err := createSynapsesTable(tx); err != nil {
			return err
		}
		if err := createIndexedFilesTable(tx); err != nil {
			return err
		}
		if err := createQueryLogTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("store schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})
		return nil
	})
}

// runMigrations runs pending migrations forward, idempotently. A schema
// version newer than currentSchemaVersion is a fatal error (spec §6
// "Schema version").
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version > currentSchemaVersion {
		return errors.New(errors.StoreFailure, "store schema version is newer than this build supports")
	}
	if version == currentSchemaVersion {
		db.logger.Debug("store schema up to date", map[string]interface{}{"version": version})
		return nil
	}

	db.logger.Info("running store migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// No migrations beyond v1 yet. Add `if version < 2 { ... }` steps here
	// as the schema evolves; each step must be safe to run twice.
	return db.WithTx(func(tx *sql.Tx) error {
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master WHERE type='table' AND name='_meta'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(errors.StoreFailure, "checking schema table", err)
	}

	var value string
	err = db.QueryRow(`SELECT value FROM _meta WHERE key = 'schema_version'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(errors.StoreFailure, "reading schema version", err)
	}

	version, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrap(errors.StoreFailure, "parsing schema version", err)
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec(`
		INSERT INTO _meta (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, strconv.Itoa(version))
	return err
}

func createMetaTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	return err
}

func createNeuronsTable(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS neurons (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			content_compressed INTEGER NOT NULL DEFAULT 0,
			summary TEXT NOT NULL,
			embedding BLOB,
			file_path TEXT NOT NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			language TEXT NOT NULL,
			activation_count INTEGER NOT NULL DEFAULT 0,
			last_activated TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,

			CHECK(start_line <= end_line)
		)
	`); err != nil {
		return err
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_neurons_file_path ON neurons(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_neurons_type ON neurons(type)",
		"CREATE INDEX IF NOT EXISTS idx_neurons_name ON neurons(name)",
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

func createSynapsesTable(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS synapses (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL REFERENCES neurons(id) ON DELETE CASCADE,
			target_id TEXT NOT NULL REFERENCES neurons(id) ON DELETE CASCADE,
			weight REAL NOT NULL CHECK(weight >= 0.0 AND weight <= 1.0),
			type TEXT NOT NULL,
			metadata TEXT,
			fire_count INTEGER NOT NULL DEFAULT 0,
			last_fired TEXT,
			created_at TEXT NOT NULL,

			CHECK(source_id != target_id),
			UNIQUE(source_id, target_id, type)
		)
	`); err != nil {
		return err
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_synapses_source_id ON synapses(source_id)",
		"CREATE INDEX IF NOT EXISTS idx_synapses_target_id ON synapses(target_id)",
		"CREATE INDEX IF NOT EXISTS idx_synapses_type ON synapses(type)",
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

func createIndexedFilesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS indexed_files (
			path TEXT PRIMARY KEY,
			language TEXT NOT NULL,
			neuron_count INTEGER NOT NULL DEFAULT 0,
			last_indexed TEXT NOT NULL,
			content_hash TEXT NOT NULL
		)
	`)
	return err
}

func createQueryLogTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS query_log (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			activated_neuron_ids TEXT NOT NULL,
			used_neuron_ids TEXT,
			timestamp TEXT NOT NULL
		)
	`)
	return err
}
