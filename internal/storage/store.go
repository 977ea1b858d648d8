package storage

import (
	"database/sql"
	"time"

	"neuralrag/internal/errors"
	"neuralrag/internal/logging"
	"neuralrag/internal/model"
)

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.StoreFailure, "parsing timestamp", err)
	}
	return t, nil
}

// Store is the Store component described in the component design: it owns
// all persistent state (neurons, synapses, the indexed-file manifest, and
// the query log) and exposes the transactional operations every other
// component is built on.
type Store struct {
	db *DB

	Neurons  *NeuronRepository
	Synapses *SynapseRepository
	Files    *IndexedFileRepository
	QueryLog *QueryLogRepository
}

// Open opens the store at <repoRoot>/.neuralrag/brain.db.
func Open(repoRoot string, logger *logging.Logger, busyTimeoutMs int, compressContent bool) (*Store, error) {
	db, err := openDB(repoRoot, logger, busyTimeoutMs)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:       db,
		Neurons:  NewNeuronRepository(db, compressContent),
		Synapses: NewSynapseRepository(db),
		Files:    NewIndexedFileRepository(db),
		QueryLog: NewQueryLogRepository(db),
	}, nil
}

// Close releases the store's connection and writer lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats reports store-wide counts per spec §4.1; avg_activation_depth is
// intentionally absent here, since it is computed by the Retrieval Engine
// over a single query's results, not by the Store.
func (s *Store) Stats() (*model.Stats, error) {
	stats := &model.Stats{}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM neurons`).Scan(&stats.NeuronCount); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "counting neurons", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM synapses`).Scan(&stats.SynapseCount); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "counting synapses", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM indexed_files`).Scan(&stats.IndexedFileCount); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "counting indexed files", err)
	}

	rows, err := s.db.Query(`SELECT DISTINCT language FROM indexed_files WHERE language != '' ORDER BY language`)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "listing languages", err)
	}
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			rows.Close()
			return nil, errors.Wrap(errors.StoreFailure, "scanning language", err)
		}
		stats.DistinctLanguages = append(stats.DistinctLanguages, lang)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "iterating languages", err)
	}

	var mostRecent sql.NullString
	if err := s.db.QueryRow(`SELECT MAX(last_indexed) FROM indexed_files`).Scan(&mostRecent); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "reading most recent index time", err)
	}
	if mostRecent.Valid {
		t, err := parseTimestamp(mostRecent.String)
		if err != nil {
			return nil, err
		}
		stats.MostRecentIndexed = &t
	}

	count, err := s.QueryLog.Count()
	if err != nil {
		return nil, err
	}
	stats.TotalQueries = count

	return stats, nil
}

// ClearAll deletes every row in the store, respecting cascade order:
// query log, synapses, neurons, indexed files.
func (s *Store) ClearAll() error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		stmts := []string{
			`DELETE FROM query_log`,
			`DELETE FROM synapses`,
			`DELETE FROM neurons`,
			`DELETE FROM indexed_files`,
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(stmt); err != nil {
				return errors.Wrap(errors.StoreFailure, "clearing store", err)
			}
		}
		return nil
	})
}
