package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"neuralrag/internal/errors"
	"neuralrag/internal/model"
)

// QueryLogRepository provides append and report_used operations on the
// query_log table.
type QueryLogRepository struct {
	db *DB
}

// NewQueryLogRepository creates a query-log repository.
func NewQueryLogRepository(db *DB) *QueryLogRepository {
	return &QueryLogRepository{db: db}
}

// Log records a query and the neurons it accepted.
func (r *QueryLogRepository) Log(query string, activatedIDs []string) (*model.QueryLogEntry, error) {
	activatedJSON, err := json.Marshal(activatedIDs)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "marshaling activated neuron ids", err)
	}

	entry := &model.QueryLogEntry{
		ID:                 uuid.NewString(),
		Query:              query,
		ActivatedNeuronIDs: activatedIDs,
		Timestamp:          time.Now().UTC(),
	}

	_, err = r.db.Exec(`
		INSERT INTO query_log (id, query, activated_neuron_ids, used_neuron_ids, timestamp)
		VALUES (?, ?, ?, NULL, ?)
	`, entry.ID, entry.Query, string(activatedJSON), entry.Timestamp.Format(time.RFC3339))
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "logging query", err)
	}
	return entry, nil
}

// ReportUsed records which of the activated neurons the caller later used.
func (r *QueryLogRepository) ReportUsed(queryID string, usedIDs []string) error {
	usedJSON, err := json.Marshal(usedIDs)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "marshaling used neuron ids", err)
	}

	res, err := r.db.Exec(`UPDATE query_log SET used_neuron_ids = ? WHERE id = ?`, string(usedJSON), queryID)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "reporting used neurons", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "reading rows affected", err)
	}
	if n == 0 {
		return errors.New(errors.NotFound, "query log entry not found: "+queryID)
	}
	return nil
}

// Count returns the total number of logged queries.
func (r *QueryLogRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM query_log`).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.StoreFailure, "counting query log", err)
	}
	return count, nil
}
