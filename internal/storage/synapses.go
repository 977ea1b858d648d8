package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"neuralrag/internal/errors"
	"neuralrag/internal/model"
)

// SynapseRepository provides CRUD operations for the synapses table.
type SynapseRepository struct {
	db *DB
}

// NewSynapseRepository creates a synapse repository.
func NewSynapseRepository(db *DB) *SynapseRepository {
	return &SynapseRepository{db: db}
}

// Create inserts a synapse if no row already exists for
// (source_id, target_id, type); an existing row is left untouched and
// reported via the returned bool (false means "already present, not
// inserted").
func (r *SynapseRepository) Create(input model.SynapseCreateInput) (*model.Synapse, bool, error) {
	if input.SourceID == input.TargetID {
		return nil, false, errors.New(errors.InvalidArgument, "source_id must differ from target_id")
	}
	if !input.Type.Valid() {
		return nil, false, errors.New(errors.InvalidArgument, "unknown synapse type")
	}

	s := &model.Synapse{
		ID:        uuid.NewString(),
		SourceID:  input.SourceID,
		TargetID:  input.TargetID,
		Weight:    model.ClampWeight(input.Weight),
		Type:      input.Type,
		Metadata:  input.Metadata,
		CreatedAt: time.Now().UTC(),
	}

	inserted := false
	err := r.db.WithTx(func(tx *sql.Tx) error {
		ok, err := insertSynapseIfAbsent(tx, s)
		inserted = ok
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return s, inserted, nil
}

// CreateBatch inserts synapses atomically, silently skipping any that
// already exist on the unique key (spec §4.1 "insert-if-absent").
func (r *SynapseRepository) CreateBatch(inputs []model.SynapseCreateInput) (int, error) {
	if len(inputs) == 0 {
		return 0, errors.New(errors.InvalidArgument, "empty synapse batch")
	}

	inserted := 0
	err := r.db.WithTx(func(tx *sql.Tx) error {
		for _, input := range inputs {
			if input.SourceID == input.TargetID {
				return errors.New(errors.InvalidArgument, "source_id must differ from target_id")
			}
			if !input.Type.Valid() {
				return errors.New(errors.InvalidArgument, "unknown synapse type")
			}
			s := &model.Synapse{
				ID:        uuid.NewString(),
				SourceID:  input.SourceID,
				TargetID:  input.TargetID,
				Weight:    model.ClampWeight(input.Weight),
				Type:      input.Type,
				Metadata:  input.Metadata,
				CreatedAt: time.Now().UTC(),
			}
			ok, err := insertSynapseIfAbsent(tx, s)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	return inserted, err
}

func insertSynapseIfAbsent(tx *sql.Tx, s *model.Synapse) (bool, error) {
	var metaJSON interface{}
	if s.Metadata != nil {
		b, err := json.Marshal(s.Metadata)
		if err != nil {
			return false, errors.Wrap(errors.InvalidArgument, "marshaling synapse metadata", err)
		}
		metaJSON = string(b)
	}

	res, err := tx.Exec(`
		INSERT INTO synapses (id, source_id, target_id, weight, type, metadata, fire_count, last_fired, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL, ?)
		ON CONFLICT(source_id, target_id, type) DO NOTHING
	`, s.ID, s.SourceID, s.TargetID, s.Weight, string(s.Type), metaJSON, s.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return false, errors.Wrap(errors.StoreFailure, "inserting synapse", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(errors.StoreFailure, "reading rows affected", err)
	}
	return n > 0, nil
}

const synapseColumns = `
	id, source_id, target_id, weight, type, metadata, fire_count, last_fired, created_at
`

// GetOutgoing returns synapses originating at neuronID, ordered by weight
// descending.
func (r *SynapseRepository) GetOutgoing(neuronID string) ([]*model.Synapse, error) {
	return r.queryOrdered(`SELECT `+synapseColumns+` FROM synapses WHERE source_id = ? ORDER BY weight DESC`, neuronID)
}

// GetIncoming returns synapses terminating at neuronID, ordered by weight
// descending.
func (r *SynapseRepository) GetIncoming(neuronID string) ([]*model.Synapse, error) {
	return r.queryOrdered(`SELECT `+synapseColumns+` FROM synapses WHERE target_id = ? ORDER BY weight DESC`, neuronID)
}

// GetConnected returns every synapse touching neuronID as either endpoint,
// ordered by weight descending.
func (r *SynapseRepository) GetConnected(neuronID string) ([]*model.Synapse, error) {
	return r.queryOrdered(`SELECT `+synapseColumns+` FROM synapses WHERE source_id = ? OR target_id = ? ORDER BY weight DESC`, neuronID, neuronID)
}

func (r *SynapseRepository) queryOrdered(query string, args ...interface{}) ([]*model.Synapse, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "querying synapses", err)
	}
	defer rows.Close()

	var out []*model.Synapse
	for rows.Next() {
		s, err := scanSynapse(rows)
		if err != nil {
			return nil, errors.Wrap(errors.StoreFailure, "scanning synapse", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "iterating synapses", err)
	}
	return out, nil
}

func scanSynapse(s scanner) (*model.Synapse, error) {
	var syn model.Synapse
	var synType string
	var metaJSON sql.NullString
	var lastFired sql.NullString
	var createdAt string

	if err := s.Scan(
		&syn.ID, &syn.SourceID, &syn.TargetID, &syn.Weight, &synType,
		&metaJSON, &syn.FireCount, &lastFired, &createdAt,
	); err != nil {
		return nil, err
	}
	syn.Type = model.SynapseType(synType)

	if metaJSON.Valid && metaJSON.String != "" {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(metaJSON.String), &m); err != nil {
			return nil, err
		}
		syn.Metadata = m
	}

	if lastFired.Valid {
		t, err := time.Parse(time.RFC3339, lastFired.String)
		if err != nil {
			return nil, err
		}
		syn.LastFired = &t
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, err
	}
	syn.CreatedAt = t

	return &syn, nil
}

// AdjustWeight clamps weight by delta for the synapse(s) matching
// (source, target[, type]). On a positive delta it also bumps fire_count
// and sets last_fired to now.
func (r *SynapseRepository) AdjustWeight(source, target string, synType *model.SynapseType, delta float64) error {
	query := `SELECT id, weight FROM synapses WHERE source_id = ? AND target_id = ?`
	args := []interface{}{source, target}
	if synType != nil {
		query += ` AND type = ?`
		args = append(args, string(*synType))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "querying synapses to adjust", err)
	}
	type row struct {
		id     string
		weight float64
	}
	var matches []row
	for rows.Next() {
		var rr row
		if err := rows.Scan(&rr.id, &rr.weight); err != nil {
			rows.Close()
			return errors.Wrap(errors.StoreFailure, "scanning synapse to adjust", err)
		}
		matches = append(matches, rr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errors.Wrap(errors.StoreFailure, "iterating synapses to adjust", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return r.db.WithTx(func(tx *sql.Tx) error {
		for _, m := range matches {
			newWeight := model.ClampWeight(m.weight + delta)
			if delta > 0 {
				if _, err := tx.Exec(`
					UPDATE synapses SET weight = ?, fire_count = fire_count + 1, last_fired = ? WHERE id = ?
				`, newWeight, now, m.id); err != nil {
					return errors.Wrap(errors.StoreFailure, "updating synapse weight", err)
				}
			} else {
				if _, err := tx.Exec(`UPDATE synapses SET weight = ? WHERE id = ?`, newWeight, m.id); err != nil {
					return errors.Wrap(errors.StoreFailure, "updating synapse weight", err)
				}
			}
		}
		return nil
	})
}

// DecayCoActivation returns the ids of every co_activation synapse whose
// last_fired is older than daysOld days. It changes no weights: the caller
// applies delta to those ids with ApplyDecayBatch, in batches of its own
// choosing. delta and batchSize are not used by this query.
func (r *SynapseRepository) DecayCoActivation(daysOld int, delta float64, batchSize int) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT id FROM synapses
		WHERE type = ? AND last_fired IS NOT NULL
		AND julianday('now') - julianday(last_fired) > ?
	`, string(model.SynapseCoActivation), daysOld)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "querying stale co-activation synapses", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(errors.StoreFailure, "scanning synapse id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "iterating stale synapses", err)
	}
	return ids, nil
}

// ApplyDecayBatch applies the decay delta to the given synapse ids in one
// transaction.
func (r *SynapseRepository) ApplyDecayBatch(ids []string, delta float64) error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		for _, id := range ids {
			var weight float64
			if err := tx.QueryRow(`SELECT weight FROM synapses WHERE id = ?`, id).Scan(&weight); err != nil {
				if err == sql.ErrNoRows {
					continue
				}
				return errors.Wrap(errors.StoreFailure, "reading synapse weight", err)
			}
			newWeight := model.ClampWeight(weight - delta)
			if _, err := tx.Exec(`UPDATE synapses SET weight = ? WHERE id = ?`, newWeight, id); err != nil {
				return errors.Wrap(errors.StoreFailure, "decaying synapse weight", err)
			}
		}
		return nil
	})
}

// PruneCoActivation deletes co_activation synapses with weight <= floor,
// returning the count deleted. Structural synapses are never touched.
func (r *SynapseRepository) PruneCoActivation(floor float64) (int, error) {
	res, err := r.db.Exec(`
		DELETE FROM synapses WHERE type = ? AND weight <= ?
	`, string(model.SynapseCoActivation), floor)
	if err != nil {
		return 0, errors.Wrap(errors.StoreFailure, "pruning co-activation synapses", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(errors.StoreFailure, "reading rows affected", err)
	}
	return int(n), nil
}
