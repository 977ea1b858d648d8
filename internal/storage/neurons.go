package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"neuralrag/internal/errors"
	"neuralrag/internal/model"
)

// NeuronRepository provides CRUD operations for the neurons table.
type NeuronRepository struct {
	db       *DB
	compress bool
}

// NewNeuronRepository creates a neuron repository. compress controls
// whether neuron content is zstd-compressed at rest.
func NewNeuronRepository(db *DB, compress bool) *NeuronRepository {
	return &NeuronRepository{db: db, compress: compress}
}

// Create inserts a single neuron, assigning its id and timestamps.
func (r *NeuronRepository) Create(input model.NeuronCreateInput) (*model.Neuron, error) {
	if input.StartLine > input.EndLine {
		return nil, errors.New(errors.InvalidArgument, "start_line must be <= end_line")
	}
	if !input.Type.Valid() {
		return nil, errors.New(errors.InvalidArgument, "unknown neuron type")
	}

	now := time.Now().UTC()
	n := &model.Neuron{
		ID:        uuid.NewString(),
		Content:   input.Content,
		Summary:   input.Summary,
		Embedding: input.Embedding,
		FilePath:  input.FilePath,
		StartLine: input.StartLine,
		EndLine:   input.EndLine,
		Type:      input.Type,
		Name:      input.Name,
		Language:  input.Language,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.insert(r.db, n); err != nil {
		return nil, err
	}
	return n, nil
}

// CreateBatch inserts multiple neurons atomically, returning assigned ids
// in input order.
func (r *NeuronRepository) CreateBatch(inputs []model.NeuronCreateInput) ([]string, error) {
	if len(inputs) == 0 {
		return nil, errors.New(errors.InvalidArgument, "empty neuron batch")
	}

	ids := make([]string, len(inputs))
	now := time.Now().UTC()

	err := r.db.WithTx(func(tx *sql.Tx) error {
		for i, input := range inputs {
			if input.StartLine > input.EndLine {
				return errors.New(errors.InvalidArgument, "start_line must be <= end_line")
			}
			if !input.Type.Valid() {
				return errors.New(errors.InvalidArgument, "unknown neuron type")
			}
			n := &model.Neuron{
				ID:        uuid.NewString(),
				Content:   input.Content,
				Summary:   input.Summary,
				Embedding: input.Embedding,
				FilePath:  input.FilePath,
				StartLine: input.StartLine,
				EndLine:   input.EndLine,
				Type:      input.Type,
				Name:      input.Name,
				Language:  input.Language,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := r.insertTx(tx, n); err != nil {
				return err
			}
			ids[i] = n.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *NeuronRepository) insert(db *DB, n *model.Neuron) error {
	return db.WithTx(func(tx *sql.Tx) error {
		return r.insertTx(tx, n)
	})
}

func (r *NeuronRepository) insertTx(tx *sql.Tx, n *model.Neuron) error {
	content := n.Content
	compressed := 0
	if r.compress {
		blob, err := compressContent(n.Content)
		if err != nil {
			return err
		}
		content = string(blob)
		compressed = 1
	}

	embBlob := model.EncodeEmbedding(n.Embedding)

	_, err := tx.Exec(`
		INSERT INTO neurons (
			id, content, content_compressed, summary, embedding, file_path,
			start_line, end_line, type, name, language,
			activation_count, last_activated, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID, content, compressed, n.Summary, embBlob, n.FilePath,
		n.StartLine, n.EndLine, string(n.Type), n.Name, n.Language,
		n.ActivationCount, formatTimePtr(n.LastActivated),
		n.CreatedAt.Format(time.RFC3339), n.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "inserting neuron", err)
	}
	return nil
}

// Get retrieves a neuron by id. Returns nil, nil if not found.
func (r *NeuronRepository) Get(id string) (*model.Neuron, error) {
	row := r.db.QueryRow(`
		SELECT id, content, content_compressed, summary, embedding, file_path,
		       start_line, end_line, type, name, language,
		       activation_count, last_activated, created_at, updated_at
		FROM neurons WHERE id = ?
	`, id)
	return r.scanOne(row)
}

// GetByFile returns all neurons for a file path, ordered by start_line
// ascending.
func (r *NeuronRepository) GetByFile(path string) ([]*model.Neuron, error) {
	rows, err := r.db.Query(`
		SELECT id, content, content_compressed, summary, embedding, file_path,
		       start_line, end_line, type, name, language,
		       activation_count, last_activated, created_at, updated_at
		FROM neurons WHERE file_path = ? ORDER BY start_line ASC
	`, path)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "querying neurons by file", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// GetAll returns every neuron, ordered by file_path then start_line.
func (r *NeuronRepository) GetAll() ([]*model.Neuron, error) {
	rows, err := r.db.Query(`
		SELECT id, content, content_compressed, summary, embedding, file_path,
		       start_line, end_line, type, name, language,
		       activation_count, last_activated, created_at, updated_at
		FROM neurons ORDER BY file_path ASC, start_line ASC
	`)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "querying all neurons", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// DeleteByFile removes every neuron for a file path, cascading to
// synapses, and returns the count removed.
func (r *NeuronRepository) DeleteByFile(path string) (int, error) {
	res, err := r.db.Exec(`DELETE FROM neurons WHERE file_path = ?`, path)
	if err != nil {
		return 0, errors.Wrap(errors.StoreFailure, "deleting neurons by file", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(errors.StoreFailure, "reading rows affected", err)
	}
	return int(n), nil
}

// IncrementActivation atomically bumps activation_count and sets
// last_activated/updated_at to now.
func (r *NeuronRepository) IncrementActivation(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.Exec(`
		UPDATE neurons
		SET activation_count = activation_count + 1, last_activated = ?, updated_at = ?
		WHERE id = ?
	`, now, now, id)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "incrementing activation", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "reading rows affected", err)
	}
	if n == 0 {
		return errors.New(errors.NotFound, "neuron not found: "+id)
	}
	return nil
}

func (r *NeuronRepository) scanOne(row *sql.Row) (*model.Neuron, error) {
	n, compressed, content, embBlob, lastActivated, createdAt, updatedAt, err := scanNeuronRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "scanning neuron", err)
	}
	return r.materialize(n, compressed, content, embBlob, lastActivated, createdAt, updatedAt)
}

func (r *NeuronRepository) scanAll(rows *sql.Rows) ([]*model.Neuron, error) {
	var out []*model.Neuron
	for rows.Next() {
		n, compressed, content, embBlob, lastActivated, createdAt, updatedAt, err := scanNeuronRows(rows)
		if err != nil {
			return nil, errors.Wrap(errors.StoreFailure, "scanning neuron row", err)
		}
		full, err := r.materialize(n, compressed, content, embBlob, lastActivated, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "iterating neurons", err)
	}
	return out, nil
}

func (r *NeuronRepository) materialize(n *model.Neuron, compressed int, content string, embBlob []byte, lastActivated sql.NullString, createdAt, updatedAt string) (*model.Neuron, error) {
	if compressed == 1 {
		decoded, err := decompressContent([]byte(content))
		if err != nil {
			return nil, err
		}
		n.Content = decoded
	} else {
		n.Content = content
	}

	emb, err := model.DecodeEmbedding(embBlob)
	if err != nil {
		return nil, err
	}
	n.Embedding = emb

	if lastActivated.Valid {
		t, err := time.Parse(time.RFC3339, lastActivated.String)
		if err != nil {
			return nil, err
		}
		n.LastActivated = &t
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, err
	}
	n.CreatedAt = t

	t, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, err
	}
	n.UpdatedAt = t

	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNeuronRow(row *sql.Row) (*model.Neuron, int, string, []byte, sql.NullString, string, string, error) {
	return scanNeuronGeneric(row)
}

func scanNeuronRows(rows *sql.Rows) (*model.Neuron, int, string, []byte, sql.NullString, string, string, error) {
	return scanNeuronGeneric(rows)
}

func scanNeuronGeneric(s scanner) (*model.Neuron, int, string, []byte, sql.NullString, string, string, error) {
	var n model.Neuron
	var compressed int
	var content string
	var embBlob []byte
	var neuronType string
	var lastActivated sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&n.ID, &content, &compressed, &n.Summary, &embBlob, &n.FilePath,
		&n.StartLine, &n.EndLine, &neuronType, &n.Name, &n.Language,
		&n.ActivationCount, &lastActivated, &createdAt, &updatedAt,
	)
	n.Type = model.NeuronType(neuronType)
	return &n, compressed, content, embBlob, lastActivated, createdAt, updatedAt, err
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
