package storage

import (
	"database/sql"
	"time"

	"neuralrag/internal/errors"
	"neuralrag/internal/model"
)

// IndexedFileRepository provides CRUD operations for the indexed_files
// manifest table.
type IndexedFileRepository struct {
	db *DB
}

// NewIndexedFileRepository creates an indexed-file repository.
func NewIndexedFileRepository(db *DB) *IndexedFileRepository {
	return &IndexedFileRepository{db: db}
}

// Upsert inserts or replaces the manifest entry for f.Path.
func (r *IndexedFileRepository) Upsert(f model.IndexedFile) error {
	_, err := r.db.Exec(`
		INSERT INTO indexed_files (path, language, neuron_count, last_indexed, content_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language = excluded.language,
			neuron_count = excluded.neuron_count,
			last_indexed = excluded.last_indexed,
			content_hash = excluded.content_hash
	`, f.Path, f.Language, f.NeuronCount, f.LastIndexed.UTC().Format(time.RFC3339), f.ContentHash)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "upserting indexed file", err)
	}
	return nil
}

// Get retrieves a manifest entry by path. Returns nil, nil if not found.
func (r *IndexedFileRepository) Get(path string) (*model.IndexedFile, error) {
	var f model.IndexedFile
	var lastIndexed string
	err := r.db.QueryRow(`
		SELECT path, language, neuron_count, last_indexed, content_hash
		FROM indexed_files WHERE path = ?
	`, path).Scan(&f.Path, &f.Language, &f.NeuronCount, &lastIndexed, &f.ContentHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "getting indexed file", err)
	}
	t, err := time.Parse(time.RFC3339, lastIndexed)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "parsing last_indexed", err)
	}
	f.LastIndexed = t
	return &f, nil
}

// Delete removes the manifest entry for path.
func (r *IndexedFileRepository) Delete(path string) error {
	_, err := r.db.Exec(`DELETE FROM indexed_files WHERE path = ?`, path)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "deleting indexed file", err)
	}
	return nil
}

// List returns every manifest entry, ordered by path.
func (r *IndexedFileRepository) List() ([]*model.IndexedFile, error) {
	rows, err := r.db.Query(`
		SELECT path, language, neuron_count, last_indexed, content_hash
		FROM indexed_files ORDER BY path ASC
	`)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "listing indexed files", err)
	}
	defer rows.Close()

	var out []*model.IndexedFile
	for rows.Next() {
		var f model.IndexedFile
		var lastIndexed string
		if err := rows.Scan(&f.Path, &f.Language, &f.NeuronCount, &lastIndexed, &f.ContentHash); err != nil {
			return nil, errors.Wrap(errors.StoreFailure, "scanning indexed file", err)
		}
		t, err := time.Parse(time.RFC3339, lastIndexed)
		if err != nil {
			return nil, errors.Wrap(errors.StoreFailure, "parsing last_indexed", err)
		}
		f.LastIndexed = t
		out = append(out, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "iterating indexed files", err)
	}
	return out, nil
}
