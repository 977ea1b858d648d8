// Package vectorindex implements the Vector Index component: a flat
// in-memory (id, embedding) matrix loaded lazily from the Store, offering
// cosine top-k over neuron embeddings. The Store, not this package, owns
// the underlying data; this package only caches a derived view of it.
package vectorindex

import (
	"sort"
	"sync"

	"neuralrag/internal/model"
)

// Source supplies the neurons the index caches vectors from. Satisfied by
// *storage.Store's neuron repository.
type Source interface {
	GetAll() ([]*model.Neuron, error)
}

// Result is one top-k hit: a neuron id and its cosine similarity to the
// query vector.
type Result struct {
	NeuronID   string
	Similarity float64
}

// Index is a flat in-memory matrix of neuron embeddings. It is reloaded
// only after a call to Invalidate; the Store's neuron create, batch-create,
// DeleteByFile and ClearAll do not invalidate it themselves, so callers
// that change neurons call Invalidate afterwards.
type Index struct {
	mu     sync.RWMutex
	source Source
	loaded bool
	ids    []string
	vecs   [][]float32
}

// New creates an index over source. The index is empty until the first
// call to TopK triggers a lazy load.
func New(source Source) *Index {
	return &Index{source: source}
}

// Invalidate discards the cached matrix; the next TopK call reloads it.
func (idx *Index) Invalidate() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.loaded = false
	idx.ids = nil
	idx.vecs = nil
}

func (idx *Index) ensureLoaded() error {
	idx.mu.RLock()
	loaded := idx.loaded
	idx.mu.RUnlock()
	if loaded {
		return nil
	}

	neurons, err := idx.source.GetAll()
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(neurons))
	vecs := make([][]float32, 0, len(neurons))
	for _, n := range neurons {
		if len(n.Embedding) == 0 {
			continue
		}
		ids = append(ids, n.ID)
		vecs = append(vecs, n.Embedding)
	}

	idx.mu.Lock()
	idx.ids = ids
	idx.vecs = vecs
	idx.loaded = true
	idx.mu.Unlock()
	return nil
}

// TopK returns up to k neurons closest to queryVec by cosine similarity,
// sorted by similarity descending with ties broken by neuron id ascending
// (spec §4.2). Neurons with empty embeddings are excluded by construction.
// If minSimilarity is non-nil, results below the floor are dropped.
func (idx *Index) TopK(queryVec []float32, k int, minSimilarity *float64) ([]Result, error) {
	if err := idx.ensureLoaded(); err != nil {
		return nil, err
	}
	if k <= 0 || len(queryVec) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]Result, 0, len(idx.ids))
	for i, id := range idx.ids {
		sim := model.CosineSimilarity(queryVec, idx.vecs[i])
		if minSimilarity != nil && sim < *minSimilarity {
			continue
		}
		results = append(results, Result{NeuronID: id, Similarity: sim})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].NeuronID < results[j].NeuronID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
