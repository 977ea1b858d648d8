// Package retrieval implements the Retrieval Engine: it composes the
// Vector Index (entry selection) with the Graph Walker (expansion),
// performs activation bookkeeping, and records the query.
package retrieval

import (
	"context"

	"neuralrag/internal/config"
	"neuralrag/internal/graph"
	"neuralrag/internal/learner"
	"neuralrag/internal/logging"
	"neuralrag/internal/storage"
	"neuralrag/internal/vectorindex"
)

// minSeedScore keeps entry scores in the open interval (0, 1] required by
// the walker even when cosine similarity is zero or negative.
const minSeedScore = 1e-6

// Result is the outcome of one query.
type Result struct {
	QueryID            string
	Activated          []graph.ActivationResult
	AvgActivationDepth float64
	Partial            bool
}

// Engine composes the Vector Index, Graph Walker, Store, and Learner.
type Engine struct {
	store   *storage.Store
	index   *vectorindex.Index
	learner *learner.Learner
	cfg     config.RetrievalConfig
	logger  *logging.Logger
}

// New creates a Retrieval Engine.
func New(store *storage.Store, index *vectorindex.Index, l *learner.Learner, cfg config.RetrievalConfig, logger *logging.Logger) *Engine {
	return &Engine{store: store, index: index, learner: l, cfg: cfg, logger: logger}
}

// Query implements spec §4.4's seven-step algorithm.
func (e *Engine) Query(ctx context.Context, text string, queryEmbedding []float32) (*Result, error) {
	entries, err := e.index.TopK(queryEmbedding, e.cfg.EntryCount, e.cfg.MinSimilarity)
	if err != nil {
		return nil, err
	}

	seeds := make([]graph.Entry, len(entries))
	for i, entry := range entries {
		seeds[i] = graph.Entry{NeuronID: entry.NeuronID, Score: clampSeedScore(entry.Similarity)}
	}

	walkCfg := graph.Config{
		MaxNeurons:    e.cfg.MaxNeurons,
		DecayFactor:   e.cfg.DecayFactor,
		MinActivation: e.cfg.MinActivation,
	}
	activated, partial, err := graph.Walk(ctx, seeds, e.store.Synapses, walkCfg)
	if err != nil {
		return nil, err
	}

	acceptedIDs := make([]string, len(activated))
	for i, r := range activated {
		acceptedIDs[i] = r.NeuronID
		if err := e.store.Neurons.IncrementActivation(r.NeuronID); err != nil {
			return nil, err
		}
	}

	for _, a := range acceptedIDs {
		for _, b := range acceptedIDs {
			if a == b {
				continue
			}
			e.learner.SafeObserveCoActivation(a, b)
		}
	}

	logEntry, err := e.store.QueryLog.Log(text, acceptedIDs)
	if err != nil {
		return nil, err
	}

	return &Result{
		QueryID:            logEntry.ID,
		Activated:          activated,
		AvgActivationDepth: graph.AvgActivationDepth(activated),
		Partial:            partial,
	}, nil
}

// ReportUsed records which activated neurons the caller found useful and
// asks the Learner to strengthen the co-activation edges among them.
func (e *Engine) ReportUsed(queryID string, usedIDs []string) error {
	if err := e.store.QueryLog.ReportUsed(queryID, usedIDs); err != nil {
		return err
	}
	e.learner.SafeReinforceUse(usedIDs)
	return nil
}

func clampSeedScore(similarity float64) float64 {
	if similarity <= 0 {
		return minSeedScore
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}
