// Package learner implements the Hebbian-style edge mutation rules:
// co-activation synthesis, strengthening on reported use, decay of stale
// edges, and pruning below a floor.
package learner

import (
	"context"

	"neuralrag/internal/config"
	"neuralrag/internal/logging"
	"neuralrag/internal/model"
	"neuralrag/internal/storage"
)

// Learner mutates co_activation synapses. Structural synapses (imports,
// calls, etc.) are never touched here; they only disappear via file
// reindex cascade.
type Learner struct {
	synapses *storage.SynapseRepository
	cfg      config.LearnerConfig
	logger   *logging.Logger
}

// New creates a Learner over the given synapse repository.
func New(synapses *storage.SynapseRepository, cfg config.LearnerConfig, logger *logging.Logger) *Learner {
	return &Learner{synapses: synapses, cfg: cfg, logger: logger}
}

// ObserveCoActivation strengthens the (a, b, co_activation) synapse by
// StrengthenDelta if it exists, or creates it at InitialCoActivation
// otherwise. The Retrieval Engine calls this for both directions of every
// accepted pair.
func (l *Learner) ObserveCoActivation(a, b string) error {
	if a == b {
		return nil
	}

	_, inserted, err := l.synapses.Create(model.SynapseCreateInput{
		SourceID: a,
		TargetID: b,
		Weight:   l.cfg.InitialCoActivation,
		Type:     model.SynapseCoActivation,
	})
	if err != nil {
		return err
	}
	if inserted {
		return nil
	}

	coActivation := model.SynapseCoActivation
	return l.synapses.AdjustWeight(a, b, &coActivation, l.cfg.StrengthenDelta)
}

// SafeObserveCoActivation calls ObserveCoActivation and logs-and-swallows
// any error, per spec §7's Learner best-effort failure semantics.
func (l *Learner) SafeObserveCoActivation(a, b string) {
	if err := l.ObserveCoActivation(a, b); err != nil {
		l.logger.Warn("co-activation synthesis failed", map[string]interface{}{
			"source": a, "target": b, "error": err.Error(),
		})
	}
}

// ReinforceUse strengthens the co_activation edge for every ordered
// distinct pair in ids, if present. It never creates new edges.
func (l *Learner) ReinforceUse(ids []string) error {
	coActivation := model.SynapseCoActivation
	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			if err := l.synapses.AdjustWeight(a, b, &coActivation, l.cfg.StrengthenDelta); err != nil {
				return err
			}
		}
	}
	return nil
}

// SafeReinforceUse calls ReinforceUse and logs-and-swallows any error.
func (l *Learner) SafeReinforceUse(ids []string) {
	if err := l.ReinforceUse(ids); err != nil {
		l.logger.Warn("reinforce_use failed", map[string]interface{}{
			"error": err.Error(), "count": len(ids),
		})
	}
}

// Decay decrements weight by delta (clamped at 0) for every co_activation
// synapse whose last_fired is older than daysOld days, processing in
// batches of l.cfg.BatchSize so ctx can be checked between them (spec §5).
// Returns the count mutated.
func (l *Learner) Decay(ctx context.Context, daysOld int, delta float64) (int, error) {
	batchSize := l.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	ids, err := l.synapses.DecayCoActivation(daysOld, delta, batchSize)
	if err != nil {
		return 0, err
	}

	total := 0
	for start := 0; start < len(ids); start += batchSize {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		if err := l.synapses.ApplyDecayBatch(batch, delta); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// Prune deletes co_activation synapses whose weight is <= floor. Returns
// the count deleted.
func (l *Learner) Prune(floor float64) (int, error) {
	return l.synapses.PruneCoActivation(floor)
}
