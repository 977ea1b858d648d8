// Package graph implements the Graph Walker: bounded best-first spreading
// activation across synapses with geometric decay.
package graph

import (
	"container/heap"
	"context"
	"sort"

	"neuralrag/internal/model"
)

// EdgeSource supplies outgoing synapses for a neuron. Satisfied by
// *storage.Store's synapse repository.
type EdgeSource interface {
	GetOutgoing(neuronID string) ([]*model.Synapse, error)
}

// Entry is a seed neuron with its initial activation score, drawn from
// vector similarity by the Retrieval Engine.
type Entry struct {
	NeuronID string
	Score    float64 // in (0, 1]
}

// Config bounds the walk.
type Config struct {
	MaxNeurons    int
	DecayFactor   float64 // in (0, 1)
	MinActivation float64 // in [0, 1)
}

// ActivationResult is one accepted node in the walk.
type ActivationResult struct {
	NeuronID string
	Score    float64
	Depth    int
	Path     []string // entry id .. this node's id, inclusive
}

// queueItem is a candidate not yet accepted.
type queueItem struct {
	neuronID string
	score    float64
	depth    int
	path     []string
	index    int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].score > pq[j].score // max-heap: highest score first
}
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// Walk runs the bounded best-first spreading-activation algorithm from
// spec §4.3. It stops when the queue empties, the accepted set reaches
// cfg.MaxNeurons, or ctx is done. On cancellation it returns the accepted
// set so far with partial=true, per §5's cancellation rule (checked
// between accepted nodes, not mid-node).
func Walk(ctx context.Context, entries []Entry, edges EdgeSource, cfg Config) (results []ActivationResult, partial bool, err error) {
	if len(entries) == 0 || cfg.MaxNeurons <= 0 {
		return nil, false, nil
	}

	pq := &priorityQueue{}
	heap.Init(pq)
	for _, e := range entries {
		heap.Push(pq, &queueItem{neuronID: e.NeuronID, score: e.Score, depth: 0, path: []string{e.NeuronID}})
	}

	accepted := make(map[string]*ActivationResult)
	var order []string

	for pq.Len() > 0 {
		select {
		case <-ctx.Done():
			return materialize(accepted, order), true, nil
		default:
		}

		item := heap.Pop(pq).(*queueItem)

		if existing, ok := accepted[item.neuronID]; ok && existing.Score >= item.score {
			continue
		}

		if _, existed := accepted[item.neuronID]; !existed {
			order = append(order, item.neuronID)
		}
		accepted[item.neuronID] = &ActivationResult{
			NeuronID: item.neuronID,
			Score:    item.score,
			Depth:    item.depth,
			Path:     item.path,
		}

		if len(accepted) >= cfg.MaxNeurons {
			break
		}

		outgoing, edgeErr := edges.GetOutgoing(item.neuronID)
		if edgeErr != nil {
			return nil, false, edgeErr
		}

		for _, syn := range outgoing {
			propagated := item.score * syn.Weight * cfg.DecayFactor
			if propagated < cfg.MinActivation {
				continue
			}
			if existing, ok := accepted[syn.TargetID]; ok && existing.Score >= propagated {
				continue
			}
			path := make([]string, len(item.path)+1)
			copy(path, item.path)
			path[len(item.path)] = syn.TargetID
			heap.Push(pq, &queueItem{
				neuronID: syn.TargetID,
				score:    propagated,
				depth:    item.depth + 1,
				path:     path,
			})
		}
	}

	return materialize(accepted, order), false, nil
}

func materialize(accepted map[string]*ActivationResult, order []string) []ActivationResult {
	out := make([]ActivationResult, 0, len(accepted))
	for _, id := range order {
		out = append(out, *accepted[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].NeuronID < out[j].NeuronID
	})
	return out
}

// AvgActivationDepth returns the mean depth over results, 0 if empty.
func AvgActivationDepth(results []ActivationResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum int
	for _, r := range results {
		sum += r.Depth
	}
	return float64(sum) / float64(len(results))
}
