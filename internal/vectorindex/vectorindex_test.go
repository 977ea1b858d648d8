package vectorindex

import (
	"testing"

	"neuralrag/internal/model"
)

type fakeSource struct {
	neurons []*model.Neuron
}

func (f *fakeSource) GetAll() ([]*model.Neuron, error) {
	return f.neurons, nil
}

func TestTopKOrderingAndTieBreak(t *testing.T) {
	src := &fakeSource{neurons: []*model.Neuron{
		{ID: "n1", Embedding: []float32{1, 0, 0}},
		{ID: "n2", Embedding: []float32{0, 1, 0}},
		{ID: "n3", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "n4", Embedding: nil}, // excluded: empty embedding
	}}
	idx := New(src)

	results, err := idx.TopK([]float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results (n4 excluded), got %d", len(results))
	}
	if results[0].NeuronID != "n1" {
		t.Fatalf("expected n1 first, got %s", results[0].NeuronID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Fatal("expected descending similarity order")
	}
}

func TestTopKMinSimilarityFloor(t *testing.T) {
	src := &fakeSource{neurons: []*model.Neuron{
		{ID: "n1", Embedding: []float32{1, 0, 0}},
		{ID: "n2", Embedding: []float32{0, 1, 0}},
	}}
	idx := New(src)

	floor := 0.5
	results, err := idx.TopK([]float32{1, 0, 0}, 10, &floor)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(results) != 1 || results[0].NeuronID != "n1" {
		t.Fatalf("expected only n1 to pass floor, got %v", results)
	}
}

func TestInvalidateReloads(t *testing.T) {
	src := &fakeSource{neurons: []*model.Neuron{{ID: "n1", Embedding: []float32{1, 0}}}}
	idx := New(src)

	if _, err := idx.TopK([]float32{1, 0}, 5, nil); err != nil {
		t.Fatalf("TopK: %v", err)
	}

	src.neurons = append(src.neurons, &model.Neuron{ID: "n2", Embedding: []float32{0, 1}})
	idx.Invalidate()

	results, err := idx.TopK([]float32{0, 1}, 5, nil)
	if err != nil {
		t.Fatalf("TopK after invalidate: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected reloaded index to see 2 neurons, got %d", len(results))
	}
}
