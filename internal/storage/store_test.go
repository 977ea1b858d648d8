package storage

import (
	"testing"

	"neuralrag/internal/logging"
	"neuralrag/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
	store, err := Open(dir, logger, 0, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetNeuronRoundTrip(t *testing.T) {
	store := newTestStore(t)

	emb := []float32{1, 0, 0}
	n, err := store.Neurons.Create(model.NeuronCreateInput{
		Content:   "func Foo() {}",
		Summary:   "Foo does a thing",
		Embedding: emb,
		FilePath:  "a.go",
		StartLine: 1,
		EndLine:   3,
		Type:      model.NeuronFunction,
		Name:      "Foo",
		Language:  "go",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Neurons.Get(n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected neuron, got nil")
	}
	if got.Content != n.Content || got.Summary != n.Summary || got.FilePath != n.FilePath {
		t.Fatalf("scalar field mismatch: got %+v, want %+v", got, n)
	}
	if len(got.Embedding) != len(emb) {
		t.Fatalf("embedding dimension mismatch: got %d, want %d", len(got.Embedding), len(emb))
	}
	for i := range emb {
		if got.Embedding[i] != emb[i] {
			t.Fatalf("embedding byte mismatch at %d: got %v, want %v", i, got.Embedding[i], emb[i])
		}
	}
}

func TestCreateNeuronInvalidLineSpan(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Neurons.Create(model.NeuronCreateInput{
		Content: "x", FilePath: "a.go", StartLine: 5, EndLine: 1, Type: model.NeuronFunction,
	})
	if err == nil {
		t.Fatal("expected error for start_line > end_line")
	}
}

func TestIncrementActivationMonotonic(t *testing.T) {
	store := newTestStore(t)
	n, err := store.Neurons.Create(model.NeuronCreateInput{
		Content: "x", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Neurons.IncrementActivation(n.ID); err != nil {
			t.Fatalf("IncrementActivation: %v", err)
		}
	}

	got, err := store.Neurons.Get(n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ActivationCount != 3 {
		t.Fatalf("expected activation_count 3, got %d", got.ActivationCount)
	}
	if got.LastActivated == nil {
		t.Fatal("expected last_activated to be set")
	}
}

func TestDeleteNeuronsByFileCascadesSynapses(t *testing.T) {
	store := newTestStore(t)

	n1, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "1", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction})
	n2, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "2", FilePath: "b.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction})

	if _, _, err := store.Synapses.Create(model.SynapseCreateInput{SourceID: n1.ID, TargetID: n2.ID, Weight: 0.5, Type: model.SynapseImports}); err != nil {
		t.Fatalf("Create synapse: %v", err)
	}

	count, err := store.Neurons.DeleteByFile("a.go")
	if err != nil {
		t.Fatalf("DeleteByFile: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 neuron deleted, got %d", count)
	}

	outgoing, err := store.Synapses.GetOutgoing(n1.ID)
	if err != nil {
		t.Fatalf("GetOutgoing: %v", err)
	}
	if len(outgoing) != 0 {
		t.Fatalf("expected cascaded synapse deletion, found %d", len(outgoing))
	}
}

func TestSynapseUniquenessInsertIfAbsent(t *testing.T) {
	store := newTestStore(t)
	n1, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "1", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction})
	n2, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "2", FilePath: "a.go", StartLine: 2, EndLine: 2, Type: model.NeuronFunction})

	input := model.SynapseCreateInput{SourceID: n1.ID, TargetID: n2.ID, Weight: 0.5, Type: model.SynapseImports}
	_, inserted1, err := store.Synapses.Create(input)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if !inserted1 {
		t.Fatal("expected first insert to succeed")
	}

	input.Weight = 0.9
	_, inserted2, err := store.Synapses.Create(input)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if inserted2 {
		t.Fatal("expected second insert to be a no-op")
	}

	outgoing, err := store.Synapses.GetOutgoing(n1.ID)
	if err != nil {
		t.Fatalf("GetOutgoing: %v", err)
	}
	if len(outgoing) != 1 {
		t.Fatalf("expected exactly one synapse row, got %d", len(outgoing))
	}
	if outgoing[0].Weight != 0.5 {
		t.Fatalf("expected weight to remain at original 0.5, got %v", outgoing[0].Weight)
	}
}

func TestAdjustWeightClamps(t *testing.T) {
	store := newTestStore(t)
	n1, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "1", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction})
	n2, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "2", FilePath: "a.go", StartLine: 2, EndLine: 2, Type: model.NeuronFunction})

	synType := model.SynapseCoActivation
	if _, _, err := store.Synapses.Create(model.SynapseCreateInput{SourceID: n1.ID, TargetID: n2.ID, Weight: 0.95, Type: synType}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Synapses.AdjustWeight(n1.ID, n2.ID, &synType, 0.5); err != nil {
		t.Fatalf("AdjustWeight: %v", err)
	}

	got, err := store.Synapses.GetOutgoing(n1.ID)
	if err != nil {
		t.Fatalf("GetOutgoing: %v", err)
	}
	if got[0].Weight != 1.0 {
		t.Fatalf("expected weight clamped to 1.0, got %v", got[0].Weight)
	}
	if got[0].FireCount != 1 {
		t.Fatalf("expected fire_count 1, got %d", got[0].FireCount)
	}
}

func TestStatsAndClearAll(t *testing.T) {
	store := newTestStore(t)
	n1, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "1", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction, Language: "go"})
	n2, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "2", FilePath: "a.go", StartLine: 2, EndLine: 2, Type: model.NeuronFunction, Language: "go"})
	if _, _, err := store.Synapses.Create(model.SynapseCreateInput{SourceID: n1.ID, TargetID: n2.ID, Weight: 0.5, Type: model.SynapseImports}); err != nil {
		t.Fatalf("Create synapse: %v", err)
	}
	if err := store.Files.Upsert(model.IndexedFile{Path: "a.go", Language: "go", NeuronCount: 2, ContentHash: "abc"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := store.QueryLog.Log("find foo", []string{n1.ID}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.NeuronCount != 2 || stats.SynapseCount != 1 || stats.IndexedFileCount != 1 || stats.TotalQueries != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := store.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	stats, err = store.Stats()
	if err != nil {
		t.Fatalf("Stats after clear: %v", err)
	}
	if stats.NeuronCount != 0 || stats.SynapseCount != 0 || stats.IndexedFileCount != 0 || stats.TotalQueries != 0 {
		t.Fatalf("expected empty stats after ClearAll, got %+v", stats)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})

	store, err := Open(dir, logger, 0, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Neurons.Create(model.NeuronCreateInput{Content: "x", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	store.Close()

	store2, err := Open(dir, logger, 0, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store2.Close()

	all, err := store2.Neurons.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected surviving neuron after reopen, got %d", len(all))
	}
}
