package storage

import (
	"testing"
	"time"

	"neuralrag/internal/model"
)

// TestDecayJobScenario mirrors spec.md §8 scenario 6: a co_activation
// synapse fired 10 days ago at weight 0.05; decay(days_old=7, delta=0.05)
// should bring it to 0, and prune(0) should then delete it.
func TestDecayJobScenario(t *testing.T) {
	store := newTestStore(t)
	n1, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "1", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction})
	n2, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "2", FilePath: "a.go", StartLine: 2, EndLine: 2, Type: model.NeuronFunction})

	s, _, err := store.Synapses.Create(model.SynapseCreateInput{SourceID: n1.ID, TargetID: n2.ID, Weight: 0.05, Type: model.SynapseCoActivation})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tenDaysAgo := time.Now().UTC().Add(-10 * 24 * time.Hour).Format(time.RFC3339)
	if _, err := store.db.Exec(`UPDATE synapses SET last_fired = ? WHERE id = ?`, tenDaysAgo, s.ID); err != nil {
		t.Fatalf("seeding last_fired: %v", err)
	}

	ids, err := store.Synapses.DecayCoActivation(7, 0.05, 500)
	if err != nil {
		t.Fatalf("DecayCoActivation: %v", err)
	}
	if len(ids) != 1 || ids[0] != s.ID {
		t.Fatalf("expected exactly the stale synapse, got %v", ids)
	}
	if err := store.Synapses.ApplyDecayBatch(ids, 0.05); err != nil {
		t.Fatalf("ApplyDecayBatch: %v", err)
	}

	var weight float64
	if err := store.db.QueryRow(`SELECT weight FROM synapses WHERE id = ?`, s.ID).Scan(&weight); err != nil {
		t.Fatalf("reading weight: %v", err)
	}
	if weight != 0 {
		t.Fatalf("expected weight 0 after decay, got %v", weight)
	}

	pruned, err := store.Synapses.PruneCoActivation(0)
	if err != nil {
		t.Fatalf("PruneCoActivation: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned synapse, got %d", pruned)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM synapses WHERE id = ?`, s.ID).Scan(&count); err != nil {
		t.Fatalf("counting: %v", err)
	}
	if count != 0 {
		t.Fatal("expected synapse to be deleted after prune")
	}
}

func TestPruneNeverTouchesStructuralSynapses(t *testing.T) {
	store := newTestStore(t)
	n1, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "1", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction})
	n2, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "2", FilePath: "a.go", StartLine: 2, EndLine: 2, Type: model.NeuronFunction})

	if _, _, err := store.Synapses.Create(model.SynapseCreateInput{SourceID: n1.ID, TargetID: n2.ID, Weight: 0, Type: model.SynapseImports}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	pruned, err := store.Synapses.PruneCoActivation(1.0)
	if err != nil {
		t.Fatalf("PruneCoActivation: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("expected structural synapse to survive prune, pruned=%d", pruned)
	}
}
