package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"neuralrag/internal/model"
)

// importBatch is the on-disk shape an external indexer writes: neurons
// first so synapses can reference the ids the store assigns. Synapse
// endpoints may reference either a stored neuron id or a 0-based index
// into the Neurons array of this same batch, via "sourceIndex"/"targetIndex".
type importBatch struct {
	Neurons  []model.NeuronCreateInput `json:"neurons"`
	Synapses []importSynapse           `json:"synapses"`
}

type importSynapse struct {
	SourceIndex *int                   `json:"sourceIndex,omitempty"`
	TargetIndex *int                   `json:"targetIndex,omitempty"`
	SourceID    string                 `json:"sourceId,omitempty"`
	TargetID    string                 `json:"targetId,omitempty"`
	Weight      float64                `json:"weight"`
	Type        model.SynapseType      `json:"type"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

var importCmd = &cobra.Command{
	Use:   "import <batch.json>",
	Short: "Load a batch of neurons and synapses produced by an external indexer",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading batch file: %w", err)
	}

	var batch importBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parsing batch file: %w", err)
	}

	a, err := openApp(mustGetRepoRoot())
	if err != nil {
		return err
	}
	defer a.Close()

	var neuronIDs []string
	if len(batch.Neurons) > 0 {
		neuronIDs, err = a.store.Neurons.CreateBatch(batch.Neurons)
		if err != nil {
			return fmt.Errorf("creating neurons: %w", err)
		}
		a.index.Invalidate()
	}

	if len(batch.Synapses) == 0 {
		fmt.Printf("imported %d neuron(s)\n", len(neuronIDs))
		return nil
	}

	inputs := make([]model.SynapseCreateInput, len(batch.Synapses))
	for i, s := range batch.Synapses {
		source, err := resolveEndpoint(s.SourceID, s.SourceIndex, neuronIDs)
		if err != nil {
			return fmt.Errorf("synapse %d source: %w", i, err)
		}
		target, err := resolveEndpoint(s.TargetID, s.TargetIndex, neuronIDs)
		if err != nil {
			return fmt.Errorf("synapse %d target: %w", i, err)
		}
		inputs[i] = model.SynapseCreateInput{
			SourceID: source, TargetID: target, Weight: s.Weight, Type: s.Type, Metadata: s.Metadata,
		}
	}

	inserted, err := a.store.Synapses.CreateBatch(inputs)
	if err != nil {
		return fmt.Errorf("creating synapses: %w", err)
	}

	fmt.Printf("imported %d neuron(s), %d synapse(s) (%d already present)\n",
		len(neuronIDs), inserted, len(inputs)-inserted)
	return nil
}

func resolveEndpoint(id string, index *int, neuronIDs []string) (string, error) {
	if id != "" {
		return id, nil
	}
	if index == nil {
		return "", fmt.Errorf("neither id nor index given")
	}
	if *index < 0 || *index >= len(neuronIDs) {
		return "", fmt.Errorf("index %d out of range for %d neurons in this batch", *index, len(neuronIDs))
	}
	return neuronIDs[*index], nil
}
