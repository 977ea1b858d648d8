package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"neuralrag/internal/indexer"
	"neuralrag/internal/model"
)

var indexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Chunk a directory with the reference tree-sitter indexer and load the result",
	Long: `Chunk a directory with the reference tree-sitter indexer and load the
result into the store.

This is the example Chunker/Indexer collaborator from spec.md §6, not a
production indexer: it understands Go source only and emits neurons with
no embedding. Retrieval over neurons it creates is graph-only until an
external embedding step backfills them.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	manifest, err := indexer.LoadManifest(repoRoot)
	if err != nil {
		return fmt.Errorf("loading languages manifest: %w", err)
	}

	result, err := indexer.ChunkDirectory(context.Background(), args[0], manifest)
	if err != nil {
		return fmt.Errorf("chunking %s: %w", args[0], err)
	}
	if len(result.Neurons) == 0 {
		fmt.Println("no neurons extracted")
		return nil
	}

	a, err := openApp(repoRoot)
	if err != nil {
		return err
	}
	defer a.Close()

	neuronIDs, err := a.store.Neurons.CreateBatch(result.Neurons)
	if err != nil {
		return fmt.Errorf("creating neurons: %w", err)
	}
	a.index.Invalidate()

	inserted := 0
	if len(result.Synapses) > 0 {
		inputs := make([]model.SynapseCreateInput, len(result.Synapses))
		for i, s := range result.Synapses {
			inputs[i] = model.SynapseCreateInput{
				SourceID: neuronIDs[s.SourceIndex],
				TargetID: neuronIDs[s.TargetIndex],
				Weight:   s.Weight,
				Type:     s.Type,
			}
		}
		inserted, err = a.store.Synapses.CreateBatch(inputs)
		if err != nil {
			return fmt.Errorf("creating synapses: %w", err)
		}
	}

	fmt.Printf("indexed %d neuron(s), %d synapse(s)\n", len(neuronIDs), inserted)
	return nil
}
