package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var queryEmbeddingFile string
var queryFormat string

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a retrieval query against the store",
	Long: `Run a retrieval query against the store.

neuralrag does not compute embeddings itself (an external collaborator's
job); pass the query vector as a JSON array of floats via --embedding.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryEmbeddingFile, "embedding", "", "Path to a JSON file containing the query embedding as a float array (required)")
	queryCmd.Flags().StringVar(&queryFormat, "format", "json", "Output format: json or yaml")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryEmbeddingFile == "" {
		return fmt.Errorf("--embedding is required: neuralrag does not compute embeddings")
	}

	data, err := os.ReadFile(queryEmbeddingFile)
	if err != nil {
		return fmt.Errorf("reading embedding file: %w", err)
	}
	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return fmt.Errorf("parsing embedding file as a JSON float array: %w", err)
	}

	a, err := openApp(mustGetRepoRoot())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.retrieval.Query(context.Background(), args[0], embedding)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	out, err := FormatOutput(result, OutputFormat(queryFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
