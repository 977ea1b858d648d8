package main

import (
	"os"

	"github.com/spf13/cobra"

	"neuralrag/internal/version"
)

var (
	repoRootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "neuralrag",
	Short: "neuralrag - a local code-retrieval engine",
	Long: `neuralrag is a persistent graph store of code chunks ("neurons") and
weighted typed edges ("synapses"), with a vector-similarity entry index, a
bounded best-first spreading-activation walker, and a Hebbian learner that
adjusts edge weights from query outcomes.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("neuralrag version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoRootFlag, "repo-root", ".", "project root containing .neuralrag/")
}

func mustGetRepoRoot() string {
	if repoRootFlag != "" {
		return repoRootFlag
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
