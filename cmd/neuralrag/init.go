package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"neuralrag/internal/config"
	"neuralrag/internal/logging"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a .neuralrag/ store in the current project",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Reinitialize, removing any existing .neuralrag directory")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.InfoLevel})
	repoRoot := mustGetRepoRoot()
	dir := filepath.Join(repoRoot, ".neuralrag")

	if _, err := os.Stat(dir); err == nil {
		if !initForce {
			fmt.Println("neuralrag already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(dir, "config.json"))
			fmt.Println("Run 'neuralrag init --force' to reinitialize.")
			return nil
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing existing .neuralrag directory: %w", err)
		}
		logger.Info("removed existing .neuralrag directory", nil)
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = "."
	if err := cfg.Save(repoRoot); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Println("neuralrag initialized successfully.")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(dir, "config.json"))
	fmt.Println("Next: run 'neuralrag import <batch.json>' to load neurons and synapses.")
	return nil
}
