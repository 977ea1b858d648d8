package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print store-wide counts: neurons, synapses, indexed files, queries",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "json", "Output format: json or yaml")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(mustGetRepoRoot())
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.store.Stats()
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	out, err := FormatOutput(stats, OutputFormat(statsFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
