package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportUsedCmd = &cobra.Command{
	Use:   "report-used <query-id> <neuron-id>...",
	Short: "Record which activated neurons were actually used, reinforcing their synapses",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runReportUsed,
}

func init() {
	rootCmd.AddCommand(reportUsedCmd)
}

func runReportUsed(cmd *cobra.Command, args []string) error {
	a, err := openApp(mustGetRepoRoot())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.retrieval.ReportUsed(args[0], args[1:]); err != nil {
		return fmt.Errorf("report-used: %w", err)
	}
	fmt.Printf("recorded %d used neuron(s) for query %s\n", len(args[1:]), args[0])
	return nil
}
