package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var decayDaysOld int
var pruneFloor float64

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Manually run one decay-and-prune pass over co_activation synapses",
	RunE:  runDecay,
}

func init() {
	decayCmd.Flags().IntVar(&decayDaysOld, "days-old", 0, "Override learner.decayDaysOld (0 uses the configured value)")
	decayCmd.Flags().Float64Var(&pruneFloor, "floor", -1, "Override learner.pruneFloor (-1 uses the configured value)")
	rootCmd.AddCommand(decayCmd)
}

func runDecay(cmd *cobra.Command, args []string) error {
	a, err := openApp(mustGetRepoRoot())
	if err != nil {
		return err
	}
	defer a.Close()

	daysOld := a.cfg.Learner.DecayDaysOld
	if decayDaysOld > 0 {
		daysOld = decayDaysOld
	}
	floor := a.cfg.Learner.PruneFloor
	if pruneFloor >= 0 {
		floor = pruneFloor
	}

	decayed, err := a.learner.Decay(context.Background(), daysOld, a.cfg.Learner.DecayDelta)
	if err != nil {
		return fmt.Errorf("decay pass: %w", err)
	}
	pruned, err := a.learner.Prune(floor)
	if err != nil {
		return fmt.Errorf("prune pass: %w", err)
	}

	fmt.Printf("decayed %d synapse(s), pruned %d synapse(s)\n", decayed, pruned)
	return nil
}
