package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"neuralrag/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the decay/prune scheduler in the foreground until interrupted",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(mustGetRepoRoot())
	if err != nil {
		return err
	}
	defer a.Close()

	schedCfg := scheduler.Config{
		Interval: time.Duration(a.cfg.Learner.DecayIntervalSeconds) * time.Second,
		DaysOld:  a.cfg.Learner.DecayDaysOld,
		Delta:    a.cfg.Learner.DecayDelta,
		Floor:    a.cfg.Learner.PruneFloor,
	}
	sched := scheduler.New(a.learner, a.logger, schedCfg)
	sched.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	fmt.Println("shutting down...")
	return sched.Stop(10 * time.Second)
}
