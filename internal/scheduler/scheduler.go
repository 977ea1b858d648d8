// Package scheduler runs the Learner's decay and prune rules on a fixed
// interval, outside the request path (spec §4.5: "decay... Runs on an
// external trigger (not per query)").
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"neuralrag/internal/learner"
	"neuralrag/internal/logging"
)

// Config controls the decay/prune trigger cadence.
type Config struct {
	Interval time.Duration // how often to run a decay+prune pass
	DaysOld  int           // Learner.Decay's staleness threshold
	Delta    float64       // Learner.Decay's weight decrement
	Floor    float64       // Learner.Prune's floor
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Interval: time.Hour,
		DaysOld:  30,
		Delta:    0.05,
		Floor:    0,
	}
}

// Scheduler ticks at Config.Interval, running the Learner's decay and
// prune on each tick until Stop is called.
type Scheduler struct {
	learner *learner.Learner
	logger  *logging.Logger
	cfg     Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler driving l according to cfg.
func New(l *learner.Learner, logger *logging.Logger, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{learner: l, logger: logger, cfg: cfg, ctx: ctx, cancel: cancel}
}

// Start begins the ticker loop in the background.
func (s *Scheduler) Start() {
	s.logger.Info("starting decay scheduler", map[string]interface{}{
		"interval": s.cfg.Interval.String(),
		"daysOld":  s.cfg.DaysOld,
	})
	s.wg.Add(1)
	go s.run()
}

// Stop cancels the ticker loop and waits up to timeout for it to exit.
func (s *Scheduler) Stop(timeout time.Duration) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("scheduler shutdown timed out")
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce()
		case <-s.ctx.Done():
			return
		}
	}
}

// RunOnce runs one decay+prune pass immediately, outside the ticker loop.
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	decayed, err := s.learner.Decay(s.ctx, s.cfg.DaysOld, s.cfg.Delta)
	if err != nil {
		s.logger.Error("decay pass failed", map[string]interface{}{"error": err.Error()})
	} else {
		s.logger.Info("decay pass complete", map[string]interface{}{"mutated": decayed})
	}

	pruned, err := s.learner.Prune(s.cfg.Floor)
	if err != nil {
		s.logger.Error("prune pass failed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("prune pass complete", map[string]interface{}{"deleted": pruned})
}
