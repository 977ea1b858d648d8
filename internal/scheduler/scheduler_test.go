package scheduler

import (
	"testing"
	"time"

	"neuralrag/internal/config"
	"neuralrag/internal/learner"
	"neuralrag/internal/logging"
	"neuralrag/internal/model"
	"neuralrag/internal/storage"
)

func TestRunOnceKeepsNeverFiredSynapse(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
	store, err := storage.Open(dir, logger, 0, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	n1, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "1", FilePath: "a.go", StartLine: 1, EndLine: 1, Type: model.NeuronFunction})
	n2, _ := store.Neurons.Create(model.NeuronCreateInput{Content: "2", FilePath: "a.go", StartLine: 2, EndLine: 2, Type: model.NeuronFunction})

	l := learner.New(store.Synapses, config.DefaultConfig().Learner, logger)
	if err := l.ObserveCoActivation(n1.ID, n2.ID); err != nil {
		t.Fatalf("ObserveCoActivation: %v", err)
	}

	sched := New(l, logger, Config{Interval: time.Hour, DaysOld: 30, Delta: 0.05, Floor: 0})
	sched.RunOnce()

	outgoing, err := store.Synapses.GetOutgoing(n1.ID)
	if err != nil {
		t.Fatalf("GetOutgoing: %v", err)
	}
	if len(outgoing) != 1 {
		t.Fatalf("expected the fresh synapse to survive an unfired decay pass, got %d", len(outgoing))
	}
}

func TestStopWithoutStartReturnsImmediately(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
	store, err := storage.Open(dir, logger, 0, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	l := learner.New(store.Synapses, config.DefaultConfig().Learner, logger)
	sched := New(l, logger, DefaultConfig())
	if err := sched.Stop(time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
