package main

import (
	"fmt"

	"neuralrag/internal/config"
	"neuralrag/internal/learner"
	"neuralrag/internal/logging"
	"neuralrag/internal/retrieval"
	"neuralrag/internal/storage"
	"neuralrag/internal/vectorindex"
)

// app bundles the wired-up components a subcommand needs, opened against
// the repo root's .neuralrag/ directory.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	store     *storage.Store
	index     *vectorindex.Index
	learner   *learner.Learner
	retrieval *retrieval.Engine
}

func openApp(repoRoot string) (*app, error) {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		Format: logFormat(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})

	store, err := storage.Open(repoRoot, logger, cfg.Store.BusyTimeoutMs, cfg.Store.CompressContent)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	index := vectorindex.New(store.Neurons)
	l := learner.New(store.Synapses, cfg.Learner, logger)
	engine := retrieval.New(store, index, l, cfg.Retrieval, logger)

	return &app{cfg: cfg, logger: logger, store: store, index: index, learner: l, retrieval: engine}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func logFormat(s string) logging.Format {
	if s == string(logging.JSONFormat) {
		return logging.JSONFormat
	}
	return logging.HumanFormat
}
