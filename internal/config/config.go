package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config represents the complete neuralrag configuration (schema v1).
type Config struct {
	Version  int    `json:"version" mapstructure:"version" toml:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot" toml:"repoRoot"`

	Store     StoreConfig     `json:"store" mapstructure:"store" toml:"store"`
	Retrieval RetrievalConfig `json:"retrieval" mapstructure:"retrieval" toml:"retrieval"`
	Learner   LearnerConfig   `json:"learner" mapstructure:"learner" toml:"learner"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging" toml:"logging"`
}

// StoreConfig contains embedded-store configuration.
type StoreConfig struct {
	// Path is relative to RepoRoot, e.g. ".neuralrag/brain.db".
	Path            string `json:"path" mapstructure:"path" toml:"path"`
	EmbeddingDim    int    `json:"embeddingDim" mapstructure:"embeddingDim" toml:"embeddingDim"`
	BusyTimeoutMs   int    `json:"busyTimeoutMs" mapstructure:"busyTimeoutMs" toml:"busyTimeoutMs"`
	CompressContent bool   `json:"compressContent" mapstructure:"compressContent" toml:"compressContent"`
}

// RetrievalConfig contains the Retrieval Engine and Graph Walker defaults
// from spec §4.3/§4.4.
type RetrievalConfig struct {
	MaxNeurons    int      `json:"maxNeurons" mapstructure:"maxNeurons" toml:"maxNeurons"`
	EntryCount    int      `json:"entryCount" mapstructure:"entryCount" toml:"entryCount"`
	DecayFactor   float64  `json:"decayFactor" mapstructure:"decayFactor" toml:"decayFactor"`
	MinActivation float64  `json:"minActivation" mapstructure:"minActivation" toml:"minActivation"`
	MinSimilarity *float64 `json:"minSimilarity,omitempty" mapstructure:"minSimilarity" toml:"minSimilarity,omitempty"`
}

// LearnerConfig exposes the Hebbian constants as configurable values, with
// the spec's literal constants as defaults (open question in spec §9).
type LearnerConfig struct {
	StrengthenDelta      float64 `json:"strengthenDelta" mapstructure:"strengthenDelta" toml:"strengthenDelta"`
	InitialCoActivation  float64 `json:"initialCoActivation" mapstructure:"initialCoActivation" toml:"initialCoActivation"`
	DecayDaysOld         int     `json:"decayDaysOld" mapstructure:"decayDaysOld" toml:"decayDaysOld"`
	DecayDelta           float64 `json:"decayDelta" mapstructure:"decayDelta" toml:"decayDelta"`
	PruneFloor           float64 `json:"pruneFloor" mapstructure:"pruneFloor" toml:"pruneFloor"`
	DecayIntervalSeconds int     `json:"decayIntervalSeconds" mapstructure:"decayIntervalSeconds" toml:"decayIntervalSeconds"`
	BatchSize            int     `json:"batchSize" mapstructure:"batchSize" toml:"batchSize"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Level  string `json:"level" mapstructure:"level" toml:"level"`
}

// DefaultConfig returns the default configuration, matching spec.md's
// stated defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Store: StoreConfig{
			Path:            filepath.Join(".neuralrag", "brain.db"),
			EmbeddingDim:    0,
			BusyTimeoutMs:   5000,
			CompressContent: false,
		},
		Retrieval: RetrievalConfig{
			MaxNeurons:    15,
			EntryCount:    3,
			DecayFactor:   0.7,
			MinActivation: 0.1,
			MinSimilarity: nil,
		},
		Learner: LearnerConfig{
			StrengthenDelta:      0.05,
			InitialCoActivation:  0.3,
			DecayDaysOld:         30,
			DecayDelta:           0.05,
			PruneFloor:           0,
			DecayIntervalSeconds: 3600,
			BatchSize:            500,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <repoRoot>/.neuralrag/config.json,
// falling back to DefaultConfig if no file is present. A config.toml in the
// same directory takes precedence over config.json when both exist, for
// operators who prefer TOML (the same override-format pattern the teacher
// uses for its federation config).
func LoadConfig(repoRoot string) (*Config, error) {
	def := DefaultConfig()

	tomlPath := filepath.Join(repoRoot, ".neuralrag", "config.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		cfg := *def
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	v := viper.New()
	v.SetDefault("version", def.Version)
	v.SetDefault("repoRoot", def.RepoRoot)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".neuralrag"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, err
	}

	cfg := *def
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <repoRoot>/.neuralrag/config.json.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".neuralrag")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks that the configuration's numeric fields lie within the
// ranges spec.md requires of them.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Retrieval.MaxNeurons <= 0 {
		return &ConfigError{Field: "retrieval.maxNeurons", Message: "must be positive"}
	}
	if c.Retrieval.EntryCount <= 0 {
		return &ConfigError{Field: "retrieval.entryCount", Message: "must be positive"}
	}
	if c.Retrieval.DecayFactor <= 0 || c.Retrieval.DecayFactor >= 1 {
		return &ConfigError{Field: "retrieval.decayFactor", Message: "must be in (0, 1)"}
	}
	if c.Retrieval.MinActivation < 0 || c.Retrieval.MinActivation >= 1 {
		return &ConfigError{Field: "retrieval.minActivation", Message: "must be in [0, 1)"}
	}
	if c.Learner.BatchSize <= 0 {
		return &ConfigError{Field: "learner.batchSize", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
