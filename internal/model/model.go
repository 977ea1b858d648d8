// Package model defines the persistent record types shared by the store,
// vector index, graph walker, retrieval engine, and learner.
package model

import "time"

// NeuronType is the closed set of chunk classifications a neuron may carry.
type NeuronType string

const (
	NeuronFunction  NeuronType = "function"
	NeuronClass     NeuronType = "class"
	NeuronMethod    NeuronType = "method"
	NeuronTypeKind  NeuronType = "type"
	NeuronInterface NeuronType = "interface"
	NeuronModule    NeuronType = "module"
	NeuronConfig    NeuronType = "config"
	NeuronDoc       NeuronType = "doc"
	NeuronVariable  NeuronType = "variable"
	NeuronExport    NeuronType = "export"
)

// Valid reports whether t is one of the closed set of neuron types.
func (t NeuronType) Valid() bool {
	switch t {
	case NeuronFunction, NeuronClass, NeuronMethod, NeuronTypeKind, NeuronInterface,
		NeuronModule, NeuronConfig, NeuronDoc, NeuronVariable, NeuronExport:
		return true
	}
	return false
}

// SynapseType is the closed set of relation kinds a synapse may carry.
type SynapseType string

const (
	SynapseImports       SynapseType = "imports"
	SynapseCalls         SynapseType = "calls"
	SynapseTypeReference SynapseType = "type_reference"
	SynapseExtends       SynapseType = "extends"
	SynapseProximity     SynapseType = "proximity"
	SynapseCoActivation  SynapseType = "co_activation"
	SynapseSemantic      SynapseType = "semantic"
)

// Valid reports whether t is one of the closed set of synapse types.
func (t SynapseType) Valid() bool {
	switch t {
	case SynapseImports, SynapseCalls, SynapseTypeReference, SynapseExtends,
		SynapseProximity, SynapseCoActivation, SynapseSemantic:
		return true
	}
	return false
}

// IsStructural reports whether t is a type the external indexer creates
// rather than one the Learner creates. Structural synapses are never
// decayed or pruned by the Learner (spec §4.5); they only disappear via
// file-reindex cascade.
func (t SynapseType) IsStructural() bool {
	return t != SynapseCoActivation
}

// Neuron is a stored semantic code chunk.
type Neuron struct {
	ID              string
	Content         string
	Summary         string
	Embedding       []float32 // nil or empty means "no embedding"
	FilePath        string
	StartLine       int
	EndLine         int
	Type            NeuronType
	Name            string
	Language        string
	ActivationCount int64
	LastActivated   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NeuronCreateInput is the set of fields the Chunker/Indexer collaborator
// supplies to create a neuron; id and timestamps are assigned by the Store.
type NeuronCreateInput struct {
	Content   string
	Summary   string
	Embedding []float32
	FilePath  string
	StartLine int
	EndLine   int
	Type      NeuronType
	Name      string
	Language  string
}

// Synapse is a weighted directed edge between two distinct neurons.
type Synapse struct {
	ID        string
	SourceID  string
	TargetID  string
	Weight    float64
	Type      SynapseType
	Metadata  map[string]interface{} // nil if absent
	FireCount int64
	LastFired *time.Time
	CreatedAt time.Time
}

// SynapseCreateInput is the set of fields needed to create a synapse.
type SynapseCreateInput struct {
	SourceID string
	TargetID string
	Weight   float64
	Type     SynapseType
	Metadata map[string]interface{}
}

// IndexedFile is a manifest entry tracking one indexed source file.
type IndexedFile struct {
	Path         string
	Language     string
	NeuronCount  int
	ContentHash  string
	LastIndexed  time.Time
}

// QueryLogEntry records one retrieval query and its outcome.
type QueryLogEntry struct {
	ID                 string
	Query              string
	ActivatedNeuronIDs []string
	UsedNeuronIDs      []string // nil until report_used is called
	Timestamp          time.Time
}

// Stats summarizes store-wide counts, per spec §4.1 stats().
type Stats struct {
	NeuronCount        int
	SynapseCount       int
	IndexedFileCount   int
	DistinctLanguages  []string
	MostRecentIndexed  *time.Time
	TotalQueries       int
}

// ClampWeight clamps a synapse weight to the [0, 1] invariant.
func ClampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
