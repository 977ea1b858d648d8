//go:build !cgo

package indexer

import (
	"context"
	"fmt"

	"neuralrag/internal/model"
)

// ChunkResult mirrors the cgo build's type so callers compile either way.
type ChunkResult struct {
	Neurons  []model.NeuronCreateInput
	Synapses []IndexedSynapse
}

// IndexedSynapse mirrors the cgo build's type.
type IndexedSynapse struct {
	SourceIndex int
	TargetIndex int
	Type        model.SynapseType
	Weight      float64
}

// ChunkFile is unavailable without cgo: the reference chunker is built on
// github.com/smacker/go-tree-sitter, which requires it.
func ChunkFile(ctx context.Context, path string) (*ChunkResult, error) {
	return nil, fmt.Errorf("tree-sitter chunker requires cgo (built with CGO_ENABLED=0)")
}

// ChunkDirectory is unavailable without cgo, for the same reason as ChunkFile.
func ChunkDirectory(ctx context.Context, root string, manifest *Manifest) (*ChunkResult, error) {
	return nil, fmt.Errorf("tree-sitter chunker requires cgo (built with CGO_ENABLED=0)")
}
