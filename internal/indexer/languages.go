// Package indexer provides a reference implementation of the external
// Chunker/Indexer collaborator described in spec.md §6: it walks source
// files and produces the NeuronCreateInput/SynapseCreateInput batches the
// Store ingests. Embedding computation itself stays outside this package
// (an explicit Non-goal); neurons are emitted with a nil Embedding and the
// caller is expected to backfill it before import, or to import without
// embeddings and rely on graph-only retrieval.
package indexer

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// LanguageSpec describes how one language's files should be chunked.
type LanguageSpec struct {
	Extensions    []string `toml:"extensions"`
	MaxChunkLines int      `toml:"max_chunk_lines,omitempty"`
	SkipDirs      []string `toml:"skip_dirs,omitempty"`
}

// Manifest is the root of a .neuralrag/languages.toml file: a map of
// language name to its chunking hints, kept separate from the main
// viper-owned config so per-language rules can be hand-edited without
// touching the store's own configuration.
type Manifest struct {
	Languages map[string]LanguageSpec `toml:"languages"`
}

// DefaultManifest returns the built-in manifest used when no
// languages.toml is present: Go only, since the reference chunker in this
// package only implements a Go tree-sitter grammar.
func DefaultManifest() *Manifest {
	return &Manifest{
		Languages: map[string]LanguageSpec{
			"go": {
				Extensions:    []string{".go"},
				MaxChunkLines: 200,
				SkipDirs:      []string{".git", "vendor", "node_modules"},
			},
		},
	}
}

// LoadManifest reads <repoRoot>/.neuralrag/languages.toml, falling back to
// DefaultManifest if the file is absent.
func LoadManifest(repoRoot string) (*Manifest, error) {
	path := filepath.Join(repoRoot, ".neuralrag", "languages.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading languages manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing languages manifest: %w", err)
	}
	if m.Languages == nil {
		m.Languages = map[string]LanguageSpec{}
	}
	return &m, nil
}

// specFor returns the spec governing ext (including its leading dot), and
// whether any configured language claims it.
func (m *Manifest) specFor(ext string) (LanguageSpec, string, bool) {
	for name, spec := range m.Languages {
		for _, e := range spec.Extensions {
			if e == ext {
				return spec, name, true
			}
		}
	}
	return LanguageSpec{}, "", false
}
