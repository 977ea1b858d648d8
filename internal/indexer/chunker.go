//go:build cgo

package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"neuralrag/internal/model"
)

// ChunkResult is a set of extracted neurons (one file's from ChunkSource,
// every chunked file's from ChunkDirectory) and the structural synapses
// between them. Synapse endpoints are expressed as indexes into
// Neurons, since ids are not assigned until the Store creates them.
type ChunkResult struct {
	Neurons  []model.NeuronCreateInput
	Synapses []IndexedSynapse
}

// IndexedSynapse is a structural edge between two neurons of the same
// ChunkResult, named by position rather than id.
type IndexedSynapse struct {
	SourceIndex int
	TargetIndex int
	Type        model.SynapseType
	Weight      float64
}

var goParser struct {
	p *sitter.Parser
}

func init() {
	goParser.p = sitter.NewParser()
	goParser.p.SetLanguage(golang.GetLanguage())
}

// ChunkFile parses a single Go source file into neurons (one per top-level
// function, method, and type declaration) connected by proximity synapses
// in source order.
func ChunkFile(ctx context.Context, path string) (*ChunkResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ChunkSource(ctx, path, source)
}

// ChunkSource parses source bytes attributed to path.
func ChunkSource(ctx context.Context, path string, source []byte) (*ChunkResult, error) {
	tree, err := goParser.p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	root := tree.RootNode()

	var neurons []model.NeuronCreateInput
	walkTopLevel(root, func(node *sitter.Node) {
		neuron, ok := neuronFromNode(node, source, path)
		if ok {
			neurons = append(neurons, neuron)
		}
	})

	var synapses []IndexedSynapse
	for i := 1; i < len(neurons); i++ {
		synapses = append(synapses, IndexedSynapse{
			SourceIndex: i - 1,
			TargetIndex: i,
			Type:        model.SynapseProximity,
			Weight:      0.3,
		})
	}

	return &ChunkResult{Neurons: neurons, Synapses: synapses}, nil
}

func walkTopLevel(root *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_declaration", "method_declaration":
			visit(child)
		case "type_declaration":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec != nil && spec.Type() == "type_spec" {
					visit(spec)
				}
			}
		}
	}
}

func neuronFromNode(node *sitter.Node, source []byte, path string) (model.NeuronCreateInput, bool) {
	name, neuronType := classify(node, source)
	if name == "" {
		return model.NeuronCreateInput{}, false
	}

	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1
	content := string(source[node.StartByte():node.EndByte()])

	return model.NeuronCreateInput{
		Content:   content,
		Summary:   summarize(content),
		FilePath:  path,
		StartLine: startLine,
		EndLine:   endLine,
		Type:      neuronType,
		Name:      name,
		Language:  "go",
	}, true
}

func classify(node *sitter.Node, source []byte) (string, model.NeuronType) {
	switch node.Type() {
	case "function_declaration":
		name := fieldText(node, "name", source)
		return name, model.NeuronFunction
	case "method_declaration":
		name := fieldText(node, "name", source)
		return name, model.NeuronMethod
	case "type_spec":
		name := fieldText(node, "name", source)
		kind := model.NeuronTypeKind
		if typeNode := node.ChildByFieldName("type"); typeNode != nil && typeNode.Type() == "interface_type" {
			kind = model.NeuronInterface
		}
		return name, kind
	}
	return "", ""
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	n := node.ChildByFieldName(field)
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func summarize(content string) string {
	line := strings.SplitN(content, "\n", 2)[0]
	line = strings.TrimSpace(line)
	if len(line) > 120 {
		return line[:120] + "..."
	}
	return line
}

// ChunkDirectory walks root, chunking every file the manifest claims for
// the "go" language except _test.go files, skipping directories the
// manifest lists in SkipDirs.
func ChunkDirectory(ctx context.Context, root string, manifest *Manifest) (*ChunkResult, error) {
	goSpec, ok := manifest.Languages["go"]
	if !ok {
		return nil, fmt.Errorf("manifest has no \"go\" language entry")
	}
	skip := map[string]bool{}
	for _, d := range goSpec.SkipDirs {
		skip[d] = true
	}

	combined := &ChunkResult{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if skip[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		claimed := false
		for _, ext := range goSpec.Extensions {
			if filepath.Ext(path) == ext {
				claimed = true
				break
			}
		}
		if !claimed || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		result, err := ChunkFile(ctx, path)
		if err != nil {
			return nil
		}
		offset := len(combined.Neurons)
		combined.Neurons = append(combined.Neurons, result.Neurons...)
		for _, s := range result.Synapses {
			combined.Synapses = append(combined.Synapses, IndexedSynapse{
				SourceIndex: s.SourceIndex + offset,
				TargetIndex: s.TargetIndex + offset,
				Type:        s.Type,
				Weight:      s.Weight,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return combined, nil
}
