package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// FormatOutput renders v as JSON (default) or YAML.
func FormatOutput(v interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshaling yaml: %w", err)
		}
		return string(data), nil
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling json: %w", err)
		}
		return string(data), nil
	}
}
