package yaml

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// RenderRecord serializes a description as indented JSON or as block YAML.
// YAML output is derived from the JSON form so both formats share field
// names, field order and parameters omission.
func RenderRecord(desc *entities.CertificateDescription, format string) ([]byte, error) {
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal description: %w", err)
	}

	switch format {
	case entities.OutputJSON, "":
		return append(data, '\n'), nil
	case entities.OutputYAML:
		return jsonToYAML(data)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to read JSON as YAML: %w", err)
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// clearStyle drops the flow and quoting styles inherited from JSON
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}
