package codec

import (
	"errors"
	"fmt"
	"io"

	"flowview/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML snapshots. It reads either a flat sequence of typed
// elements or a document with separate nodes and edges sections, and writes
// the sectioned form.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlSnapshot represents the sectioned YAML structure
type yamlSnapshot struct {
	Nodes []domain.NodeRecord `yaml:"nodes"`
	Edges []domain.EdgeRecord `yaml:"edges"`
}

// Parse imports a snapshot from YAML
func (c *YAMLCodec) Parse(r io.Reader) (domain.Snapshot, error) {
	var doc yaml.Node
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
		var snap domain.Snapshot
		if err := root.Decode(&snap); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return snap, nil

	case yaml.MappingNode:
		var ys yamlSnapshot
		if err := root.Decode(&ys); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}

		snap := make(domain.Snapshot, 0, len(ys.Nodes)+len(ys.Edges))
		for _, n := range ys.Nodes {
			snap.AddNode(n)
		}
		for _, e := range ys.Edges {
			snap.AddEdge(e)
		}
		return snap, nil
	}

	return nil, fmt.Errorf("failed to parse YAML: unexpected document at line %d", root.Line)
}

// Export exports a snapshot to YAML
func (c *YAMLCodec) Export(snap domain.Snapshot, w io.Writer) error {
	ys := yamlSnapshot{
		Nodes: snap.Nodes(),
		Edges: snap.Edges(),
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&ys); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
