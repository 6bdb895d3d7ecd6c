package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ElementType tags a snapshot element on the wire
type ElementType string

const (
	ElementNode ElementType = "node"
	ElementEdge ElementType = "edge"
)

// Element is one entry of a snapshot: exactly one of Node or Edge is set
type Element struct {
	Node *NodeRecord
	Edge *EdgeRecord
}

// NodeElement wraps a node record
func NodeElement(n NodeRecord) Element {
	return Element{Node: &n}
}

// EdgeElement wraps an edge record
func EdgeElement(e EdgeRecord) Element {
	return Element{Edge: &e}
}

// Type returns the wire tag of the element
func (e Element) Type() ElementType {
	if e.Edge != nil {
		return ElementEdge
	}
	return ElementNode
}

// MarshalJSON implements json.Marshaler
func (e Element) MarshalJSON() ([]byte, error) {
	switch {
	case e.Node != nil:
		return json.Marshal(struct {
			Type ElementType `json:"type"`
			NodeRecord
		}{ElementNode, *e.Node})
	case e.Edge != nil:
		return json.Marshal(struct {
			Type ElementType `json:"type"`
			EdgeRecord
		}{ElementEdge, *e.Edge})
	}
	return nil, fmt.Errorf("empty snapshot element")
}

// UnmarshalJSON implements json.Unmarshaler
func (e *Element) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ElementType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case ElementNode:
		var n NodeRecord
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("node element: %w", err)
		}
		*e = Element{Node: &n}
	case ElementEdge:
		var edge EdgeRecord
		if err := json.Unmarshal(data, &edge); err != nil {
			return fmt.Errorf("edge element: %w", err)
		}
		*e = Element{Edge: &edge}
	default:
		return fmt.Errorf("unknown element type %q", head.Type)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (e Element) MarshalYAML() (interface{}, error) {
	switch {
	case e.Node != nil:
		return struct {
			Type       ElementType `yaml:"type"`
			NodeRecord `yaml:",inline"`
		}{ElementNode, *e.Node}, nil
	case e.Edge != nil:
		return struct {
			Type       ElementType `yaml:"type"`
			EdgeRecord `yaml:",inline"`
		}{ElementEdge, *e.Edge}, nil
	}
	return nil, fmt.Errorf("empty snapshot element")
}

// UnmarshalYAML implements yaml.Unmarshaler
func (e *Element) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Type ElementType `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	switch head.Type {
	case ElementNode:
		var n NodeRecord
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("node element at line %d: %w", node.Line, err)
		}
		*e = Element{Node: &n}
	case ElementEdge:
		var edge EdgeRecord
		if err := node.Decode(&edge); err != nil {
			return fmt.Errorf("edge element at line %d: %w", node.Line, err)
		}
		*e = Element{Edge: &edge}
	default:
		return fmt.Errorf("unknown element type %q at line %d", head.Type, node.Line)
	}
	return nil
}

// Snapshot is the ordered record list the host returns for the current flowchart
type Snapshot []Element

// AddNode appends a node record and returns its id
func (s *Snapshot) AddNode(n NodeRecord) int {
	*s = append(*s, NodeElement(n))
	return n.ID
}

// AddEdge appends an edge record
func (s *Snapshot) AddEdge(e EdgeRecord) {
	*s = append(*s, EdgeElement(e))
}

// Nodes returns the node records in order
func (s Snapshot) Nodes() []NodeRecord {
	nodes := make([]NodeRecord, 0, len(s))
	for _, el := range s {
		if el.Node != nil {
			nodes = append(nodes, *el.Node)
		}
	}
	return nodes
}

// Edges returns the edge records in order
func (s Snapshot) Edges() []EdgeRecord {
	edges := make([]EdgeRecord, 0, len(s))
	for _, el := range s {
		if el.Edge != nil {
			edges = append(edges, *el.Edge)
		}
	}
	return edges
}
