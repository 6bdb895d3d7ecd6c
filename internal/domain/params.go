package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Param is one named event parameter. Value is a scalar: a number, a string, a
// bool or nil.
type Param struct {
	Name  string
	Value any
}

// Params is an ordered parameter mapping. Wire order is preserved because labels
// list parameters in the order the host sent them.
type Params []Param

// Get returns the value of the named parameter
func (p Params) Get(name string) (any, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return nil, false
}

// Set replaces the named parameter in place or appends it
func (p *Params) Set(name string, value any) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Name: name, Value: value})
}

// Names returns parameter names in order
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for _, param := range p {
		names = append(names, param.Name)
	}
	return names
}

// MarshalJSON encodes the params as a JSON object in order
func (p Params) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(param.Value)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", param.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. A JSON null yields nil params.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("params: expected object, got %v", tok)
	}

	out := make(Params, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("params: expected key, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("params %s: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// MarshalYAML encodes the params as an ordered YAML mapping
func (p Params) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, param := range p {
		var val yaml.Node
		if err := val.Encode(param.Value); err != nil {
			return nil, fmt.Errorf("param %s: %w", param.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: param.Name},
			&val,
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping keeping key order
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("params: expected mapping at line %d", node.Line)
	}

	out := make(Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("params %s: %w", node.Content[i].Value, err)
		}
		out.Set(node.Content[i].Value, value)
	}
	*p = out
	return nil
}
