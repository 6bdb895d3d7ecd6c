package flowchart

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"flowview/internal/domain"

	"gopkg.in/yaml.v3"
)

// ErrUnknownEvent is returned when a document references an event it does not define
var ErrUnknownEvent = errors.New("unknown event")

// DocumentYAML represents the flowchart file structure
type DocumentYAML struct {
	Version     string           `yaml:"version"`
	Name        string           `yaml:"name"`
	EntryPoints []EntryPointYAML `yaml:"entry_points"`
	Events      []EventYAML      `yaml:"events"`
}

// EntryPointYAML represents an entry point
type EntryPointYAML struct {
	Name string `yaml:"name"`
	Main string `yaml:"main,omitempty"`
}

// EventYAML represents an event in YAML format
type EventYAML struct {
	Name   string        `yaml:"name"`
	Type   string        `yaml:"type"`
	Actor  string        `yaml:"actor,omitempty"`
	Action string        `yaml:"action,omitempty"`
	Query  string        `yaml:"query,omitempty"`
	Params domain.Params `yaml:"params,omitempty"`

	Next  string     `yaml:"next,omitempty"`
	Cases []CaseYAML `yaml:"cases,omitempty"`
	Forks []string   `yaml:"forks,omitempty"`
	Join  string     `yaml:"join,omitempty"`

	Flowchart  string `yaml:"flowchart,omitempty"`
	EntryPoint string `yaml:"entry_point,omitempty"`
}

// CaseYAML represents a switch case
type CaseYAML struct {
	Value any    `yaml:"value"`
	Event string `yaml:"event"`
}

// LoadFile loads a flowchart from a YAML file
func LoadFile(path string) (*Flowchart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Parse(data)
}

// Parse parses a flowchart from YAML bytes
func Parse(data []byte) (*Flowchart, error) {
	var doc DocumentYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return convertDocument(&doc)
}

// IsDocument reports whether YAML bytes hold a flowchart document rather than
// a snapshot
func IsDocument(data []byte) bool {
	var probe struct {
		Events []yaml.Node `yaml:"events"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	return len(probe.Events) > 0
}

func convertDocument(doc *DocumentYAML) (*Flowchart, error) {
	fc := &Flowchart{Name: doc.Name}

	// Index events by name
	index := make(map[string]int, len(doc.Events))
	for i, e := range doc.Events {
		if e.Name == "" {
			return nil, fmt.Errorf("event %d has no name", i)
		}
		if _, dup := index[e.Name]; dup {
			return nil, fmt.Errorf("duplicate event %q", e.Name)
		}
		index[e.Name] = i
	}

	ref := func(owner, name string) (int, error) {
		if name == "" {
			return -1, nil
		}
		idx, ok := index[name]
		if !ok {
			return -1, fmt.Errorf("%w: %q referenced by %q", ErrUnknownEvent, name, owner)
		}
		return idx, nil
	}

	// Convert entry points
	for _, ep := range doc.EntryPoints {
		main, err := ref(ep.Name, ep.Main)
		if err != nil {
			return nil, err
		}
		fc.EntryPoints = append(fc.EntryPoints, EntryPoint{Name: ep.Name, Main: main})
	}

	// Convert events
	for _, e := range doc.Events {
		kind, err := domain.ParseNodeKind(strings.ToLower(e.Type))
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", e.Name, err)
		}
		if kind == domain.KindEntry {
			return nil, fmt.Errorf("event %q: %w: entry points are declared separately", e.Name, domain.ErrUnknownNodeType)
		}

		ev := Event{
			Name:       e.Name,
			Kind:       kind,
			Actor:      e.Actor,
			Action:     e.Action,
			Query:      e.Query,
			Params:     e.Params,
			Flowchart:  e.Flowchart,
			EntryPoint: e.EntryPoint,
		}
		if ev.Next, err = ref(e.Name, e.Next); err != nil {
			return nil, err
		}
		if ev.Join, err = ref(e.Name, e.Join); err != nil {
			return nil, err
		}
		for _, c := range e.Cases {
			target, err := ref(e.Name, c.Event)
			if err != nil {
				return nil, err
			}
			if target < 0 {
				return nil, fmt.Errorf("event %q: case %v has no target", e.Name, c.Value)
			}
			ev.Cases = append(ev.Cases, Case{Value: c.Value, Event: target})
		}
		for _, f := range e.Forks {
			target, err := ref(e.Name, f)
			if err != nil {
				return nil, err
			}
			ev.Forks = append(ev.Forks, target)
		}
		if kind == domain.KindFork && ev.Join < 0 {
			return nil, fmt.Errorf("fork %q has no join", e.Name)
		}

		fc.Events = append(fc.Events, ev)
	}

	return fc, nil
}
