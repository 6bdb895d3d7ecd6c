package domain

import (
	"errors"
	"fmt"
)

// EntryPointIDBase is the highest id an entry-point node can carry. Entry point i
// is sent as EntryPointIDBase-i.
const EntryPointIDBase = -1000

// ErrUnknownNodeType is returned when a record names a node type outside the six kinds
var ErrUnknownNodeType = errors.New("unknown node type")

// NodeKind identifies one of the six flowchart node kinds
type NodeKind int

const (
	KindEntry NodeKind = iota
	KindAction
	KindSwitch
	KindFork
	KindJoin
	KindSubFlow
)

var kindNames = [...]string{
	KindEntry:   "entry",
	KindAction:  "action",
	KindSwitch:  "switch",
	KindFork:    "fork",
	KindJoin:    "join",
	KindSubFlow: "sub_flow",
}

// Kinds lists every node kind in declaration order
func Kinds() []NodeKind {
	return []NodeKind{KindEntry, KindAction, KindSwitch, KindFork, KindJoin, KindSubFlow}
}

// String returns the wire name of the kind, which doubles as its CSS class
func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseNodeKind maps a wire name to its kind
func ParseNodeKind(s string) (NodeKind, error) {
	for i, name := range kindNames {
		if name == s {
			return NodeKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
}

// MarshalText implements encoding.TextMarshaler
func (k NodeKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNodeType, int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *NodeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsEntryPointID reports whether id addresses an entry-point node
func IsEntryPointID(id int) bool {
	return id <= EntryPointIDBase
}

// EntryPointID returns the node id of the i-th entry point
func EntryPointID(index int) int {
	return EntryPointIDBase - index
}

// NodeData is the type-dependent field bag of a node record. Which fields are
// meaningful depends on the node kind.
type NodeData struct {
	Name             string `json:"name" yaml:"name"`
	Actor            string `json:"actor,omitempty" yaml:"actor,omitempty"`
	Action           string `json:"action,omitempty" yaml:"action,omitempty"`
	Query            string `json:"query,omitempty" yaml:"query,omitempty"`
	ResFlowchartName string `json:"res_flowchart_name,omitempty" yaml:"res_flowchart_name,omitempty"`
	EntryPointName   string `json:"entry_point_name,omitempty" yaml:"entry_point_name,omitempty"`
	Params           Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// NodeRecord is one node of a host snapshot
type NodeRecord struct {
	ID   int      `json:"id" yaml:"id"`
	Kind NodeKind `json:"node_type" yaml:"node_type"`
	Data NodeData `json:"data" yaml:"data"`
}

// NewNodeRecord creates a node record with the given stable name
func NewNodeRecord(id int, kind NodeKind, name string) NodeRecord {
	return NodeRecord{
		ID:   id,
		Kind: kind,
		Data: NodeData{Name: name},
	}
}

// IsEntryPoint reports whether the record is an entry point
func (n NodeRecord) IsEntryPoint() bool {
	return IsEntryPointID(n.ID)
}
