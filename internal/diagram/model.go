// Package diagram holds the diagram-ready graph derived from a host snapshot.
//
// The Model is rebuilt wholesale on every Update: a fresh arena of nodes and
// edges, indexed by node id and edge key, replaces the previous one in a single
// assignment. Callers must not keep Node or Edge values across an Update; they
// keep ids and re-resolve them.
package diagram

import (
	"fmt"

	"flowview/internal/domain"
	"flowview/internal/label"
)

// EdgeKey identifies an edge. Parallel edges between the same pair are told apart
// by their value text.
type EdgeKey struct {
	Source int
	Target int
	Value  string
}

// String returns the edge element id, e.g. "edge-3-5-1"
func (k EdgeKey) String() string {
	return fmt.Sprintf("edge-%d-%d-%s", k.Source, k.Target, k.Value)
}

// Node is a derived diagram node
type Node struct {
	ID    int
	Kind  domain.NodeKind
	Label string
	// Name is the stable identifier used by the isolated-subgraph whitelist
	Name string
	// Index is the node's position in the arena
	Index int
}

// Class returns the node's CSS-like class tag
func (n Node) Class() string {
	return n.Kind.String()
}

// ElementID returns the id of the node's rendered element, e.g. "n12"
func (n Node) ElementID() string {
	return fmt.Sprintf("n%d", n.ID)
}

// Edge is a derived diagram edge
type Edge struct {
	Key     EdgeKey
	Label   string
	Virtual bool
}

// Source returns the source node id
func (e Edge) Source() int { return e.Key.Source }

// Target returns the target node id
func (e Edge) Target() int { return e.Key.Target }

// Class returns the class shared by every edge between the same pair
func (e Edge) Class() string {
	return fmt.Sprintf("edge-%d-%d", e.Key.Source, e.Key.Target)
}

// LabelID returns the id of the edge's label element
func (e Edge) LabelID() string {
	return "label-" + e.Key.String()
}

// arena is one immutable generation of the graph
type arena struct {
	nodes []Node
	byID  map[int]int
	edges []Edge
	byKey map[EdgeKey]int
	in    map[int][]int
	out   map[int][]int
}

func newArena() *arena {
	return &arena{
		byID:  make(map[int]int),
		byKey: make(map[EdgeKey]int),
		in:    make(map[int][]int),
		out:   make(map[int][]int),
	}
}

// Model is the current diagram graph
type Model struct {
	cur      *arena
	snapshot domain.Snapshot
}

// NewModel creates an empty model
func NewModel() *Model {
	return &Model{cur: newArena()}
}

// Update replaces the entire graph with one built from snapshot. Labels are
// computed with flags. Edges whose endpoints are not nodes of the snapshot are
// dropped.
func (m *Model) Update(snapshot domain.Snapshot, flags domain.ViewFlags) {
	a := newArena()

	for _, el := range snapshot {
		if el.Node == nil {
			continue
		}
		rec := *el.Node
		n := Node{
			ID:    rec.ID,
			Kind:  rec.Kind,
			Label: label.Format(rec, flags),
			Name:  rec.Data.Name,
		}
		if idx, ok := a.byID[rec.ID]; ok {
			n.Index = idx
			a.nodes[idx] = n
			continue
		}
		n.Index = len(a.nodes)
		a.byID[rec.ID] = n.Index
		a.nodes = append(a.nodes, n)
	}

	for _, el := range snapshot {
		if el.Edge == nil {
			continue
		}
		rec := *el.Edge
		if _, ok := a.byID[rec.Source]; !ok {
			continue
		}
		if _, ok := a.byID[rec.Target]; !ok {
			continue
		}
		e := Edge{
			Key:     EdgeKey{Source: rec.Source, Target: rec.Target, Value: rec.ValueText()},
			Label:   rec.DisplayLabel(),
			Virtual: rec.Data.Virtual,
		}
		if idx, ok := a.byKey[e.Key]; ok {
			a.edges[idx] = e
			continue
		}
		idx := len(a.edges)
		a.byKey[e.Key] = idx
		a.edges = append(a.edges, e)
		a.out[e.Key.Source] = append(a.out[e.Key.Source], idx)
		a.in[e.Key.Target] = append(a.in[e.Key.Target], idx)
	}

	m.snapshot = snapshot
	m.cur = a
}

// Refresh rebuilds from the last snapshot with new flags. It is a no-op when no
// snapshot has been loaded.
func (m *Model) Refresh(flags domain.ViewFlags) bool {
	if len(m.snapshot) == 0 {
		return false
	}
	m.Update(m.snapshot, flags)
	return true
}

// Clear drops the graph and the remembered snapshot
func (m *Model) Clear() {
	m.cur = newArena()
	m.snapshot = nil
}

// Loaded reports whether a snapshot has been applied since the last Clear
func (m *Model) Loaded() bool {
	return m.snapshot != nil
}

// Len returns the number of nodes
func (m *Model) Len() int {
	return len(m.cur.nodes)
}

// Node returns the node with the given id
func (m *Model) Node(id int) (Node, bool) {
	idx, ok := m.cur.byID[id]
	if !ok {
		return Node{}, false
	}
	return m.cur.nodes[idx], true
}

// Has reports whether id is a node of the current graph
func (m *Model) Has(id int) bool {
	_, ok := m.cur.byID[id]
	return ok
}

// Edge returns the edge with the given key
func (m *Model) Edge(key EdgeKey) (Edge, bool) {
	idx, ok := m.cur.byKey[key]
	if !ok {
		return Edge{}, false
	}
	return m.cur.edges[idx], true
}

// Nodes returns all nodes in snapshot order
func (m *Model) Nodes() []Node {
	out := make([]Node, len(m.cur.nodes))
	copy(out, m.cur.nodes)
	return out
}

// Edges returns all edges in snapshot order
func (m *Model) Edges() []Edge {
	out := make([]Edge, len(m.cur.edges))
	copy(out, m.cur.edges)
	return out
}

// InEdges returns the edges ending at id, virtual ones included
func (m *Model) InEdges(id int) []Edge {
	return m.collect(m.cur.in[id])
}

// OutEdges returns the edges starting at id, virtual ones included
func (m *Model) OutEdges(id int) []Edge {
	return m.collect(m.cur.out[id])
}

func (m *Model) collect(indices []int) []Edge {
	edges := make([]Edge, 0, len(indices))
	for _, idx := range indices {
		edges = append(edges, m.cur.edges[idx])
	}
	return edges
}

// Predecessors returns the distinct sources of non-virtual edges into id
func (m *Model) Predecessors(id int) []int {
	return distinct(m.cur.in[id], m.cur.edges, Edge.Source)
}

// Successors returns the distinct targets of non-virtual edges out of id
func (m *Model) Successors(id int) []int {
	return distinct(m.cur.out[id], m.cur.edges, Edge.Target)
}

func distinct(indices []int, edges []Edge, end func(Edge) int) []int {
	seen := make(map[int]struct{}, len(indices))
	ids := make([]int, 0, len(indices))
	for _, idx := range indices {
		e := edges[idx]
		if e.Virtual {
			continue
		}
		id := end(e)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ResolveNames maps stable names to the ids carrying them in the current graph
func (m *Model) ResolveNames(names map[string]struct{}) map[int]struct{} {
	ids := make(map[int]struct{}, len(names))
	for _, n := range m.cur.nodes {
		if _, ok := names[n.Name]; ok {
			ids[n.ID] = struct{}{}
		}
	}
	return ids
}
