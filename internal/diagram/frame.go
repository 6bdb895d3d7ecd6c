package diagram

import "sort"

// Selection class modifiers applied when building a frame
const (
	ClassSelected             = "selected"
	ClassSelectedInEdge       = "selected-in-edge"
	ClassSelectedOutEdge      = "selected-out-edge"
	ClassSelectedInEdgeLabel  = "selected-in-edge-label"
	ClassSelectedOutEdgeLabel = "selected-out-edge-label"
)

// Marks is the visual selection state: the marked node and the edges marked
// as incoming or outgoing. Node is -1 when nothing is marked.
type Marks struct {
	Node int                  `json:"node"`
	In   map[EdgeKey]struct{} `json:"-"`
	Out  map[EdgeKey]struct{} `json:"-"`
}

// NoMarks returns an empty mark set
func NoMarks() Marks {
	return Marks{Node: -1}
}

// MarkNode computes the marks for selecting id: the node itself and its
// non-virtual edges in both directions.
func MarkNode(m *Model, id int) Marks {
	marks := Marks{
		Node: id,
		In:   make(map[EdgeKey]struct{}),
		Out:  make(map[EdgeKey]struct{}),
	}
	for _, e := range m.InEdges(id) {
		if !e.Virtual {
			marks.In[e.Key] = struct{}{}
		}
	}
	for _, e := range m.OutEdges(id) {
		if !e.Virtual {
			marks.Out[e.Key] = struct{}{}
		}
	}
	return marks
}

// Empty reports whether nothing is marked
func (mk Marks) Empty() bool {
	return mk.Node < 0 && len(mk.In) == 0 && len(mk.Out) == 0
}

// FrameNode is a node as handed to the layout engine
type FrameNode struct {
	ID        int    `json:"id"`
	ElementID string `json:"element_id"`
	Class     string `json:"class"`
	Label     string `json:"label"`
}

// FrameEdge is an edge as handed to the layout engine
type FrameEdge struct {
	Source     int    `json:"source"`
	Target     int    `json:"target"`
	Key        string `json:"key"`
	Label      string `json:"label"`
	Class      string `json:"class"`
	LabelClass string `json:"label_class"`
	Virtual    bool   `json:"virtual,omitempty"`
}

// Frame is one complete graph description for the layout engine
type Frame struct {
	Nodes []FrameNode `json:"nodes"`
	Edges []FrameEdge `json:"edges"`
	// Filtered is set when only a whitelisted component is shown
	Filtered bool `json:"filtered"`
}

// NodeIDs returns the ids of the frame's nodes, sorted
func (f Frame) NodeIDs() []int {
	ids := make([]int, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Ints(ids)
	return ids
}

// Contains reports whether the frame draws node id
func (f Frame) Contains(id int) bool {
	for _, n := range f.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// BuildFrame renders the model into a frame. A nil visible set shows every node;
// otherwise only listed ids are drawn, along with the edges between them.
func BuildFrame(m *Model, visible map[int]struct{}, marks Marks) Frame {
	shown := func(id int) bool {
		if visible == nil {
			return true
		}
		_, ok := visible[id]
		return ok
	}

	frame := Frame{
		Nodes:    make([]FrameNode, 0, m.Len()),
		Filtered: visible != nil,
	}
	for _, n := range m.cur.nodes {
		if !shown(n.ID) {
			continue
		}
		class := n.Class()
		if n.ID == marks.Node {
			class += " " + ClassSelected
		}
		frame.Nodes = append(frame.Nodes, FrameNode{
			ID:        n.ID,
			ElementID: n.ElementID(),
			Class:     class,
			Label:     n.Label,
		})
	}

	for _, e := range m.cur.edges {
		if !shown(e.Key.Source) || !shown(e.Key.Target) {
			continue
		}
		class := e.Class()
		labelClass := "label-" + class
		if _, ok := marks.In[e.Key]; ok {
			class += " " + ClassSelectedInEdge
			labelClass += " " + ClassSelectedInEdgeLabel
		}
		if _, ok := marks.Out[e.Key]; ok {
			class += " " + ClassSelectedOutEdge
			labelClass += " " + ClassSelectedOutEdgeLabel
		}
		frame.Edges = append(frame.Edges, FrameEdge{
			Source:     e.Key.Source,
			Target:     e.Key.Target,
			Key:        e.Key.String(),
			Label:      e.Label,
			Class:      class,
			LabelClass: labelClass,
			Virtual:    e.Virtual,
		})
	}
	return frame
}
