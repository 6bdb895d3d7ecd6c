package domain

// NodePosition is where the layout engine placed a node, in diagram coordinates
type NodePosition struct {
	NodeID int     `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// NewNodePosition creates a node position
func NewNodePosition(nodeID int, x, y float64) NodePosition {
	return NodePosition{NodeID: nodeID, X: x, Y: y}
}

// Layout indexes reported positions by node id
type Layout map[int]NodePosition

// Merge records positions, replacing earlier reports for the same nodes
func (l Layout) Merge(positions []NodePosition) {
	for _, p := range positions {
		l[p.NodeID] = p
	}
}
