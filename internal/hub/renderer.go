package hub

import (
	"sort"
	"sync"
	"time"

	"flowview/internal/diagram"
	"flowview/internal/domain"
	"flowview/internal/service"
	"flowview/internal/viewport"
)

// TransformPayload carries a viewport change to the clients
type TransformPayload struct {
	Transform  viewport.Transform `json:"transform"`
	DurationMS int64              `json:"duration_ms"`
}

// HighlightPayload carries the selection marks to the clients
type HighlightPayload struct {
	Node int      `json:"node"`
	In   []string `json:"in"`
	Out  []string `json:"out"`
}

// Renderer drives a browser layout engine through the hub. Frames, transforms
// and marks are broadcast; node positions come back from the layout engine via
// SetPositions.
type Renderer struct {
	hub *Hub

	mu        sync.Mutex
	frame     diagram.Frame
	rendered  bool
	layout    domain.Layout
	transform TransformPayload
	highlight HighlightPayload
}

// NewRenderer creates a renderer on h and installs its greeting
func NewRenderer(h *Hub) *Renderer {
	r := &Renderer{
		hub:       h,
		layout:    domain.Layout{},
		transform: TransformPayload{Transform: viewport.Identity()},
		highlight: HighlightPayload{Node: -1},
	}
	h.SetGreeting(r.current)
	return r
}

func (r *Renderer) current() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.rendered {
		return nil
	}
	return []Message{
		{Type: MessageFrame, Payload: r.frame},
		{Type: MessageTransform, Payload: TransformPayload{Transform: r.transform.Transform}},
		{Type: MessageHighlight, Payload: r.highlight},
	}
}

// Render implements service.Renderer
func (r *Renderer) Render(frame diagram.Frame) {
	r.mu.Lock()
	r.frame = frame
	r.rendered = true
	r.mu.Unlock()
	r.hub.Broadcast(Message{Type: MessageFrame, Payload: frame})
}

// Locate implements viewport.Locator. Nodes outside the current frame are not
// located; nodes in it use the last position the layout engine reported.
func (r *Renderer) Locate(id int) (viewport.Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.frame.Contains(id) {
		return viewport.Point{}, false
	}
	pos, ok := r.layout[id]
	if !ok {
		return viewport.Point{}, false
	}
	return viewport.Point{X: pos.X, Y: pos.Y}, true
}

// ApplyTransform implements viewport.Animator
func (r *Renderer) ApplyTransform(t viewport.Transform, d time.Duration) {
	payload := TransformPayload{Transform: t, DurationMS: d.Milliseconds()}
	r.mu.Lock()
	r.transform = payload
	r.mu.Unlock()
	r.hub.Broadcast(Message{Type: MessageTransform, Payload: payload})
}

// Highlight implements selection.Highlighter
func (r *Renderer) Highlight(marks diagram.Marks) {
	payload := HighlightPayload{
		Node: marks.Node,
		In:   edgeKeys(marks.In),
		Out:  edgeKeys(marks.Out),
	}
	r.mu.Lock()
	r.highlight = payload
	r.mu.Unlock()
	r.hub.Broadcast(Message{Type: MessageHighlight, Payload: payload})
}

// SetPositions records node positions reported by the layout engine
func (r *Renderer) SetPositions(positions []domain.NodePosition) {
	r.mu.Lock()
	r.layout.Merge(positions)
	r.mu.Unlock()
}

// Frame returns the last rendered frame
func (r *Renderer) Frame() diagram.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

func edgeKeys(set map[diagram.EdgeKey]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}

var _ service.Renderer = (*Renderer)(nil)
