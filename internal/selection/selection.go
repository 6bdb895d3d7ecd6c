// Package selection tracks the single selected diagram node.
//
// The selected id lives outside the diagram model so it survives a rebuild.
// After every rebuild the controller re-resolves the id against the new model.
package selection

import (
	"time"

	"flowview/internal/diagram"
)

// None is the selected id when nothing is selected. It is also the id sent to
// the host when the selection is cleared.
const None = -1

// DefaultDragThreshold separates a click from the end of a drag-to-pan
const DefaultDragThreshold = 100 * time.Millisecond

// Notifier receives selection changes
type Notifier interface {
	SelectionChanged(id int)
}

// Highlighter draws selection marks on the rendered view
type Highlighter interface {
	Highlight(marks diagram.Marks)
}

// Controller is the selection state machine
type Controller struct {
	notifier    Notifier
	highlighter Highlighter
	threshold   time.Duration

	selected     int
	marks        diagram.Marks
	gestureStart time.Time
}

// New creates a controller with nothing selected. A zero threshold uses
// DefaultDragThreshold.
func New(notifier Notifier, highlighter Highlighter, threshold time.Duration) *Controller {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &Controller{
		notifier:    notifier,
		highlighter: highlighter,
		threshold:   threshold,
		selected:    None,
		marks:       diagram.NoMarks(),
	}
}

// Selected returns the selected id or None
func (c *Controller) Selected() int {
	return c.selected
}

// HasSelection reports whether a node is selected
func (c *Controller) HasSelection() bool {
	return c.selected != None
}

// Marks returns the current visual marks
func (c *Controller) Marks() diagram.Marks {
	return c.marks
}

// Select marks id and its non-virtual edges, then notifies the host. Selecting
// the already selected node re-applies its marks. It returns false, changing
// nothing, when id is not in the model.
func (c *Controller) Select(m *diagram.Model, id int) bool {
	if !m.Has(id) {
		return false
	}
	c.unmark()
	c.mark(m, id)
	c.notify(id)
	return true
}

// Clear drops the selection and notifies the host with None
func (c *Controller) Clear() {
	c.unmark()
	c.selected = None
	c.notify(None)
}

// Restore re-applies the selection against a rebuilt model without notifying.
// When the selected node is gone the selection resets and the host is notified
// with None. It returns whether a node is still selected.
func (c *Controller) Restore(m *diagram.Model) bool {
	if c.selected == None {
		c.marks = diagram.NoMarks()
		return false
	}
	if !m.Has(c.selected) {
		c.Clear()
		return false
	}
	c.mark(m, c.selected)
	return true
}

// Reset forgets the selection and its marks without notifying
func (c *Controller) Reset() {
	c.selected = None
	c.marks = diagram.NoMarks()
}

// GestureStarted records the start of a zoom or pan gesture
func (c *Controller) GestureStarted(at time.Time) {
	c.gestureStart = at
}

// ClickBackground clears the selection when the click is deliberate: it arrives
// less than the drag threshold after the gesture start it ends. A later click
// ends a drag and is ignored. It returns whether the selection was cleared.
func (c *Controller) ClickBackground(at time.Time) bool {
	if !c.gestureStart.IsZero() && at.Sub(c.gestureStart) >= c.threshold {
		return false
	}
	c.Clear()
	return true
}

func (c *Controller) mark(m *diagram.Model, id int) {
	c.selected = id
	c.marks = diagram.MarkNode(m, id)
	if c.highlighter != nil {
		c.highlighter.Highlight(c.marks)
	}
}

func (c *Controller) unmark() {
	if c.marks.Empty() {
		return
	}
	c.marks = diagram.NoMarks()
	if c.highlighter != nil {
		c.highlighter.Highlight(c.marks)
	}
}

func (c *Controller) notify(id int) {
	if c.notifier != nil {
		c.notifier.SelectionChanged(id)
	}
}
