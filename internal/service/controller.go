package service

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"flowview/internal/diagram"
	"flowview/internal/domain"
	"flowview/internal/menu"
	"flowview/internal/selection"
	"flowview/internal/viewport"
)

var (
	// ErrUnknownNode is returned for gestures on ids the model does not hold
	ErrUnknownNode = errors.New("unknown node")
	// ErrActionUnavailable is returned when a menu action is not offered for a node
	ErrActionUnavailable = errors.New("action not available")
)

// Controller wires gestures, keys and host notifications to the diagram model,
// selection and viewport. Every method must run on the task loop that owns the
// controller; see Dispatcher for calling it from other goroutines.
type Controller struct {
	host     Host
	renderer Renderer
	sched    Scheduler
	bus      *EventBus
	opts     Options

	model *diagram.Model
	sel   *selection.Controller
	view  *viewport.Controller

	flags domain.ViewFlags
	// whitelist holds the stable names of the isolated component, nil when
	// every node is shown
	whitelist map[string]struct{}

	requested uint64
	applied   uint64
	started   bool
}

// NewController creates a controller with an empty model
func NewController(host Host, renderer Renderer, sched Scheduler, bus *EventBus, opts Options) *Controller {
	opts.applyDefaults()
	c := &Controller{
		host:     host,
		renderer: renderer,
		sched:    sched,
		bus:      bus,
		opts:     opts,
		model:    diagram.NewModel(),
		view:     viewport.New(renderer, renderer, opts.Width, opts.Height),
	}
	c.sel = selection.New(selectionNotifier{c}, renderer, opts.DragThreshold)
	return c
}

// selectionNotifier forwards selection changes to the host and the event bus
type selectionNotifier struct {
	c *Controller
}

func (n selectionNotifier) SelectionChanged(id int) {
	n.c.host.SelectionChanged(id)
	n.c.bus.Publish(Event{Type: EventSelectionChanged, Payload: map[string]int{"id": id}})
}

// Start emits the ready signal and performs the initial load. Later calls do
// nothing.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	c.host.Ready()
	c.load(nil)
}

// DataChanged reloads the snapshot. When the reload leaves nothing selected and
// no deletion is in progress the pan offset returns to the origin.
func (c *Controller) DataChanged() {
	c.load(func() {
		if !c.sel.HasSelection() && !c.flags.Deleting {
			c.view.SetTranslate(c.opts.Origin.X, c.opts.Origin.Y)
		}
	})
}

// load requests a snapshot and applies the reply on the loop
func (c *Controller) load(after func()) {
	c.requested++
	gen := c.requested
	c.host.RequestSnapshot(func(snap domain.Snapshot, err error) {
		c.sched.Post(func() { c.apply(gen, snap, err, after) })
	})
}

// apply rebuilds the model from a snapshot reply. Replies older than the newest
// applied one are dropped; empty replies abort silently.
func (c *Controller) apply(gen uint64, snap domain.Snapshot, err error, after func()) {
	if err != nil {
		log.Printf("Snapshot request %d failed: %v", gen, err)
		return
	}
	if len(snap) == 0 {
		return
	}
	if gen <= c.applied {
		log.Printf("Dropping stale snapshot reply %d (applied %d)", gen, c.applied)
		c.bus.Publish(Event{Type: EventStaleReply, Payload: map[string]uint64{"generation": gen, "applied": c.applied}})
		return
	}
	c.applied = gen

	c.model.Update(snap, c.flags)
	c.sel.Restore(c.model)
	c.render()

	// positions are final only once the layout engine has drawn the new frame
	if c.sel.HasSelection() && !c.flags.Deleting {
		c.deferScroll(c.sel.Selected())
	}

	c.host.Reloaded()
	c.bus.Publish(Event{Type: EventReloaded, Payload: map[string]interface{}{
		"generation": gen,
		"nodes":      c.model.Len(),
	}})

	if after != nil {
		after()
	}
	c.flags.Deleting = false
}

// render draws the model, restricted to the whitelist when one is active
func (c *Controller) render() {
	var visible map[int]struct{}
	if c.whitelist != nil {
		visible = c.model.ResolveNames(c.whitelist)
	}
	c.renderer.Render(diagram.BuildFrame(c.model, visible, c.sel.Marks()))
}

// FileLoaded drops the whitelist, the selection and the model. The host
// announces the new file's data first, so a reply still outstanding carries the
// new file and is applied when it arrives.
func (c *Controller) FileLoaded() {
	c.setWhitelist(nil)
	c.sel.Clear()
	c.model.Clear()
	c.render()
}

// SelectRequested selects id on behalf of the host. With an isolated view the
// component around id is isolated first; otherwise the zoom resets to 1 and the
// node is scrolled into view.
func (c *Controller) SelectRequested(id int) {
	if c.whitelist != nil {
		c.ShowConnected(id)
		c.sel.Select(c.model, id)
		return
	}
	c.view.SetScale(1)
	if c.sel.Select(c.model, id) {
		c.view.ScrollTo(id, false, c.opts.ScrollDuration)
	}
}

// SetEventNamesVisible toggles the name line of event labels
func (c *Controller) SetEventNamesVisible(visible bool) {
	prev := c.flags.ShowEventNames
	c.flags.ShowEventNames = visible
	c.relabel(prev != visible)
}

// SetEventParamsVisible toggles parameter lines of event labels
func (c *Controller) SetEventParamsVisible(visible bool) {
	prev := c.flags.ShowParams
	c.flags.ShowParams = visible
	c.relabel(prev != visible)
}

func (c *Controller) relabel(changed bool) {
	c.bus.Publish(Event{Type: EventFlagsChanged, Payload: c.flags})
	if !changed || !c.model.Loaded() {
		return
	}
	c.model.Refresh(c.flags)
	c.render()
}

// SetActionsProhibited hides or shows structural menu actions
func (c *Controller) SetActionsProhibited(prohibited bool) {
	c.flags.ActionsProhibited = prohibited
	c.bus.Publish(Event{Type: EventFlagsChanged, Payload: c.flags})
}

// ClickNode selects id
func (c *Controller) ClickNode(id int) error {
	if !c.sel.Select(c.model, id) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return nil
}

// DoubleClickNode opens the host editor for id: fork branches for forks, the
// event editor for everything else. Nothing happens while actions are prohibited.
func (c *Controller) DoubleClickNode(id int) error {
	if c.flags.ActionsProhibited {
		return nil
	}
	n, ok := c.model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}

	var err error
	switch n.Kind {
	case domain.KindFork:
		err = c.host.EditForkBranches(id)
	case domain.KindEntry, domain.KindAction, domain.KindSwitch, domain.KindJoin, domain.KindSubFlow:
		err = c.host.EditEvent(id)
	}
	if err != nil {
		c.commandFailed("edit", id, err)
	}
	return nil
}

// ZoomStart records the start of a pan or zoom gesture
func (c *Controller) ZoomStart() {
	c.sel.GestureStarted(c.sched.Now())
}

// ClickBackground clears the selection unless the click ends a drag
func (c *Controller) ClickBackground() bool {
	return c.sel.ClickBackground(c.sched.Now())
}

// ContextMenu returns the menu for id
func (c *Controller) ContextMenu(id int) ([]menu.Item, error) {
	n, ok := c.model.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return menu.Build(n, menu.TopologyOf(c.model, id), c.flags, c.whitelist != nil), nil
}

// InvokeMenu schedules action for id after the menu dismissal delay. The
// node's neighbors are captured now, as the menu showed them.
func (c *Controller) InvokeMenu(id int, action menu.Action) error {
	items, err := c.ContextMenu(id)
	if err != nil {
		return err
	}
	if !menu.Contains(items, action) {
		return fmt.Errorf("%w: %s on %d", ErrActionUnavailable, action, id)
	}

	topo := menu.TopologyOf(c.model, id)
	c.sched.After(c.opts.MenuActionDelay, func() {
		c.runAction(id, action, topo)
	})
	return nil
}

func (c *Controller) runAction(id int, action menu.Action, topo menu.Topology) {
	var err error
	switch action {
	case menu.EditEvent:
		err = c.host.EditEvent(id)
	case menu.EditCases:
		err = c.host.EditSwitchBranches(id)
	case menu.EditBranches:
		err = c.host.EditForkBranches(id)
	case menu.AddEntryPoint:
		err = c.host.AddEntryPoint(id)
	case menu.AddParent:
		err = c.host.AddEventAbove(topo.In, id)
	case menu.AddChild:
		err = c.host.AddEventBelow(id)
	case menu.UnlinkChild:
		err = c.host.Unlink(id)
	case menu.Link:
		err = c.host.Link(id)
	case menu.RemoveEvent:
		c.flags.Deleting = true
		err = c.host.RemoveEvent(topo.In, id)
	case menu.RemoveEntryPoint:
		err = c.host.RemoveEntryPoint(id)
	case menu.ShowAll:
		c.ShowAll()
	case menu.ShowConnected:
		c.ShowConnected(id)
	}
	if err != nil {
		c.commandFailed(action.Label(), id, err)
	}
}

func (c *Controller) commandFailed(command string, id int, err error) {
	log.Printf("Host command %q on %d failed: %v", command, id, err)
	c.bus.Publish(Event{Type: EventCommandFailed, Payload: map[string]interface{}{
		"command": command,
		"id":      id,
		"error":   err.Error(),
	}})
}

// ShowConnected isolates the component around seed. A seed of selection.None
// uses the current selection. An unknown seed leaves the view unchanged. Once
// the layout engine settles, the seed is scrolled into view.
func (c *Controller) ShowConnected(seed int) bool {
	if seed == selection.None {
		seed = c.sel.Selected()
	}
	names, ok := diagram.FindComponent(c.model, seed)
	if !ok {
		return false
	}
	c.setWhitelist(names)
	c.render()
	c.deferScroll(seed)
	return true
}

// ShowAll drops the whitelist and scrolls back to the selection, if any
func (c *Controller) ShowAll() {
	c.setWhitelist(nil)
	c.render()
	if c.sel.HasSelection() {
		c.deferScroll(c.sel.Selected())
	}
}

func (c *Controller) deferScroll(id int) {
	c.sched.After(c.opts.RenderSettleDelay, func() {
		c.view.ScrollTo(id, false, c.opts.ScrollDuration)
	})
}

func (c *Controller) setWhitelist(names map[string]struct{}) {
	c.whitelist = names
	c.bus.Publish(Event{Type: EventWhitelistChanged, Payload: sortedNames(names)})
}

func sortedNames(names map[string]struct{}) []string {
	if names == nil {
		return nil
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resize records a new viewport size
func (c *Controller) Resize(width, height float64) {
	c.view.Resize(width, height)
}

// Model exposes the current diagram model for read-only queries
func (c *Controller) Model() *diagram.Model {
	return c.model
}

// State is a point-in-time view of the controller
type State struct {
	Selected   int                `json:"selected"`
	Transform  viewport.Transform `json:"transform"`
	Flags      domain.ViewFlags   `json:"flags"`
	Isolated   bool               `json:"isolated"`
	Whitelist  []string           `json:"whitelist,omitempty"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Generation uint64             `json:"generation"`
}

// State returns the current controller state
func (c *Controller) State() State {
	return State{
		Selected:   c.sel.Selected(),
		Transform:  c.view.Transform(),
		Flags:      c.flags,
		Isolated:   c.whitelist != nil,
		Whitelist:  sortedNames(c.whitelist),
		Nodes:      c.model.Len(),
		Edges:      len(c.model.Edges()),
		Generation: c.applied,
	}
}
