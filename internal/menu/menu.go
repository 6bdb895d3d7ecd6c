// Package menu decides which actions the context menu offers for a node.
package menu

import (
	"fmt"

	"flowview/internal/diagram"
	"flowview/internal/domain"
)

// Action is a context menu entry
type Action int

const (
	EditEvent Action = iota
	EditCases
	EditBranches
	AddEntryPoint
	AddParent
	AddChild
	UnlinkChild
	Link
	RemoveEvent
	RemoveEntryPoint
	ShowAll
	ShowConnected
)

var actionLabels = [...]string{
	EditEvent:        "Edit event...",
	EditCases:        "Edit cases...",
	EditBranches:     "Edit branches...",
	AddEntryPoint:    "Add entry point here...",
	AddParent:        "Add new parent...",
	AddChild:         "Add new child...",
	UnlinkChild:      "Unlink child",
	Link:             "Link to event...",
	RemoveEvent:      "Remove event",
	RemoveEntryPoint: "Remove entry point",
	ShowAll:          "Show all events",
	ShowConnected:    "Show only connected events",
}

// Label returns the menu text of the action
func (a Action) Label() string {
	if a < 0 || int(a) >= len(actionLabels) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionLabels[a]
}

func (a Action) String() string {
	return a.Label()
}

// ParseAction maps a menu text back to its action
func ParseAction(label string) (Action, error) {
	for i, l := range actionLabels {
		if l == label {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown menu action %q", label)
}

// Structural reports whether the action asks the host to change the flowchart
func (a Action) Structural() bool {
	return a != ShowAll && a != ShowConnected
}

// Item is one menu row: an action or a divider
type Item struct {
	Action  Action `json:"action"`
	Label   string `json:"label,omitempty"`
	Divider bool   `json:"divider,omitempty"`
}

func action(a Action) Item {
	return Item{Action: a, Label: a.Label()}
}

func divider() Item {
	return Item{Action: -1, Divider: true}
}

// Topology is the non-virtual neighborhood of a node
type Topology struct {
	In  []int
	Out []int
}

// TopologyOf reads the non-virtual neighborhood of id from the model
func TopologyOf(m *diagram.Model, id int) Topology {
	return Topology{In: m.Predecessors(id), Out: m.Successors(id)}
}

// Build returns the ordered menu for node. flags.ActionsProhibited removes every
// structural entry; isolated selects the view toggle entry.
func Build(node diagram.Node, topo Topology, flags domain.ViewFlags, isolated bool) []Item {
	var items []Item
	if !flags.ActionsProhibited {
		if domain.IsEntryPointID(node.ID) {
			items = append(items, action(RemoveEntryPoint))
		} else {
			items = eventItems(node.Kind, topo)
		}
	}

	if len(items) > 0 {
		items = append(items, divider())
	}
	if isolated {
		items = append(items, action(ShowAll))
	} else {
		items = append(items, action(ShowConnected))
	}
	return items
}

func eventItems(kind domain.NodeKind, topo Topology) []Item {
	var (
		isSwitch  bool
		isFork    bool
		isJoin    bool
		hasChild  bool
		removable bool
	)
	switch kind {
	case domain.KindAction, domain.KindSubFlow:
		hasChild, removable = true, true
	case domain.KindSwitch:
		isSwitch = true
	case domain.KindFork:
		isFork = true
	case domain.KindJoin:
		isJoin, hasChild = true, true
	case domain.KindEntry:
	}

	var items []Item
	if !isFork && !isJoin {
		items = append(items, action(EditEvent))
	}
	if isSwitch {
		items = append(items, action(EditCases))
	}
	if isFork {
		items = append(items, action(EditBranches))
	}
	if !isJoin {
		items = append(items, divider())
	}
	items = append(items, action(AddEntryPoint), divider())

	if !isJoin {
		items = append(items, action(AddParent))
	}
	if hasChild {
		items = append(items, action(AddChild))
		if len(topo.Out) > 0 {
			items = append(items, action(UnlinkChild))
		} else {
			items = append(items, action(Link))
		}
	}

	oneBranchSwitchOrFork := len(topo.Out) <= 1 && (isFork || isSwitch)
	onlyEventInEntry := len(topo.Out) == 0 && len(topo.In) == 1 && domain.IsEntryPointID(topo.In[0])
	if !onlyEventInEntry && (removable || oneBranchSwitchOrFork) {
		items = append(items, divider(), action(RemoveEvent))
	}
	return items
}

// Actions returns the non-divider actions of a menu in order
func Actions(items []Item) []Action {
	var out []Action
	for _, it := range items {
		if !it.Divider {
			out = append(out, it.Action)
		}
	}
	return out
}

// Contains reports whether the menu offers a
func Contains(items []Item, a Action) bool {
	for _, it := range items {
		if !it.Divider && it.Action == a {
			return true
		}
	}
	return false
}
