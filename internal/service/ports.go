package service

import (
	"flowview/internal/diagram"
	"flowview/internal/domain"
	"flowview/internal/selection"
	"flowview/internal/viewport"
)

// Host is the application that owns the flowchart. Every call returns promptly;
// RequestSnapshot answers through reply, possibly from another goroutine.
// Structural commands are fire-and-forget: their effect arrives later as a
// data-changed notification.
type Host interface {
	RequestSnapshot(reply func(domain.Snapshot, error))

	Ready()
	Reloaded()
	SelectionChanged(id int)

	EditEvent(id int) error
	EditSwitchBranches(id int) error
	EditForkBranches(id int) error
	AddEntryPoint(id int) error
	AddEventAbove(parents []int, id int) error
	AddEventBelow(id int) error
	Unlink(id int) error
	Link(id int) error
	RemoveEvent(parents []int, id int) error
	RemoveEntryPoint(id int) error
}

// Renderer is the layout engine: it draws frames, reports where nodes landed,
// and applies the viewport transform and selection marks.
type Renderer interface {
	viewport.Locator
	viewport.Animator
	selection.Highlighter

	Render(frame diagram.Frame)
}

// Notifications are the host-originated signals the controller reacts to
type Notifications interface {
	DataChanged()
	FileLoaded()
	SelectRequested(id int)
	SetEventNamesVisible(visible bool)
	SetEventParamsVisible(visible bool)
	SetActionsProhibited(prohibited bool)
}
