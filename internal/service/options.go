package service

import (
	"time"

	"flowview/internal/selection"
	"flowview/internal/viewport"
)

// Options tunes controller timing and keyboard steps
type Options struct {
	// MenuActionDelay defers a menu action past the menu dismissal so the host
	// dialog it opens does not re-enter the menu event.
	MenuActionDelay time.Duration
	// RenderSettleDelay is the layout engine's render transition length. Scrolls
	// after a filtered re-render wait for it so node positions are final.
	RenderSettleDelay time.Duration
	// DragThreshold separates a background click from the end of a drag
	DragThreshold time.Duration
	// ScrollDuration animates scroll-into-view after selection and rebuild
	ScrollDuration time.Duration
	// NavigateDuration animates keyboard navigation
	NavigateDuration time.Duration

	PanStep  float64
	ZoomStep float64

	// Origin is the pan offset restored after a data change with nothing selected
	Origin viewport.Point

	Width  float64
	Height float64
}

// DefaultOptions returns the stock timings
func DefaultOptions() Options {
	return Options{
		MenuActionDelay:   60 * time.Millisecond,
		RenderSettleDelay: 500 * time.Millisecond,
		DragThreshold:     selection.DefaultDragThreshold,
		ScrollDuration:    time.Second,
		NavigateDuration:  500 * time.Millisecond,
		PanStep:           100,
		ZoomStep:          0.1,
		Origin:            viewport.Point{X: 20, Y: 20},
		Width:             1280,
		Height:            800,
	}
}

func (o *Options) applyDefaults() {
	def := DefaultOptions()
	if o.MenuActionDelay <= 0 {
		o.MenuActionDelay = def.MenuActionDelay
	}
	if o.RenderSettleDelay <= 0 {
		o.RenderSettleDelay = def.RenderSettleDelay
	}
	if o.DragThreshold <= 0 {
		o.DragThreshold = def.DragThreshold
	}
	if o.ScrollDuration <= 0 {
		o.ScrollDuration = def.ScrollDuration
	}
	if o.NavigateDuration <= 0 {
		o.NavigateDuration = def.NavigateDuration
	}
	if o.PanStep <= 0 {
		o.PanStep = def.PanStep
	}
	if o.ZoomStep <= 0 || o.ZoomStep >= 1 {
		o.ZoomStep = def.ZoomStep
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
}
