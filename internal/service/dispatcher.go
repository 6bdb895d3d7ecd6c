package service

import "context"

// Dispatcher runs controller operations on the loop that owns the controller.
// Host notifications are posted without waiting; Do waits for the result.
type Dispatcher struct {
	loop *Loop
	ctrl *Controller
}

// NewDispatcher pairs a controller with its loop
func NewDispatcher(loop *Loop, ctrl *Controller) *Dispatcher {
	return &Dispatcher{loop: loop, ctrl: ctrl}
}

// Do runs fn on the loop and waits for it
func (d *Dispatcher) Do(ctx context.Context, fn func(c *Controller)) error {
	return d.loop.Call(ctx, func() { fn(d.ctrl) })
}

// DataChanged implements Notifications
func (d *Dispatcher) DataChanged() {
	d.loop.Post(d.ctrl.DataChanged)
}

// FileLoaded implements Notifications
func (d *Dispatcher) FileLoaded() {
	d.loop.Post(d.ctrl.FileLoaded)
}

// SelectRequested implements Notifications
func (d *Dispatcher) SelectRequested(id int) {
	d.loop.Post(func() { d.ctrl.SelectRequested(id) })
}

// SetEventNamesVisible implements Notifications
func (d *Dispatcher) SetEventNamesVisible(visible bool) {
	d.loop.Post(func() { d.ctrl.SetEventNamesVisible(visible) })
}

// SetEventParamsVisible implements Notifications
func (d *Dispatcher) SetEventParamsVisible(visible bool) {
	d.loop.Post(func() { d.ctrl.SetEventParamsVisible(visible) })
}

// SetActionsProhibited implements Notifications
func (d *Dispatcher) SetActionsProhibited(prohibited bool) {
	d.loop.Post(func() { d.ctrl.SetActionsProhibited(prohibited) })
}

var _ Notifications = (*Dispatcher)(nil)
var _ Notifications = (*Controller)(nil)
