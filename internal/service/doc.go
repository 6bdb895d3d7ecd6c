// Package service implements the interaction controller of the flowview diagram.
//
// The Controller coordinates the diagram model, the selection and the viewport
// in response to host notifications, pointer gestures and key presses, and turns
// context menu choices into host commands.
//
// # Concurrency
//
// All controller state is owned by a single task Loop. Nothing inside the
// controller locks; instead every entry point runs as a loop task. Host replies
// arrive on arbitrary goroutines and are posted back onto the loop. Code outside
// the loop goes through a Dispatcher.
//
// Two delays order the work:
//
//   - MenuActionDelay defers menu actions past the menu dismissal.
//   - RenderSettleDelay holds scrolls after a rebuild or a filtered re-render
//     until the layout engine has finished its transition and node positions
//     are final.
//
// A data-changed notification always rebuilds and renders before any scroll it
// schedules. Overlapping reloads each issue a request; a generation counter drops
// replies older than the newest one applied.
//
// # Event System
//
// The controller publishes reloads, selection changes, whitelist changes and
// failed host commands on an EventBus so connected clients can follow along via
// Server-Sent Events.
package service
