// Package handler implements the HTTP API of the flowview diagram.
//
// The layout engine in the browser reports gestures (clicks, double clicks,
// key presses, pan and zoom starts) and node positions; a host that prefers
// plain HTTP over the websocket bridge posts its notifications under
// /api/host/. Every request that touches the controller runs on the
// controller's loop through a service.Dispatcher.
//
// # Response Format
//
// Success responses return JSON data or an empty 202/204. Error responses
// return JSON with {error, details}: 400 for malformed input, 404 for unknown
// nodes, 409 for menu actions the node does not offer, 503 when the controller
// loop has stopped.
//
// # Middleware
//
// Chain composes Recover, CORS and Logger around the mux.
package handler
