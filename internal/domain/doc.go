// Package domain defines the records exchanged with the host application and the
// small set of value types shared by the diagram layer.
//
// The host owns the flowchart. It hands this layer a Snapshot: an ordered list of
// node and edge records describing one flowchart at one point in time. Nothing in
// this package mutates host data.
//
// # Node kinds
//
// NodeKind is a closed set of six kinds (entry, action, switch, fork, join,
// sub_flow). Code that behaves differently per kind switches over all six values
// rather than testing class strings.
//
// # Identifiers
//
// Event nodes carry ids >= 0. Entry points carry ids <= EntryPointIDBase (-1000).
// Ids are only stable within one snapshot; Name is the identifier that survives
// structural edits.
//
// # View flags
//
// ViewFlags is the explicit context for label formatting and menu construction:
// visibility of event names and parameters, action prohibition, and whether a
// deletion is in flight.
package domain
