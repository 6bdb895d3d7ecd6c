// Package flowchart turns an event-flow document into the snapshot the diagram
// layer renders.
package flowchart

import (
	"flowview/internal/domain"
)

// Event is one flowchart event. References to other events are indices into
// Flowchart.Events, -1 when absent.
type Event struct {
	Name   string
	Kind   domain.NodeKind
	Actor  string
	Action string
	Query  string
	Params domain.Params

	// Next follows action, join and sub_flow events
	Next int
	// Cases are the switch branches in document order
	Cases []Case
	// Forks are the fork branches; Join closes them
	Forks []int
	Join  int

	Flowchart  string
	EntryPoint string
}

// Case is one switch branch
type Case struct {
	Value any
	Event int
}

// EntryPoint names a starting event
type EntryPoint struct {
	Name string
	Main int
}

// Flowchart is a resolved event-flow document
type Flowchart struct {
	Name        string
	EntryPoints []EntryPoint
	Events      []Event
}

// Build produces the snapshot for fc. Entry point i becomes node
// domain.EntryPointID(i) with an edge to its main event; event i becomes node i.
// Events are emitted depth-first from each entry point, then every event no
// entry point reaches.
//
// Branches inside a fork that end without a next event get a virtual edge to
// the fork's join so the layout keeps them together. A switch inside a fork
// gets one too, unless it is a plain 0/1 switch.
func Build(fc *Flowchart) domain.Snapshot {
	b := &builder{
		fc:      fc,
		visited: make([]bool, len(fc.Events)),
	}

	for i, ep := range fc.EntryPoints {
		id := domain.EntryPointID(i)
		b.snap.AddNode(domain.NewNodeRecord(id, domain.KindEntry, ep.Name))
		if ep.Main < 0 {
			continue
		}
		b.snap.AddEdge(domain.NewEdgeRecord(id, ep.Main))
		b.traverse(ep.Main, &joinStack{})
	}

	for i := range fc.Events {
		if !b.visited[i] {
			b.traverse(i, &joinStack{})
		}
	}
	return b.snap
}

// joinStack holds the joins of the forks being traversed, innermost last
type joinStack []int

func (s *joinStack) push(idx int) { *s = append(*s, idx) }

func (s *joinStack) pop() {
	if len(*s) > 0 {
		*s = (*s)[:len(*s)-1]
	}
}

func (s joinStack) top() (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

type builder struct {
	fc      *Flowchart
	snap    domain.Snapshot
	visited []bool
}

func (b *builder) traverse(idx int, joins *joinStack) {
	if idx < 0 || idx >= len(b.fc.Events) || b.visited[idx] {
		return
	}
	b.visited[idx] = true
	ev := b.fc.Events[idx]

	switch ev.Kind {
	case domain.KindAction:
		rec := domain.NewNodeRecord(idx, domain.KindAction, ev.Name)
		rec.Data.Actor = ev.Actor
		rec.Data.Action = ev.Action
		rec.Data.Params = ev.Params
		b.snap.AddNode(rec)
		b.next(idx, ev.Next, joins)

	case domain.KindSwitch:
		rec := domain.NewNodeRecord(idx, domain.KindSwitch, ev.Name)
		rec.Data.Actor = ev.Actor
		rec.Data.Query = ev.Query
		rec.Data.Params = ev.Params
		b.snap.AddNode(rec)
		for _, c := range ev.Cases {
			b.snap.AddEdge(domain.EdgeRecord{Source: idx, Target: c.Event, Data: domain.EdgeData{Value: c.Value}})
			b.traverse(c.Event, joins)
		}
		if join, ok := joins.top(); ok && !isBooleanSwitch(ev.Cases) {
			b.virtual(idx, join)
		}

	case domain.KindFork:
		b.snap.AddNode(domain.NewNodeRecord(idx, domain.KindFork, ev.Name))
		joins.push(ev.Join)
		for _, branch := range ev.Forks {
			b.snap.AddEdge(domain.NewEdgeRecord(idx, branch))
			b.traverse(branch, joins)
		}
		b.traverse(ev.Join, joins)

	case domain.KindJoin:
		joins.pop()
		b.snap.AddNode(domain.NewNodeRecord(idx, domain.KindJoin, ev.Name))
		b.next(idx, ev.Next, joins)

	case domain.KindSubFlow:
		rec := domain.NewNodeRecord(idx, domain.KindSubFlow, ev.Name)
		rec.Data.ResFlowchartName = ev.Flowchart
		rec.Data.EntryPointName = ev.EntryPoint
		rec.Data.Params = ev.Params
		b.snap.AddNode(rec)
		b.next(idx, ev.Next, joins)

	case domain.KindEntry:
	}
}

// next links idx to its successor, or to the pending join when there is none
func (b *builder) next(idx, next int, joins *joinStack) {
	if next < 0 {
		if join, ok := joins.top(); ok {
			b.virtual(idx, join)
		}
		return
	}
	b.snap.AddEdge(domain.NewEdgeRecord(idx, next))
	b.traverse(next, joins)
}

func (b *builder) virtual(from, to int) {
	b.snap.AddEdge(domain.EdgeRecord{Source: from, Target: to, Data: domain.EdgeData{Virtual: true}})
}

// isBooleanSwitch reports whether the cases are exactly {0, 1}
func isBooleanSwitch(cases []Case) bool {
	if len(cases) != 2 {
		return false
	}
	var zero, one bool
	for _, c := range cases {
		switch caseNumber(c.Value) {
		case 0:
			zero = true
		case 1:
			one = true
		}
	}
	return zero && one
}

func caseNumber(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float64:
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	}
	return -1
}
