package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowview/internal/diagram"
	"flowview/internal/domain"
)

func node(id int, kind domain.NodeKind) diagram.Node {
	return diagram.Node{ID: id, Kind: kind, Name: "n"}
}

func labels(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Divider {
			out = append(out, "---")
			continue
		}
		out = append(out, it.Label)
	}
	return out
}

func TestBuildEventMenus(t *testing.T) {
	entry := domain.EntryPointID(0)

	tests := []struct {
		name string
		node diagram.Node
		topo Topology
		want []string
	}{
		{
			name: "action with one child",
			node: node(1, domain.KindAction),
			topo: Topology{In: []int{0}, Out: []int{2}},
			want: []string{
				"Edit event...", "---",
				"Add entry point here...", "---",
				"Add new parent...", "Add new child...", "Unlink child",
				"---", "Remove event",
				"---", "Show only connected events",
			},
		},
		{
			name: "action that is the only event of an entry point",
			node: node(1, domain.KindAction),
			topo: Topology{In: []int{entry}},
			want: []string{
				"Edit event...", "---",
				"Add entry point here...", "---",
				"Add new parent...", "Add new child...", "Link to event...",
				"---", "Show only connected events",
			},
		},
		{
			name: "join with two parents",
			node: node(4, domain.KindJoin),
			topo: Topology{In: []int{2, 3}},
			want: []string{
				"Add entry point here...", "---",
				"Add new child...", "Link to event...",
				"---", "Show only connected events",
			},
		},
		{
			name: "switch with two cases",
			node: node(5, domain.KindSwitch),
			topo: Topology{In: []int{1}, Out: []int{6, 7}},
			want: []string{
				"Edit event...", "Edit cases...", "---",
				"Add entry point here...", "---",
				"Add new parent...",
				"---", "Show only connected events",
			},
		},
		{
			name: "switch with one case",
			node: node(5, domain.KindSwitch),
			topo: Topology{In: []int{1}, Out: []int{6}},
			want: []string{
				"Edit event...", "Edit cases...", "---",
				"Add entry point here...", "---",
				"Add new parent...",
				"---", "Remove event",
				"---", "Show only connected events",
			},
		},
		{
			name: "sub flow without children",
			node: node(8, domain.KindSubFlow),
			topo: Topology{In: []int{1}},
			want: []string{
				"Edit event...", "---",
				"Add entry point here...", "---",
				"Add new parent...", "Add new child...", "Link to event...",
				"---", "Remove event",
				"---", "Show only connected events",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.node, tt.topo, domain.ViewFlags{}, false)
			assert.Equal(t, tt.want, labels(got))
		})
	}
}

func TestBuildForkRemoval(t *testing.T) {
	fork := node(3, domain.KindFork)

	one := Build(fork, Topology{In: []int{1}, Out: []int{4}}, domain.ViewFlags{}, false)
	assert.True(t, Contains(one, RemoveEvent))
	assert.True(t, Contains(one, EditBranches))
	assert.False(t, Contains(one, EditEvent))
	assert.False(t, Contains(one, AddChild))

	two := Build(fork, Topology{In: []int{1}, Out: []int{4, 5}}, domain.ViewFlags{}, false)
	assert.False(t, Contains(two, RemoveEvent))
}

func TestBuildEntryPoint(t *testing.T) {
	got := Build(node(domain.EntryPointID(2), domain.KindEntry), Topology{Out: []int{0}}, domain.ViewFlags{}, true)
	assert.Equal(t, []string{"Remove entry point", "---", "Show all events"}, labels(got))
}

func TestBuildProhibited(t *testing.T) {
	flags := domain.ViewFlags{ActionsProhibited: true}

	for _, kind := range domain.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			id := 1
			if kind == domain.KindEntry {
				id = domain.EntryPointID(0)
			}
			got := Build(node(id, kind), Topology{Out: []int{2}}, flags, false)
			require.Len(t, got, 1)
			assert.Equal(t, ShowConnected, got[0].Action)
		})
	}

	got := Build(node(1, domain.KindAction), Topology{}, flags, true)
	assert.Equal(t, []Action{ShowAll}, Actions(got))
}

func TestActionLabels(t *testing.T) {
	for a := EditEvent; a <= ShowConnected; a++ {
		parsed, err := ParseAction(a.Label())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}
	_, err := ParseAction("Delete everything")
	assert.Error(t, err)

	assert.True(t, RemoveEvent.Structural())
	assert.False(t, ShowAll.Structural())
	assert.Equal(t, "Action(99)", Action(99).Label())
}

func TestTopologyOf(t *testing.T) {
	var s domain.Snapshot
	s.AddNode(domain.NewNodeRecord(domain.EntryPointID(0), domain.KindEntry, "Start"))
	s.AddNode(domain.NewNodeRecord(0, domain.KindFork, "Event0"))
	s.AddNode(domain.NewNodeRecord(1, domain.KindAction, "Event1"))
	s.AddNode(domain.NewNodeRecord(2, domain.KindJoin, "Event2"))
	s.AddEdge(domain.NewEdgeRecord(domain.EntryPointID(0), 0))
	s.AddEdge(domain.NewEdgeRecord(0, 1))
	s.AddEdge(domain.NewEdgeRecord(1, 2))
	s.AddEdge(domain.EdgeRecord{Source: 0, Target: 2, Data: domain.EdgeData{Virtual: true}})

	m := diagram.NewModel()
	m.Update(s, domain.ViewFlags{})

	topo := TopologyOf(m, 0)
	assert.Equal(t, []int{domain.EntryPointID(0)}, topo.In)
	assert.Equal(t, []int{1}, topo.Out)

	fork, _ := m.Node(0)
	items := Build(fork, topo, domain.ViewFlags{}, false)
	assert.True(t, Contains(items, RemoveEvent), "virtual join edge does not count as a branch")
}
