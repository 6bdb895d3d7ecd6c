package flowchart

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowview/internal/domain"
)

const forkDoc = `
version: "1"
name: Village
entry_points:
  - name: Start
    main: Greet
events:
  - name: Greet
    type: action
    actor: Npc
    action: Talk
    params:
      MessageId: Hello
    next: Split
  - name: Split
    type: fork
    forks: [Wave, Ask]
    join: Merge
  - name: Wave
    type: action
    actor: Npc
    action: Wave
  - name: Ask
    type: switch
    actor: Npc
    query: IsFriendly
    cases:
      - {value: 0, event: Frown}
      - {value: 1, event: Smile}
  - name: Merge
    type: join
    next: Leave
  - name: Frown
    type: action
    actor: Npc
    action: Frown
  - name: Smile
    type: action
    actor: Npc
    action: Smile
  - name: Leave
    type: sub_flow
    flowchart: Town
    entry_point: Exit
  - name: Orphan
    type: action
    actor: Npc
    action: Idle
`

func edgeList(s domain.Snapshot) []string {
	var out []string
	for _, e := range s.Edges() {
		desc := fmt.Sprintf("%d>%d", e.Source, e.Target)
		if e.Data.Virtual {
			desc += " virtual"
		}
		if e.Data.Value != nil {
			desc += " " + e.DisplayLabel()
		}
		out = append(out, desc)
	}
	return out
}

func nodeIDs(s domain.Snapshot) []int {
	var ids []int
	for _, n := range s.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBuildFork(t *testing.T) {
	fc, err := Parse([]byte(forkDoc))
	require.NoError(t, err)
	assert.Equal(t, "Village", fc.Name)

	snap := Build(fc)

	// depth first from the entry point, the unreached event last
	assert.Equal(t, []int{-1000, 0, 1, 2, 3, 5, 6, 4, 7, 8}, nodeIDs(snap))
	assert.Equal(t, []string{
		"-1000>0",
		"0>1",
		"1>2",
		"2>4 virtual",
		"1>3",
		"3>5 0",
		"5>4 virtual",
		"3>6 1",
		"6>4 virtual",
		"4>7",
	}, edgeList(snap))

	nodes := snap.Nodes()
	assert.Equal(t, domain.KindEntry, nodes[0].Kind)
	assert.Equal(t, "Start", nodes[0].Data.Name)

	greet := nodes[1]
	assert.Equal(t, "Npc", greet.Data.Actor)
	assert.Equal(t, "Talk", greet.Data.Action)
	v, ok := greet.Data.Params.Get("MessageId")
	require.True(t, ok)
	assert.Equal(t, "Hello", v)

	leave := nodes[8]
	assert.Equal(t, domain.KindSubFlow, leave.Kind)
	assert.Equal(t, "Town", leave.Data.ResFlowchartName)
	assert.Equal(t, "Exit", leave.Data.EntryPointName)
}

func TestBuildSwitchInsideFork(t *testing.T) {
	fc := &Flowchart{
		EntryPoints: []EntryPoint{{Name: "Start", Main: 0}},
		Events: []Event{
			{Name: "Split", Kind: domain.KindFork, Forks: []int{1}, Join: 4, Next: -1},
			{Name: "Ask", Kind: domain.KindSwitch, Next: -1, Join: -1, Cases: []Case{
				{Value: "yes", Event: 2},
				{Value: "no", Event: 3},
			}},
			{Name: "Nod", Kind: domain.KindAction, Next: -1, Join: -1},
			{Name: "Shrug", Kind: domain.KindAction, Next: -1, Join: -1},
			{Name: "Merge", Kind: domain.KindJoin, Next: -1, Join: -1},
		},
	}

	snap := Build(fc)
	assert.Equal(t, []int{-1000, 0, 1, 2, 3, 4}, nodeIDs(snap))
	assert.Equal(t, []string{
		"-1000>0",
		"0>1",
		"1>2 yes",
		"2>4 virtual",
		"1>3 no",
		"3>4 virtual",
		"1>4 virtual",
	}, edgeList(snap))
}

func TestIsBooleanSwitch(t *testing.T) {
	tests := []struct {
		name  string
		cases []Case
		want  bool
	}{
		{"ints", []Case{{Value: 0}, {Value: 1}}, true},
		{"reversed", []Case{{Value: 1}, {Value: 0}}, true},
		{"floats", []Case{{Value: 0.0}, {Value: 1.0}}, true},
		{"bools", []Case{{Value: false}, {Value: true}}, true},
		{"missing one", []Case{{Value: 0}, {Value: 2}}, false},
		{"three cases", []Case{{Value: 0}, {Value: 1}, {Value: 2}}, false},
		{"strings", []Case{{Value: "0"}, {Value: "1"}}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBooleanSwitch(tt.cases))
		})
	}
}

func TestBuildUnbalancedJoin(t *testing.T) {
	fc := &Flowchart{
		Events: []Event{
			{Name: "Merge", Kind: domain.KindJoin, Next: 1, Join: -1},
			{Name: "After", Kind: domain.KindAction, Next: -1, Join: -1},
		},
	}

	var snap domain.Snapshot
	require.NotPanics(t, func() { snap = Build(fc) })
	assert.Equal(t, []int{0, 1}, nodeIDs(snap))
	assert.Equal(t, []string{"0>1"}, edgeList(snap))
}

func TestBuildEntryPoints(t *testing.T) {
	fc := &Flowchart{
		EntryPoints: []EntryPoint{
			{Name: "First", Main: 0},
			{Name: "Second", Main: 0},
			{Name: "Dangling", Main: -1},
		},
		Events: []Event{
			{Name: "Only", Kind: domain.KindAction, Next: -1, Join: -1},
		},
	}

	snap := Build(fc)
	assert.Equal(t, []int{-1000, 0, -1001, -1002}, nodeIDs(snap))
	assert.Equal(t, []string{"-1000>0", "-1001>0"}, edgeList(snap))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{
			name: "unknown next",
			doc:  "events:\n  - {name: A, type: action, next: B}\n",
			is:   ErrUnknownEvent,
		},
		{
			name: "unknown entry main",
			doc:  "entry_points:\n  - {name: S, main: B}\nevents:\n  - {name: A, type: action}\n",
			is:   ErrUnknownEvent,
		},
		{
			name: "unknown type",
			doc:  "events:\n  - {name: A, type: loop}\n",
			is:   domain.ErrUnknownNodeType,
		},
		{
			name: "entry as event",
			doc:  "events:\n  - {name: A, type: entry}\n",
			is:   domain.ErrUnknownNodeType,
		},
		{
			name: "duplicate name",
			doc:  "events:\n  - {name: A, type: action}\n  - {name: A, type: join}\n",
		},
		{
			name: "fork without join",
			doc:  "events:\n  - {name: A, type: fork, forks: [B]}\n  - {name: B, type: action}\n",
		},
		{
			name: "malformed",
			doc:  "events: [",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestIsDocument(t *testing.T) {
	assert.True(t, IsDocument([]byte(forkDoc)))
	assert.False(t, IsDocument([]byte("- {type: node, id: 1, node_type: join, data: {name: x}}\n")))
	assert.False(t, IsDocument([]byte("nodes: []\nedges: []\n")))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "village.yaml")
	require.NoError(t, os.WriteFile(path, []byte(forkDoc), 0o644))

	fc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, fc.Events, 9)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
