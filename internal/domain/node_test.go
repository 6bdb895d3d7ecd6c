package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseNodeKind(t *testing.T) {
	tests := []struct {
		input string
		want  NodeKind
	}{
		{"entry", KindEntry},
		{"action", KindAction},
		{"switch", KindSwitch},
		{"fork", KindFork},
		{"join", KindJoin},
		{"sub_flow", KindSubFlow},
	}

	for _, tt := range tests {
		got, err := ParseNodeKind(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.input, got.String())
	}

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := ParseNodeKind("subflow")
		assert.ErrorIs(t, err, ErrUnknownNodeType)
	})
}

func TestNodeKindText(t *testing.T) {
	t.Run("round trips through JSON", func(t *testing.T) {
		for _, kind := range Kinds() {
			data, err := json.Marshal(kind)
			require.NoError(t, err)

			var got NodeKind
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, kind, got)
		}
	})

	t.Run("out of range kind does not marshal", func(t *testing.T) {
		_, err := json.Marshal(NodeKind(42))
		assert.ErrorIs(t, err, ErrUnknownNodeType)
		assert.Equal(t, "NodeKind(42)", NodeKind(42).String())
	})
}

func TestEntryPointIDs(t *testing.T) {
	assert.Equal(t, -1000, EntryPointID(0))
	assert.Equal(t, -1003, EntryPointID(3))

	assert.True(t, IsEntryPointID(-1000))
	assert.True(t, IsEntryPointID(-1500))
	assert.False(t, IsEntryPointID(-999))
	assert.False(t, IsEntryPointID(0))

	assert.True(t, NewNodeRecord(-1001, KindEntry, "Start").IsEntryPoint())
	assert.False(t, NewNodeRecord(4, KindAction, "Event4").IsEntryPoint())
}

func TestNodeRecordDecode(t *testing.T) {
	t.Run("decodes action node from JSON", func(t *testing.T) {
		raw := `{"id": 3, "node_type": "action", "data": {"name": "Event3", "actor": "Npc", "action": "Talk",
			"params": {"MessageId": "Msg_01", "Speed": 1.5}}}`

		var n NodeRecord
		require.NoError(t, json.Unmarshal([]byte(raw), &n))

		assert.Equal(t, 3, n.ID)
		assert.Equal(t, KindAction, n.Kind)
		assert.Equal(t, "Event3", n.Data.Name)
		assert.Equal(t, "Npc", n.Data.Actor)
		assert.Equal(t, []string{"MessageId", "Speed"}, n.Data.Params.Names())
	})

	t.Run("decodes sub_flow node from YAML", func(t *testing.T) {
		raw := "id: 7\nnode_type: sub_flow\ndata:\n  name: Event7\n  res_flowchart_name: Other\n  entry_point_name: Begin\n"

		var n NodeRecord
		require.NoError(t, yaml.Unmarshal([]byte(raw), &n))

		assert.Equal(t, KindSubFlow, n.Kind)
		assert.Equal(t, "Other", n.Data.ResFlowchartName)
		assert.Equal(t, "Begin", n.Data.EntryPointName)
		assert.Nil(t, n.Data.Params)
	})
}
