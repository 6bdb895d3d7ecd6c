package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowview/internal/diagram"
	"flowview/internal/domain"
)

type recorder struct {
	notified []int
	marks    []diagram.Marks
}

func (r *recorder) SelectionChanged(id int)   { r.notified = append(r.notified, id) }
func (r *recorder) Highlight(m diagram.Marks) { r.marks = append(r.marks, m) }

func chain(ids ...int) domain.Snapshot {
	var s domain.Snapshot
	for i, id := range ids {
		s.AddNode(domain.NewNodeRecord(id, domain.KindAction, "e"+string(rune('a'+i))))
		if i > 0 {
			s.AddEdge(domain.NewEdgeRecord(ids[i-1], id))
		}
	}
	return s
}

func setup(t *testing.T) (*Controller, *recorder, *diagram.Model) {
	t.Helper()
	rec := &recorder{}
	m := diagram.NewModel()
	m.Update(chain(1, 2, 3), domain.ViewFlags{})
	return New(rec, rec, 0), rec, m
}

func TestSelect(t *testing.T) {
	c, rec, m := setup(t)
	assert.Equal(t, None, c.Selected())
	assert.False(t, c.HasSelection())

	require.True(t, c.Select(m, 2))
	assert.Equal(t, 2, c.Selected())
	assert.Equal(t, []int{2}, rec.notified)

	marks := c.Marks()
	assert.Equal(t, 2, marks.Node)
	assert.Len(t, marks.In, 1)
	assert.Len(t, marks.Out, 1)

	t.Run("reselecting clears old marks first without notifying", func(t *testing.T) {
		rec.marks = nil
		require.True(t, c.Select(m, 3))
		require.Len(t, rec.marks, 2)
		assert.True(t, rec.marks[0].Empty())
		assert.Equal(t, 3, rec.marks[1].Node)
		assert.Equal(t, []int{2, 3}, rec.notified)
	})

	t.Run("same node is idempotent", func(t *testing.T) {
		require.True(t, c.Select(m, 3))
		assert.Equal(t, 3, c.Selected())
		assert.Equal(t, []int{2, 3, 3}, rec.notified)
	})

	t.Run("unknown id changes nothing", func(t *testing.T) {
		assert.False(t, c.Select(m, 42))
		assert.Equal(t, 3, c.Selected())
		assert.Equal(t, []int{2, 3, 3}, rec.notified)
	})
}

func TestClear(t *testing.T) {
	c, rec, m := setup(t)
	require.True(t, c.Select(m, 1))

	c.Clear()
	assert.Equal(t, None, c.Selected())
	assert.True(t, c.Marks().Empty())
	assert.Equal(t, []int{1, None}, rec.notified)

	t.Run("clearing when unselected still notifies", func(t *testing.T) {
		c.Clear()
		assert.Equal(t, []int{1, None, None}, rec.notified)
	})
}

func TestRestore(t *testing.T) {
	t.Run("selection survives a rebuild", func(t *testing.T) {
		c, rec, m := setup(t)
		require.True(t, c.Select(m, 2))

		m.Update(chain(1, 2, 3, 4), domain.ViewFlags{})
		assert.True(t, c.Restore(m))
		assert.Equal(t, 2, c.Selected())
		assert.Equal(t, 2, c.Marks().Node)
		assert.Equal(t, []int{2}, rec.notified)
	})

	t.Run("missing node resets to none", func(t *testing.T) {
		c, rec, m := setup(t)
		require.True(t, c.Select(m, 3))

		m.Update(chain(1, 2), domain.ViewFlags{})
		assert.False(t, c.Restore(m))
		assert.Equal(t, None, c.Selected())
		assert.Equal(t, []int{3, None}, rec.notified)
	})

	t.Run("nothing selected", func(t *testing.T) {
		c, rec, m := setup(t)
		assert.False(t, c.Restore(m))
		assert.Empty(t, rec.notified)
	})

	t.Run("marks follow the new topology", func(t *testing.T) {
		c, _, m := setup(t)
		require.True(t, c.Select(m, 3))
		assert.Empty(t, c.Marks().Out)

		m.Update(chain(1, 2, 3, 4), domain.ViewFlags{})
		require.True(t, c.Restore(m))
		assert.Len(t, c.Marks().Out, 1)
	})
}

func TestClickBackground(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		gesture bool
		after   time.Duration
		cleared bool
	}{
		{"no gesture recorded", false, 0, true},
		{"quick click", true, 40 * time.Millisecond, true},
		{"at the threshold", true, DefaultDragThreshold, false},
		{"end of a drag", true, 350 * time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, m := setup(t)
			require.True(t, c.Select(m, 1))
			if tt.gesture {
				c.GestureStarted(start)
			}

			got := c.ClickBackground(start.Add(tt.after))
			assert.Equal(t, tt.cleared, got)
			if tt.cleared {
				assert.Equal(t, None, c.Selected())
				assert.Equal(t, []int{1, None}, rec.notified)
			} else {
				assert.Equal(t, 1, c.Selected())
				assert.Equal(t, []int{1}, rec.notified)
			}
		})
	}
}

func TestReset(t *testing.T) {
	c, rec, m := setup(t)
	require.True(t, c.Select(m, 1))
	c.Reset()
	assert.Equal(t, None, c.Selected())
	assert.True(t, c.Marks().Empty())
	assert.Equal(t, []int{1}, rec.notified)
}
