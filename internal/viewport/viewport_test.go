package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	positions map[int]Point
	applied   []Transform
	durations []time.Duration
}

func (f *fakeView) Locate(id int) (Point, bool) {
	p, ok := f.positions[id]
	return p, ok
}

func (f *fakeView) ApplyTransform(t Transform, d time.Duration) {
	f.applied = append(f.applied, t)
	f.durations = append(f.durations, d)
}

func newController() (*Controller, *fakeView) {
	view := &fakeView{positions: map[int]Point{
		1: {X: 100, Y: 200},
	}}
	return New(view, view, 800, 600), view
}

func TestSetters(t *testing.T) {
	c, view := newController()
	assert.Equal(t, Identity(), c.Transform())

	c.SetScale(2)
	c.SetTranslate(20, 20)
	assert.Equal(t, Transform{Translate: Point{X: 20, Y: 20}, Scale: 2}, c.Transform())

	require.Len(t, view.applied, 2)
	assert.Equal(t, []time.Duration{0, 0}, view.durations)
}

func TestZoomAndPan(t *testing.T) {
	c, _ := newController()

	c.Zoom(1.1)
	c.Zoom(0.9)
	assert.InDelta(t, 0.99, c.Transform().Scale, 1e-9)

	c.Pan(0, 100)
	c.Pan(-100, 0)
	assert.Equal(t, Point{X: -100, Y: 100}, c.Transform().Translate)
}

func TestScrollTo(t *testing.T) {
	t.Run("centered", func(t *testing.T) {
		c, view := newController()
		c.SetScale(2)

		ok := c.ScrollTo(1, true, 500*time.Millisecond)
		require.True(t, ok)
		// (-100*2 + 400, -200*2 + 300)
		assert.Equal(t, Point{X: 200, Y: -100}, c.Transform().Translate)
		assert.Equal(t, 500*time.Millisecond, view.durations[len(view.durations)-1])
	})

	t.Run("near the top", func(t *testing.T) {
		c, _ := newController()
		require.True(t, c.ScrollTo(1, false, time.Second))
		assert.Equal(t, Point{X: 300, Y: -140}, c.Transform().Translate)
	})

	t.Run("node not drawn", func(t *testing.T) {
		c, view := newController()
		assert.False(t, c.ScrollTo(9, true, time.Second))
		assert.Empty(t, view.applied)
		assert.Equal(t, Identity(), c.Transform())
	})

	t.Run("resize changes the target", func(t *testing.T) {
		c, _ := newController()
		c.Resize(200, 100)
		w, h := c.Size()
		assert.Equal(t, 200.0, w)
		assert.Equal(t, 100.0, h)
		require.True(t, c.ScrollTo(1, true, 0))
		assert.Equal(t, Point{X: 0, Y: -150}, c.Transform().Translate)
	})
}
