// Package viewport owns the pan and zoom transform of the diagram.
package viewport

import (
	"time"
)

// TopMargin is the distance kept between a scrolled-to node and the top edge
// when the node is not centered.
const TopMargin = 60

// Point is a position in diagram or screen coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is the pan offset and zoom scale applied to the drawing
type Transform struct {
	Translate Point   `json:"translate"`
	Scale     float64 `json:"scale"`
}

// Identity is the transform with no pan and unit zoom
func Identity() Transform {
	return Transform{Scale: 1}
}

// Locator reports where a node is drawn. It returns false when the node is not
// part of the rendered view.
type Locator interface {
	Locate(id int) (Point, bool)
}

// Animator applies a transform to the drawing. A zero duration applies it
// immediately.
type Animator interface {
	ApplyTransform(t Transform, d time.Duration)
}

// Controller tracks the current transform and viewport size
type Controller struct {
	locator  Locator
	animator Animator

	transform Transform
	width     float64
	height    float64
}

// New creates a controller for a viewport of the given size
func New(locator Locator, animator Animator, width, height float64) *Controller {
	return &Controller{
		locator:   locator,
		animator:  animator,
		transform: Identity(),
		width:     width,
		height:    height,
	}
}

// Transform returns the current transform
func (c *Controller) Transform() Transform {
	return c.transform
}

// Size returns the viewport width and height
func (c *Controller) Size() (float64, float64) {
	return c.width, c.height
}

// Resize records a new viewport size. The transform is left as is.
func (c *Controller) Resize(width, height float64) {
	c.width = width
	c.height = height
}

// SetScale sets the zoom scale immediately
func (c *Controller) SetScale(scale float64) {
	c.transform.Scale = scale
	c.apply(0)
}

// SetTranslate sets the pan offset immediately
func (c *Controller) SetTranslate(x, y float64) {
	c.transform.Translate = Point{X: x, Y: y}
	c.apply(0)
}

// Zoom multiplies the scale by factor
func (c *Controller) Zoom(factor float64) {
	c.SetScale(c.transform.Scale * factor)
}

// Pan moves the translate by (dx, dy)
func (c *Controller) Pan(dx, dy float64) {
	t := c.transform.Translate
	c.SetTranslate(t.X+dx, t.Y+dy)
}

// ScrollTo animates the view so node id is horizontally centered and either
// vertically centered or TopMargin below the top edge. It returns false when the
// node is not drawn.
func (c *Controller) ScrollTo(id int, center bool, d time.Duration) bool {
	pos, ok := c.locator.Locate(id)
	if !ok {
		return false
	}

	s := c.transform.Scale
	y := float64(TopMargin)
	if center {
		y = c.height / 2
	}
	c.transform.Translate = Point{
		X: -pos.X*s + c.width/2,
		Y: -pos.Y*s + y,
	}
	c.apply(d)
	return true
}

func (c *Controller) apply(d time.Duration) {
	if c.animator != nil {
		c.animator.ApplyTransform(c.transform, d)
	}
}
