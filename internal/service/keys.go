package service

import (
	"fmt"
	"strings"
)

// Key names as delivered by the rendering surface
const (
	KeyEscape = "Escape"
	KeyUp     = "ArrowUp"
	KeyDown   = "ArrowDown"
	KeyLeft   = "ArrowLeft"
	KeyRight  = "ArrowRight"
)

// Key is one key press
type Key struct {
	Name string `json:"key"`
	Ctrl bool   `json:"ctrl"`
}

// ParseKey reads a key spelled like "up", "ctrl+down", "ArrowLeft" or "esc"
func ParseKey(s string) (Key, error) {
	var k Key
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, prefix := range []string{"ctrl+", "ctrl-", "c-"} {
		if strings.HasPrefix(lower, prefix) {
			k.Ctrl = true
			lower = lower[len(prefix):]
			break
		}
	}

	switch lower {
	case "esc", "escape":
		k.Name = KeyEscape
	case "up", "arrowup":
		k.Name = KeyUp
	case "down", "arrowdown":
		k.Name = KeyDown
	case "left", "arrowleft":
		k.Name = KeyLeft
	case "right", "arrowright":
		k.Name = KeyRight
	default:
		return Key{}, fmt.Errorf("unknown key %q", s)
	}
	return k, nil
}

func (k Key) String() string {
	if k.Ctrl {
		return "Ctrl+" + k.Name
	}
	return k.Name
}

// KeyDown handles a key press. Escape clears the selection. Ctrl+Up and
// Ctrl+Down zoom and stop there. With nothing selected the arrows pan; with a
// node selected Up and Down move to its first predecessor or successor.
func (c *Controller) KeyDown(k Key) {
	if k.Name == KeyEscape {
		c.sel.Clear()
		return
	}

	if k.Ctrl {
		switch k.Name {
		case KeyUp:
			c.view.Zoom(1 + c.opts.ZoomStep)
			return
		case KeyDown:
			c.view.Zoom(1 - c.opts.ZoomStep)
			return
		}
	}

	if !c.sel.HasSelection() {
		step := c.opts.PanStep
		switch k.Name {
		case KeyUp:
			c.view.Pan(0, step)
		case KeyDown:
			c.view.Pan(0, -step)
		case KeyLeft:
			c.view.Pan(step, 0)
		case KeyRight:
			c.view.Pan(-step, 0)
		}
		return
	}

	var next []int
	switch k.Name {
	case KeyUp:
		next = c.model.Predecessors(c.sel.Selected())
	case KeyDown:
		next = c.model.Successors(c.sel.Selected())
	}
	if len(next) == 0 {
		return
	}
	c.view.ScrollTo(next[0], true, c.opts.NavigateDuration)
	c.sel.Select(c.model, next[0])
}
