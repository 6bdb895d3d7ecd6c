package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"flowview/internal/diagram"
	"flowview/internal/domain"
	"flowview/internal/menu"
	"flowview/internal/service"
	"flowview/internal/ui"
	"flowview/internal/viewport"
)

// RowHeight is the vertical distance between two listed nodes
const RowHeight = 80

// Terminal is a renderer that lists frames on a text terminal. Nodes are laid
// out as a single column in frame order, which is the order they are printed.
type Terminal struct {
	mu        sync.Mutex
	out       io.Writer
	frame     diagram.Frame
	positions map[int]viewport.Point
	transform viewport.Transform
	marks     diagram.Marks
	quiet     bool
}

// NewTerminal creates a terminal renderer writing to out
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:       out,
		transform: viewport.Identity(),
		marks:     diagram.NoMarks(),
	}
}

// SetQuiet suppresses the one-line notices printed on render and highlight
func (t *Terminal) SetQuiet(quiet bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.quiet = quiet
}

// Render implements service.Renderer
func (t *Terminal) Render(frame diagram.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = frame
	t.positions = make(map[int]viewport.Point, len(frame.Nodes))
	for i, n := range frame.Nodes {
		t.positions[n.ID] = viewport.Point{X: 0, Y: float64(i * RowHeight)}
	}
	if t.quiet {
		return
	}
	notice := fmt.Sprintf("rendered %d nodes, %d edges", len(frame.Nodes), len(frame.Edges))
	if frame.Filtered {
		notice += " (connected only)"
	}
	ui.Subtle.Fprintln(t.out, notice)
}

// Locate implements viewport.Locator
func (t *Terminal) Locate(id int) (viewport.Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.positions[id]
	return p, ok
}

// ApplyTransform implements viewport.Animator
func (t *Terminal) ApplyTransform(tr viewport.Transform, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transform = tr
}

// Highlight implements selection.Highlighter
func (t *Terminal) Highlight(m diagram.Marks) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks = m
	if t.quiet || m.Node < 0 {
		return
	}
	ui.Mark.Fprintf(t.out, "selected %d\n", m.Node)
}

// Frame returns the last rendered frame
func (t *Terminal) Frame() diagram.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame
}

// Print writes the last frame as node and edge tables
func (t *Terminal) Print(w io.Writer) {
	t.mu.Lock()
	frame, marks := t.frame, t.marks
	t.mu.Unlock()

	if len(frame.Nodes) == 0 {
		ui.Subtle.Fprintln(w, "nothing rendered")
		return
	}
	PrintFrame(w, frame, marks)
}

// PrintFrame writes frame as node and edge tables, flagging what marks selects
func PrintFrame(w io.Writer, frame diagram.Frame, marks diagram.Marks) {
	in := keySet(marks.In)
	out := keySet(marks.Out)

	rows := make([][]string, 0, len(frame.Nodes))
	for _, n := range frame.Nodes {
		name := kindName(n.Class)
		style := ui.Subtle
		if kind, err := domain.ParseNodeKind(name); err == nil {
			style = ui.Kind(kind)
		}
		flag := ""
		if n.ID == marks.Node {
			flag = ui.Mark.Sprint("●")
		}
		rows = append(rows, []string{
			flag,
			strconv.Itoa(n.ID),
			style.Sprint(name),
			oneLine(n.Label),
		})
	}
	ui.Table(w, []string{"", "ID", "KIND", "LABEL"}, rows)

	if len(frame.Edges) == 0 {
		return
	}
	fmt.Fprintln(w)
	rows = rows[:0]
	for _, e := range frame.Edges {
		flag := ""
		switch {
		case in[e.Key]:
			flag = ui.Info.Sprint("in")
		case out[e.Key]:
			flag = ui.Warn.Sprint("out")
		}
		arrow := fmt.Sprintf("%d → %d", e.Source, e.Target)
		if e.Virtual {
			arrow = ui.Subtle.Sprintf("%d ⇢ %d", e.Source, e.Target)
		}
		rows = append(rows, []string{flag, arrow, e.Label})
	}
	ui.Table(w, []string{"", "EDGE", "LABEL"}, rows)
}

// PrintMenu writes a context menu with its actions numbered from 1
func PrintMenu(w io.Writer, id int, items []menu.Item) {
	ui.Info.Fprintf(w, "menu for %d\n", id)
	if len(items) == 0 {
		ui.Subtle.Fprintln(w, "  (empty)")
		return
	}
	n := 0
	for _, it := range items {
		if it.Divider {
			ui.Subtle.Fprintln(w, "  ───")
			continue
		}
		n++
		fmt.Fprintf(w, "  %d. %s\n", n, it.Label)
	}
}

// PrintState writes the controller state
func PrintState(w io.Writer, s service.State) {
	selected := "none"
	if s.Selected >= 0 {
		selected = strconv.Itoa(s.Selected)
	}
	fmt.Fprintf(w, "  nodes      %d\n", s.Nodes)
	fmt.Fprintf(w, "  edges      %d\n", s.Edges)
	fmt.Fprintf(w, "  selected   %s\n", selected)
	fmt.Fprintf(w, "  transform  scale %.3g at (%.0f, %.0f)\n", s.Transform.Scale, s.Transform.Translate.X, s.Transform.Translate.Y)
	fmt.Fprintf(w, "  names      %s\n", ui.StatusIcon(s.Flags.ShowEventNames))
	fmt.Fprintf(w, "  params     %s\n", ui.StatusIcon(s.Flags.ShowParams))
	fmt.Fprintf(w, "  prohibited %s\n", ui.StatusIcon(s.Flags.ActionsProhibited))
	if s.Isolated {
		fmt.Fprintf(w, "  isolated   %s\n", strings.Join(s.Whitelist, ", "))
	}
}

func keySet(m map[diagram.EdgeKey]struct{}) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k.String()] = true
	}
	return out
}

// kindName reads the node kind from the front of a frame class
func kindName(class string) string {
	if f := strings.Fields(class); len(f) > 0 {
		return f[0]
	}
	return ""
}

func oneLine(label string) string {
	return strings.ReplaceAll(label, "\n", " | ")
}

var _ service.Renderer = (*Terminal)(nil)
