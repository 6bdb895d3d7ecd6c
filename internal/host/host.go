// Package host provides a file-backed host for development and the command
// line. It serves snapshots read from disk and records the commands the diagram
// sends back without applying them.
package host

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"flowview/internal/codec"
	"flowview/internal/domain"
	"flowview/internal/flowchart"
	"flowview/internal/service"
	"flowview/internal/watcher"
)

// Command is one host command received from the diagram
type Command struct {
	Name    string `json:"name"`
	ID      int    `json:"id"`
	Parents []int  `json:"parents,omitempty"`
}

// Load reads a snapshot from path. YAML files holding a flowchart document
// (an events list) are built into a snapshot; anything else goes through the
// snapshot codec for the file extension.
func Load(path string) (domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if (ext == ".yaml" || ext == ".yml") && flowchart.IsDocument(data) {
		fc, err := flowchart.Parse(data)
		if err != nil {
			return nil, err
		}
		return flowchart.Build(fc), nil
	}

	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	return c.Parse(bytes.NewReader(data))
}

// FileHost implements service.Host on top of a file
type FileHost struct {
	path     string
	debounce time.Duration

	mu       sync.Mutex
	selected int
	ready    bool
	reloads  int
	commands []Command
}

// NewFileHost creates a host serving path
func NewFileHost(path string) *FileHost {
	return &FileHost{path: path, selected: -1, debounce: watcher.DefaultDebounce}
}

// SetDebounce sets how long the file must stay quiet before a reload
func (h *FileHost) SetDebounce(d time.Duration) {
	if d > 0 {
		h.debounce = d
	}
}

// Path returns the served file
func (h *FileHost) Path() string {
	return h.path
}

// Watch raises DataChanged on n whenever the file changes. It blocks until ctx
// is cancelled.
func (h *FileHost) Watch(ctx context.Context, n service.Notifications) error {
	return watcher.New(func(string) { n.DataChanged() }, h.path).
		WithDebounce(h.debounce).
		Watch(ctx)
}

// RequestSnapshot implements service.Host. The reply runs before it returns.
func (h *FileHost) RequestSnapshot(reply func(domain.Snapshot, error)) {
	snap, err := Load(h.path)
	if err != nil {
		reply(nil, fmt.Errorf("load %s: %w", h.path, err))
		return
	}
	reply(snap, nil)
}

// Ready implements service.Host
func (h *FileHost) Ready() {
	h.mu.Lock()
	h.ready = true
	h.mu.Unlock()
	log.Printf("Diagram ready, serving %s", h.path)
}

// Reloaded implements service.Host
func (h *FileHost) Reloaded() {
	h.mu.Lock()
	h.reloads++
	h.mu.Unlock()
}

// SelectionChanged implements service.Host
func (h *FileHost) SelectionChanged(id int) {
	h.mu.Lock()
	h.selected = id
	h.mu.Unlock()
}

// Selected returns the last selection the diagram reported
func (h *FileHost) Selected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selected
}

// Reloads returns how many rebuilds the diagram reported
func (h *FileHost) Reloads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reloads
}

// Commands returns the commands received so far
func (h *FileHost) Commands() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Command, len(h.commands))
	copy(out, h.commands)
	return out
}

func (h *FileHost) record(name string, parents []int, id int) error {
	h.mu.Lock()
	h.commands = append(h.commands, Command{Name: name, ID: id, Parents: parents})
	h.mu.Unlock()
	if len(parents) > 0 {
		log.Printf("Host command %s on event %d (parents %v)", name, id, parents)
	} else {
		log.Printf("Host command %s on event %d", name, id)
	}
	return nil
}

// EditEvent implements service.Host
func (h *FileHost) EditEvent(id int) error { return h.record("edit_event", nil, id) }

// EditSwitchBranches implements service.Host
func (h *FileHost) EditSwitchBranches(id int) error { return h.record("edit_switch_branches", nil, id) }

// EditForkBranches implements service.Host
func (h *FileHost) EditForkBranches(id int) error { return h.record("edit_fork_branches", nil, id) }

// AddEntryPoint implements service.Host
func (h *FileHost) AddEntryPoint(id int) error { return h.record("add_entry_point", nil, id) }

// AddEventAbove implements service.Host
func (h *FileHost) AddEventAbove(parents []int, id int) error {
	return h.record("add_event_above", parents, id)
}

// AddEventBelow implements service.Host
func (h *FileHost) AddEventBelow(id int) error { return h.record("add_event_below", nil, id) }

// Unlink implements service.Host
func (h *FileHost) Unlink(id int) error { return h.record("unlink", nil, id) }

// Link implements service.Host
func (h *FileHost) Link(id int) error { return h.record("link", nil, id) }

// RemoveEvent implements service.Host
func (h *FileHost) RemoveEvent(parents []int, id int) error {
	return h.record("remove_event", parents, id)
}

// RemoveEntryPoint implements service.Host
func (h *FileHost) RemoveEntryPoint(id int) error { return h.record("remove_entry_point", nil, id) }

var _ service.Host = (*FileHost)(nil)
