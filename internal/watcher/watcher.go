// Package watcher raises a callback when watched files change on disk.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of files for changes
type Watcher struct {
	paths    []string
	onChange func(path string)
	debounce time.Duration
}

// New creates a watcher for paths. onChange runs on a timer goroutine once per
// burst of writes to one file.
func New(onChange func(path string), paths ...string) *Watcher {
	return &Watcher{
		paths:    paths,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until the context is cancelled or the fsnotify channels close
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch directories, not files, so replace-on-save editors keep working
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := fw.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
		files[abs] = true
		log.Printf("Watching %s for changes", abs)
	}

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !files[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			mu.Lock()
			if t, exists := timers[abs]; exists {
				t.Stop()
			}
			timers[abs] = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				log.Printf("File changed: %s", abs)
				w.onChange(abs)
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
