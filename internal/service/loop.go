package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrLoopStopped is returned by Call once the loop has exited
var ErrLoopStopped = errors.New("loop stopped")

// Scheduler queues work onto the UI task loop. Tasks run one at a time, in the
// order they were posted. A task scheduled with After runs no earlier than d
// after the call, behind any task already queued when it becomes due.
type Scheduler interface {
	Post(fn func())
	After(d time.Duration, fn func())
	Now() time.Time
}

// Loop is the single task queue that owns all controller state
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
}

// NewLoop creates an idle loop. Tasks posted before Run are kept.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. Tasks posted after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After queues fn once d has elapsed
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Post(fn) })
}

// Now returns the wall clock
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Run executes tasks until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain()
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.queue = nil
			l.mu.Unlock()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		tasks := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, fn := range tasks {
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("Loop task panic: %v", err)
		}
	}()
	fn()
}

// Call runs fn on the loop and waits for it to finish
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		return ErrLoopStopped
	}

	l.Post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
