package session

import (
	"context"
)

// Loop runs posted functions one at a time on a single goroutine. Headless
// boards use it the way the desktop uses fyne.Do.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

// NewLoop returns a loop with room for buffer queued functions.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Do queues fn. It blocks while the queue is full and drops fn once the
// loop has stopped.
func (l *Loop) Do(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Run executes queued functions until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}
