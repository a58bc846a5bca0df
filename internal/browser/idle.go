package browser

import (
	"context"
	"fmt"
	"sync"
)

// CDP page lifecycle event names
const (
	lifecycleInit        = "init"
	lifecycleNetworkIdle = "networkIdle"
)

// idleTracker follows the main frame's lifecycle events and remembers
// whether networkIdle has fired since the last navigation started.
// Observe is called from chromedp's event goroutine and must not block.
type idleTracker struct {
	mu    sync.Mutex
	frame string // main frame id; events from other frames are ignored once set
	idle  bool
	done  chan struct{} // closed once idle
}

func newIdleTracker() *idleTracker {
	return &idleTracker{done: make(chan struct{})}
}

// SetFrame restricts tracking to the given frame
func (t *idleTracker) SetFrame(frameID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = frameID
}

func (t *idleTracker) Observe(frameID, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frame != "" && frameID != t.frame {
		return
	}

	switch name {
	case lifecycleInit:
		if t.idle {
			t.idle = false
			t.done = make(chan struct{})
		}
	case lifecycleNetworkIdle:
		if !t.idle {
			t.idle = true
			close(t.done)
		}
	}
}

func (t *idleTracker) Idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idle
}

// Wait blocks until the frame is idle or ctx ends. It returns at once when
// the current document already reached idle.
func (t *idleTracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for network idle: %w", ctx.Err())
	}
}
