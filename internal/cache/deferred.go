package cache

import (
	"context"
	"sync"
)

// Deferred queues cache invalidations until a transaction commits. A nil
// *Deferred runs every invalidation immediately.
type Deferred struct {
	mu      sync.Mutex
	pending []func(context.Context)
}

func NewDeferred() *Deferred {
	return &Deferred{}
}

// Run executes fn now on a nil receiver, otherwise queues it for Flush
func (d *Deferred) Run(ctx context.Context, fn func(context.Context)) {
	if d == nil {
		fn(ctx)
		return
	}
	d.mu.Lock()
	d.pending = append(d.pending, fn)
	d.mu.Unlock()
}

// Flush runs the queued invalidations in order and empties the queue
func (d *Deferred) Flush(ctx context.Context) {
	if d == nil {
		return
	}
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, fn := range pending {
		fn(ctx)
	}
}

// Discard drops the queued invalidations, e.g. after a rollback
func (d *Deferred) Discard() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

// Len reports how many invalidations are waiting
func (d *Deferred) Len() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
