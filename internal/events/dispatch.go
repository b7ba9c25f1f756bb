package events

import (
	"sync"

	"github.com/bsolutions/shes/internal/tree"
)

type queued struct {
	t         EventType
	projectID string
	node      *tree.Node
}

// Dispatcher queues events and delivers them through a Bridge in the order
// they were queued. A producer queues while holding its own lock and calls
// Flush after releasing it, so subscribers may call back into the producer.
type Dispatcher struct {
	bridge *Bridge

	mu       sync.Mutex
	queue    []queued
	draining bool
}

// NewDispatcher delivers through b.
func NewDispatcher(b *Bridge) *Dispatcher {
	return &Dispatcher{bridge: b}
}

// Enqueue adds an event to the pending queue without delivering it.
func (d *Dispatcher) Enqueue(t EventType, projectID string, node *tree.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, queued{t: t, projectID: projectID, node: node})
}

// Flush delivers pending events until the queue is empty. If a Flush is
// already running, on this goroutine or another, it returns at once and
// the running Flush delivers the new events after the ones ahead of them.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	for {
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		next := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		d.deliver(next)
		d.mu.Lock()
	}
}

// deliver publishes one event. A panicking subscriber releases the drain
// so later Flush calls still deliver.
func (d *Dispatcher) deliver(q queued) {
	delivered := false
	defer func() {
		if !delivered {
			d.mu.Lock()
			d.draining = false
			d.mu.Unlock()
		}
	}()
	d.bridge.Publish(q.t, q.projectID, q.node)
	delivered = true
}

// Pending returns the number of queued, undelivered events.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}
