package events

import (
	"sync"
	"time"

	"github.com/bsolutions/shes/internal/tree"
)

type subscription struct {
	id  uint64
	sub Subscriber
}

// Bridge fans events out to every registered subscriber, in registration
// order, before Publish returns. Events are not retained: a subscriber
// only sees what is published while it is registered.
type Bridge struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	now    func() time.Time
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{now: time.Now}
}

// Subscribe registers s and returns the function that removes it again.
// Calling the returned function more than once is harmless.
func (b *Bridge) Subscribe(s Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, sub: s})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bridge) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers one event to the current subscribers. The subscriber
// list is captured before dispatch, so handlers may subscribe or
// unsubscribe without deadlocking; such changes apply to the next event.
func (b *Bridge) Publish(t EventType, projectID string, node *tree.Node) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}
	e := Event{Type: t, ProjectID: projectID, Node: node, Timestamp: b.now()}
	for _, s := range subs {
		s.sub.Handle(e)
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bridge) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
