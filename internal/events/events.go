// Package events is the selection and tree-change notification bridge
// between the hierarchy engine and its consumers.
package events

import (
	"time"

	"github.com/bsolutions/shes/internal/tree"
)

// EventType represents the kind of notification being published.
type EventType string

const (
	SelectionChanged EventType = "selection_changed"
	TreeChanged      EventType = "tree_changed"
)

// Event carries the affected node. For SelectionChanged it is the new
// selection (nil when cleared); for TreeChanged it is the root of the
// changed subtree.
type Event struct {
	Type      EventType
	ProjectID string
	Node      *tree.Node
	Timestamp time.Time
}

// NodeID returns the id of the event's node, or "" when there is none.
func (e Event) NodeID() string {
	if e.Node == nil {
		return ""
	}
	return e.Node.ID()
}

// Subscriber receives events synchronously on the publishing goroutine.
type Subscriber interface {
	Handle(Event)
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) Handle(e Event) { f(e) }
