// Package tree holds the in-memory view of a project's item hierarchy.
//
// A Tree is an immutable snapshot. Nodes are never edited in place: the
// With* methods return a new Tree and leave the receiver untouched, so a
// reader holding a snapshot always sees a consistent structure.
package tree

import (
	"github.com/bsolutions/shes/internal/domain"
)

// Node wraps one project item inside a snapshot. Parent is a navigational
// back-reference only; ownership runs from the root down.
type Node struct {
	item     *domain.ProjectItem
	parent   *Node
	children []*Node
}

// Item returns a copy of the wrapped entity.
func (n *Node) Item() *domain.ProjectItem { return n.item.Clone() }

func (n *Node) ID() string            { return n.item.ID }
func (n *Node) ProjectID() string     { return n.item.ProjectID }
func (n *Node) Type() domain.ItemType { return n.item.Type }
func (n *Node) Name() string          { return n.item.Name }
func (n *Node) OrderIndex() int       { return n.item.OrderIndex }

// Attribute returns one attribute value.
func (n *Node) Attribute(key string) (string, bool) {
	v, ok := n.item.Attributes[key]
	return v, ok
}

// Parent returns the in-memory parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Children returns the children in sibling order. The slice is a copy.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// Depth is 0 for the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Path returns the nodes from the root down to n, inclusive.
func (n *Node) Path() []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Walk visits the subtree rooted at n in pre-order. Returning false from fn
// skips the node's descendants.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// PostOrder returns the subtree rooted at n with every node listed after
// all of its descendants. n itself is last.
func (n *Node) PostOrder() []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(cur *Node) {
		for _, c := range cur.children {
			visit(c)
		}
		out = append(out, cur)
	}
	visit(n)
	return out
}

// Size counts n and all of its descendants.
func (n *Node) Size() int {
	size := 0
	n.Walk(func(*Node) bool {
		size++
		return true
	})
	return size
}

// Contains reports whether id names n or one of its descendants.
func (n *Node) Contains(id string) bool {
	found := false
	n.Walk(func(cur *Node) bool {
		if cur.item.ID == id {
			found = true
		}
		return !found
	})
	return found
}

// NextChildOrder returns the OrderIndex that places a new child after every
// existing child.
func (n *Node) NextChildOrder() int {
	next := 0
	for _, c := range n.children {
		if c.item.OrderIndex >= next {
			next = c.item.OrderIndex + 1
		}
	}
	return next
}
