package tree

import (
	"fmt"
	"sort"

	"github.com/bsolutions/shes/internal/domain"
)

// Tree is an immutable snapshot of one project's hierarchy.
type Tree struct {
	root  *Node
	index map[string]*Node
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// ProjectID returns the project the snapshot belongs to.
func (t *Tree) ProjectID() string { return t.root.item.ProjectID }

// Find returns the node with the given id, or nil.
func (t *Tree) Find(id string) *Node { return t.index[id] }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.index) }

// Owns reports whether n belongs to this snapshot, as opposed to an older
// or newer one.
func (t *Tree) Owns(n *Node) bool {
	return n != nil && t.index[n.item.ID] == n
}

// Items flattens the snapshot back into entities in pre-order.
func (t *Tree) Items() []*domain.ProjectItem {
	items := make([]*domain.ProjectItem, 0, len(t.index))
	t.root.Walk(func(n *Node) bool {
		items = append(items, n.item.Clone())
		return true
	})
	return items
}

// WithChild returns a snapshot where item is attached under its parent.
// The new node is returned alongside the snapshot.
func (t *Tree) WithChild(item *domain.ProjectItem) (*Tree, *Node, error) {
	parentID := item.ParentIDValue()
	if t.index[parentID] == nil {
		return nil, nil, fmt.Errorf("attach %s: parent %s: %w", item.ID, parentID, domain.ErrNotFound)
	}
	if t.index[item.ID] != nil {
		return nil, nil, fmt.Errorf("attach %s: %w", item.ID, domain.ErrDuplicateIdentity)
	}

	next := t.clone()
	parent := next.index[parentID]
	child := &Node{item: item.Clone(), parent: parent}
	parent.children = append(parent.children, child)
	sortSiblings(parent.children)
	next.index[child.item.ID] = child
	return next, child, nil
}

// WithoutSubtree returns a snapshot where the node and all of its
// descendants are detached. The root cannot be removed.
func (t *Tree) WithoutSubtree(id string) (*Tree, error) {
	target := t.index[id]
	if target == nil {
		return nil, fmt.Errorf("detach %s: %w", id, domain.ErrNotFound)
	}
	if target.IsRoot() {
		return nil, domain.ErrCannotDeleteRoot
	}

	next := t.clone()
	victim := next.index[id]
	parent := victim.parent
	kept := make([]*Node, 0, len(parent.children)-1)
	for _, c := range parent.children {
		if c != victim {
			kept = append(kept, c)
		}
	}
	parent.children = kept
	victim.Walk(func(n *Node) bool {
		delete(next.index, n.item.ID)
		return true
	})
	return next, nil
}

// WithItem returns a snapshot where the node carrying item.ID wraps item
// instead. Structure is unchanged; parent and type must not differ.
func (t *Tree) WithItem(item *domain.ProjectItem) (*Tree, *Node, error) {
	cur := t.index[item.ID]
	if cur == nil {
		return nil, nil, fmt.Errorf("replace %s: %w", item.ID, domain.ErrNotFound)
	}
	if cur.item.ParentIDValue() != item.ParentIDValue() || cur.item.Type != item.Type {
		return nil, nil, fmt.Errorf("replace %s: parent and type are immutable", item.ID)
	}

	next := t.clone()
	node := next.index[item.ID]
	node.item = item.Clone()
	if node.parent != nil {
		sortSiblings(node.parent.children)
	}
	return next, node, nil
}

// clone copies the node graph. Entities are shared: they are never edited
// once wrapped.
func (t *Tree) clone() *Tree {
	next := &Tree{index: make(map[string]*Node, len(t.index))}
	var copyNode func(src, parent *Node) *Node
	copyNode = func(src, parent *Node) *Node {
		dst := &Node{item: src.item, parent: parent}
		if len(src.children) > 0 {
			dst.children = make([]*Node, len(src.children))
			for i, c := range src.children {
				dst.children[i] = copyNode(c, dst)
			}
		}
		next.index[dst.item.ID] = dst
		return dst
	}
	next.root = copyNode(t.root, nil)
	return next
}

// sortSiblings orders children by OrderIndex, then CreatedAt, then ID so
// the order is reproducible across loads.
func sortSiblings(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].item, nodes[j].item
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
