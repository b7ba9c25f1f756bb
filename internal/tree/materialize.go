package tree

import (
	"fmt"

	"github.com/bsolutions/shes/internal/domain"
)

// TypeRules is the part of the type registry the materializer consults.
type TypeRules interface {
	Has(t domain.ItemType) bool
	IsAssignable(child, parent domain.ItemType) bool
}

// Build assembles a snapshot from a flat item set. It never modifies items.
//
// Failures are structural: MissingRoot when there is not exactly one item
// without a parent, OrphanReference when a parent id does not resolve (or
// resolves into another project), CycleDetected when parent links from
// some item never reach the root.
func Build(items []*domain.ProjectItem) (*Tree, error) {
	byID := make(map[string]*domain.ProjectItem, len(items))
	var roots []*domain.ProjectItem
	for _, item := range items {
		if _, dup := byID[item.ID]; dup {
			return nil, &domain.IntegrityError{Kind: domain.ErrDuplicateIdentity, ItemID: item.ID}
		}
		byID[item.ID] = item
		if item.ParentID == nil {
			roots = append(roots, item)
		}
	}

	switch len(roots) {
	case 0:
		return nil, &domain.IntegrityError{Kind: domain.ErrMissingRoot, Detail: "no item without a parent"}
	case 1:
	default:
		return nil, &domain.IntegrityError{
			Kind:   domain.ErrMissingRoot,
			Detail: fmt.Sprintf("%d items without a parent (%s, %s)", len(roots), roots[0].ID, roots[1].ID),
		}
	}
	root := roots[0]

	byParent := make(map[string][]*domain.ProjectItem, len(items))
	for _, item := range items {
		if item.ParentID == nil {
			continue
		}
		parent, ok := byID[*item.ParentID]
		if !ok {
			return nil, &domain.IntegrityError{
				Kind:   domain.ErrOrphanReference,
				ItemID: item.ID,
				Detail: fmt.Sprintf("parent %s does not exist", *item.ParentID),
			}
		}
		if parent.ProjectID != item.ProjectID {
			return nil, &domain.IntegrityError{
				Kind:   domain.ErrOrphanReference,
				ItemID: item.ID,
				Detail: fmt.Sprintf("parent %s belongs to project %s", parent.ID, parent.ProjectID),
			}
		}
		byParent[parent.ID] = append(byParent[parent.ID], item)
	}

	if err := checkReachesRoot(items, byID, root.ID); err != nil {
		return nil, err
	}

	t := &Tree{index: make(map[string]*Node, len(items))}
	var attach func(item *domain.ProjectItem, parent *Node) *Node
	attach = func(item *domain.ProjectItem, parent *Node) *Node {
		n := &Node{item: item.Clone(), parent: parent}
		t.index[item.ID] = n
		kids := byParent[item.ID]
		if len(kids) > 0 {
			n.children = make([]*Node, 0, len(kids))
			for _, k := range kids {
				n.children = append(n.children, attach(k, n))
			}
			sortSiblings(n.children)
		}
		return n
	}
	t.root = attach(root, nil)
	return t, nil
}

// checkReachesRoot follows parent links from every item for at most
// len(items) hops. Items proven to reach the root are remembered so the
// whole pass stays linear.
func checkReachesRoot(items []*domain.ProjectItem, byID map[string]*domain.ProjectItem, rootID string) error {
	limit := len(items)
	reaches := map[string]bool{rootID: true}
	for _, item := range items {
		var trail []string
		cur := item
		ok := false
		for hops := 0; hops <= limit; hops++ {
			if reaches[cur.ID] {
				ok = true
				break
			}
			trail = append(trail, cur.ID)
			if cur.ParentID == nil {
				break
			}
			cur = byID[*cur.ParentID]
		}
		if !ok {
			return &domain.IntegrityError{
				Kind:   domain.ErrCycleDetected,
				ItemID: item.ID,
				Detail: fmt.Sprintf("parent chain does not reach root %s within %d hops", rootID, limit),
			}
		}
		for _, id := range trail {
			reaches[id] = true
		}
	}
	return nil
}

// Materializer builds snapshots and checks every item against the type
// registry.
type Materializer struct {
	rules TypeRules
}

func NewMaterializer(rules TypeRules) *Materializer {
	return &Materializer{rules: rules}
}

// Build assembles the tree, then rejects unknown type discriminators and
// parent/child pairs the registry does not allow.
func (m *Materializer) Build(items []*domain.ProjectItem) (*Tree, error) {
	t, err := Build(items)
	if err != nil {
		return nil, err
	}
	if m.rules == nil {
		return t, nil
	}
	var verr error
	t.root.Walk(func(n *Node) bool {
		if verr != nil {
			return false
		}
		if !m.rules.Has(n.item.Type) {
			verr = fmt.Errorf("item %s: %w", n.item.ID, domain.NewUnknownType(n.item.Type))
			return false
		}
		if n.parent != nil && !m.rules.IsAssignable(n.item.Type, n.parent.item.Type) {
			verr = fmt.Errorf("item %s: %w", n.item.ID, domain.NewInvalidChildType(n.item.Type, n.parent.item.Type))
			return false
		}
		return true
	})
	if verr != nil {
		return nil, verr
	}
	return t, nil
}
