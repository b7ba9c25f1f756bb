// Package registry holds the catalog of project item types and the nesting
// rules between them. A Registry is built once at start-up and is read-only
// afterwards, so it is safe for concurrent use without locking.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bsolutions/shes/internal/domain"
)

// Entry describes one item type: which types it may contain and the
// attributes a freshly constructed item of this type starts with.
type Entry struct {
	Type     domain.ItemType
	Label    string
	Children []domain.ItemType
	Defaults map[string]string
}

// Registry maps type discriminators to their entries.
type Registry struct {
	entries  map[domain.ItemType]Entry
	children map[domain.ItemType]map[domain.ItemType]bool
	order    []domain.ItemType
}

// New validates the entries and builds a registry. Child references to
// unregistered types fail with an UnknownTypeError. Cycles in the type
// graph are allowed.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries:  make(map[domain.ItemType]Entry, len(entries)),
		children: make(map[domain.ItemType]map[domain.ItemType]bool, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(string(e.Type)) == "" {
			return nil, fmt.Errorf("registry entry with empty type")
		}
		if _, exists := r.entries[e.Type]; exists {
			return nil, fmt.Errorf("registry: type %q registered twice", e.Type)
		}
		if e.Label == "" {
			e.Label = string(e.Type)
		}
		r.entries[e.Type] = e
		r.order = append(r.order, e.Type)
	}
	for _, e := range entries {
		set := make(map[domain.ItemType]bool, len(e.Children))
		for _, c := range e.Children {
			if _, ok := r.entries[c]; !ok {
				return nil, fmt.Errorf("registry: child of %q: %w", e.Type, domain.NewUnknownType(c))
			}
			set[c] = true
		}
		r.children[e.Type] = set
	}
	return r, nil
}

// MustNew is New for static catalogs; it panics on an invalid catalog.
func MustNew(entries ...Entry) *Registry {
	r, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the built-in building installation catalog.
func Default() *Registry {
	return MustNew(
		Entry{Type: domain.TypeBuilding, Label: "Building", Children: []domain.ItemType{domain.TypeFloor}},
		Entry{Type: domain.TypeFloor, Label: "Floor", Children: []domain.ItemType{domain.TypeRoom, domain.TypeCabinet, domain.TypeDevice}},
		Entry{Type: domain.TypeRoom, Label: "Room", Children: []domain.ItemType{domain.TypeCabinet, domain.TypeDevice}},
		Entry{Type: domain.TypeCabinet, Label: "Cabinet", Children: []domain.ItemType{domain.TypeDevice},
			Defaults: map[string]string{"rows": "1"}},
		Entry{Type: domain.TypeDevice, Label: "Device"},
	)
}

// Lookup returns the entry for t.
func (r *Registry) Lookup(t domain.ItemType) (Entry, error) {
	e, ok := r.entries[t]
	if !ok {
		return Entry{}, domain.NewUnknownType(t)
	}
	return e, nil
}

// Has reports whether t is registered.
func (r *Registry) Has(t domain.ItemType) bool {
	_, ok := r.entries[t]
	return ok
}

// Types lists every registered type in registration order.
func (r *Registry) Types() []domain.ItemType {
	out := make([]domain.ItemType, len(r.order))
	copy(out, r.order)
	return out
}

// AllowedChildren returns the types t may contain, sorted by discriminator.
// The result is a fresh slice owned by the caller.
func (r *Registry) AllowedChildren(t domain.ItemType) ([]domain.ItemType, error) {
	set, ok := r.children[t]
	if !ok {
		return nil, domain.NewUnknownType(t)
	}
	out := make([]domain.ItemType, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// IsAssignable reports whether an item of childType may be a direct child
// of an item of parentType. Unknown types are never assignable.
func (r *Registry) IsAssignable(childType, parentType domain.ItemType) bool {
	if _, ok := r.entries[childType]; !ok {
		return false
	}
	return r.children[parentType][childType]
}

// NewItem constructs an unsaved item of type t carrying the type's default
// attributes. Identity, parent and order are assigned by the caller.
func (r *Registry) NewItem(t domain.ItemType, name string) (*domain.ProjectItem, error) {
	e, err := r.Lookup(t)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]string, len(e.Defaults))
	for k, v := range e.Defaults {
		attrs[k] = v
	}
	now := time.Now().UTC()
	return &domain.ProjectItem{
		Type:       t,
		Name:       name,
		Attributes: attrs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
