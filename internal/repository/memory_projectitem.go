package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/bsolutions/shes/internal/domain"
)

// MemoryProjectItemRepo is a map-backed ProjectItemRepo. It stores clones,
// so callers can never alias stored records.
type MemoryProjectItemRepo struct {
	mu    sync.RWMutex
	items map[string]*domain.ProjectItem
}

var _ ProjectItemRepo = (*MemoryProjectItemRepo)(nil)

// NewMemoryProjectItemRepo returns an empty repo, optionally seeded.
func NewMemoryProjectItemRepo(seed ...*domain.ProjectItem) *MemoryProjectItemRepo {
	r := &MemoryProjectItemRepo{items: make(map[string]*domain.ProjectItem, len(seed))}
	for _, item := range seed {
		r.items[item.ID] = item.Clone()
	}
	return r
}

func (r *MemoryProjectItemRepo) GetAll(_ context.Context, projectID string) ([]*domain.ProjectItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.ProjectItem
	for _, item := range r.items {
		if item.ProjectID == projectID {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryProjectItemRepo) GetByID(_ context.Context, id string) (*domain.ProjectItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[id].Clone(), nil
}

func (r *MemoryProjectItemRepo) Add(_ context.Context, item *domain.ProjectItem) (*domain.ProjectItem, error) {
	stored := prepareForAdd(item)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[stored.ID]; exists {
		return nil, duplicateIdentity(stored.ID)
	}
	r.items[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryProjectItemRepo) Update(_ context.Context, item *domain.ProjectItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[item.ID]
	if !ok {
		return itemNotFound(item.ID)
	}
	next := cur.Clone()
	next.Name = item.Name
	next.OrderIndex = item.OrderIndex
	next.Attributes = item.Clone().Attributes
	next.UpdatedAt = item.UpdatedAt
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = nowUTC()
	}
	r.items[item.ID] = next
	return nil
}

func (r *MemoryProjectItemRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return itemNotFound(id)
	}
	delete(r.items, id)
	return nil
}

// Len returns the number of stored items across all projects.
func (r *MemoryProjectItemRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
