package repository

import (
	"context"
	"fmt"

	"github.com/bsolutions/shes/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedProjectItemRepo puts an LRU in front of GetByID. Writes go through
// to the wrapped repo first and only then touch the cache, so a failed write
// never leaves a cached record the store does not have.
type CachedProjectItemRepo struct {
	next  ProjectItemRepo
	cache *lru.Cache[string, *domain.ProjectItem]
}

var _ ProjectItemRepo = (*CachedProjectItemRepo)(nil)

// NewCachedProjectItemRepo wraps next with a cache holding up to size items.
func NewCachedProjectItemRepo(next ProjectItemRepo, size int) (*CachedProjectItemRepo, error) {
	cache, err := lru.New[string, *domain.ProjectItem](size)
	if err != nil {
		return nil, fmt.Errorf("creating item cache: %w", err)
	}
	return &CachedProjectItemRepo{next: next, cache: cache}, nil
}

func (r *CachedProjectItemRepo) GetAll(ctx context.Context, projectID string) ([]*domain.ProjectItem, error) {
	items, err := r.next.GetAll(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		r.cache.Add(item.ID, item.Clone())
	}
	return items, nil
}

func (r *CachedProjectItemRepo) GetByID(ctx context.Context, id string) (*domain.ProjectItem, error) {
	if item, ok := r.cache.Get(id); ok {
		return item.Clone(), nil
	}
	item, err := r.next.GetByID(ctx, id)
	if err != nil || item == nil {
		return item, err
	}
	r.cache.Add(id, item.Clone())
	return item, nil
}

func (r *CachedProjectItemRepo) Add(ctx context.Context, item *domain.ProjectItem) (*domain.ProjectItem, error) {
	stored, err := r.next.Add(ctx, item)
	if err != nil {
		return nil, err
	}
	r.cache.Add(stored.ID, stored.Clone())
	return stored, nil
}

func (r *CachedProjectItemRepo) Update(ctx context.Context, item *domain.ProjectItem) error {
	r.cache.Remove(item.ID)
	return r.next.Update(ctx, item)
}

func (r *CachedProjectItemRepo) Delete(ctx context.Context, id string) error {
	r.cache.Remove(id)
	return r.next.Delete(ctx, id)
}

// Purge drops every cached record.
func (r *CachedProjectItemRepo) Purge() {
	r.cache.Purge()
}

// Forget drops the given ids from the cache. Used after writes that
// bypassed this decorator, such as transaction-scoped deletes.
func (r *CachedProjectItemRepo) Forget(ids ...string) {
	for _, id := range ids {
		r.cache.Remove(id)
	}
}
