package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/bsolutions/shes/internal/domain"
)

// ItemStore mirrors repository.ProjectItemRepo; it is redeclared here so the
// repository package's own tests can use these helpers without an import cycle.
type ItemStore interface {
	GetAll(ctx context.Context, projectID string) ([]*domain.ProjectItem, error)
	GetByID(ctx context.Context, id string) (*domain.ProjectItem, error)
	Add(ctx context.Context, item *domain.ProjectItem) (*domain.ProjectItem, error)
	Update(ctx context.Context, item *domain.ProjectItem) error
	Delete(ctx context.Context, id string) error
}

// ForbiddenItemRepo fails the test on any call. Use it to prove that an
// operation rejects its input before reaching the store.
type ForbiddenItemRepo struct {
	T testing.TB
}

func (r ForbiddenItemRepo) fail(op string) {
	r.T.Helper()
	r.T.Errorf("store must not be touched, got %s", op)
}

func (r ForbiddenItemRepo) GetAll(context.Context, string) ([]*domain.ProjectItem, error) {
	r.fail("GetAll")
	return nil, nil
}

func (r ForbiddenItemRepo) GetByID(context.Context, string) (*domain.ProjectItem, error) {
	r.fail("GetByID")
	return nil, nil
}

func (r ForbiddenItemRepo) Add(context.Context, *domain.ProjectItem) (*domain.ProjectItem, error) {
	r.fail("Add")
	return nil, nil
}

func (r ForbiddenItemRepo) Update(context.Context, *domain.ProjectItem) error {
	r.fail("Update")
	return nil
}

func (r ForbiddenItemRepo) Delete(context.Context, string) error {
	r.fail("Delete")
	return nil
}

// FailingItemRepo delegates to ItemStore but returns Err from the FailAddOn-th
// Add or FailDeleteOn-th Delete (1-based, 0 disables). It records the ids
// it deleted in call order.
type FailingItemRepo struct {
	ItemStore

	FailAddOn    int
	FailDeleteOn int
	FailUpdate   bool
	Err          error

	mu      sync.Mutex
	adds    int
	deletes int
	Deleted []string
}

func (r *FailingItemRepo) Add(ctx context.Context, item *domain.ProjectItem) (*domain.ProjectItem, error) {
	r.mu.Lock()
	r.adds++
	fail := r.adds == r.FailAddOn
	r.mu.Unlock()
	if fail {
		return nil, r.Err
	}
	return r.ItemStore.Add(ctx, item)
}

func (r *FailingItemRepo) Update(ctx context.Context, item *domain.ProjectItem) error {
	if r.FailUpdate {
		return r.Err
	}
	return r.ItemStore.Update(ctx, item)
}

func (r *FailingItemRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	r.deletes++
	fail := r.deletes == r.FailDeleteOn
	r.mu.Unlock()
	if fail {
		return r.Err
	}
	if err := r.ItemStore.Delete(ctx, id); err != nil {
		return err
	}
	r.mu.Lock()
	r.Deleted = append(r.Deleted, id)
	r.mu.Unlock()
	return nil
}
