package repository

import (
	"context"

	"github.com/bsolutions/shes/internal/domain"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// ProjectItemRepo is the narrow store primitive behind the hierarchy engine.
// It never cascades and never validates tree structure.
type ProjectItemRepo interface {
	// GetAll returns every item of a project. Order is unspecified; callers
	// rebuild sibling order from OrderIndex.
	GetAll(ctx context.Context, projectID string) ([]*domain.ProjectItem, error)
	// GetByID returns (nil, nil) when the item does not exist.
	GetByID(ctx context.Context, id string) (*domain.ProjectItem, error)
	// Add assigns an ID when empty, persists and returns the stored record.
	// Fails with domain.ErrDuplicateIdentity when the ID is taken.
	Add(ctx context.Context, item *domain.ProjectItem) (*domain.ProjectItem, error)
	// Update rewrites name, order and attributes. Fails with domain.ErrNotFound.
	Update(ctx context.Context, item *domain.ProjectItem) error
	// Delete removes one item. Fails with domain.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
