package service

import (
	"context"

	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/events"
	"github.com/bsolutions/shes/internal/importer"
	"github.com/bsolutions/shes/internal/tree"
)

// HierarchyService is the engine behind one open project's item tree. It
// validates nesting rules, keeps the store and the in-memory tree in step,
// and publishes selection and tree changes.
//
// Mutations (AddChild, DeleteSubtree, Rename) are serialized. Reads return
// immutable snapshots and never block on a mutation.
type HierarchyService interface {
	Load(ctx context.Context, projectID string) error
	Close()

	State() HierarchyState
	ProjectID() string
	Tree() *tree.Tree
	Root() *tree.Node
	Find(id string) *tree.Node

	AllowedChildTypesFor(node *tree.Node) []domain.ItemType
	AddChild(ctx context.Context, parent *tree.Node, itemType domain.ItemType, name string) (*tree.Node, error)
	DeleteSubtree(ctx context.Context, node *tree.Node) error
	Rename(ctx context.Context, node *tree.Node, name string) (*tree.Node, error)

	Select(node *tree.Node)
	Selection() *tree.Node
	SelectionAllowedChildTypes() []domain.ItemType

	// Subscribe registers a notification handler. Handlers run while the
	// engine holds its mutation lock and must not call mutating methods or
	// Select.
	Subscribe(sub events.Subscriber) (unsubscribe func())
}

type ProjectService interface {
	Create(ctx context.Context, req CreateProjectRequest) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// CreateProjectRequest describes a new project and its root item.
type CreateProjectRequest struct {
	Name        string
	Description string
	RootType    domain.ItemType
	RootName    string
}

// ImportResult holds the outcome of a project import.
type ImportResult struct {
	Project   *domain.Project
	Root      *domain.ProjectItem
	ItemCount int
}

type ImportService interface {
	ImportProject(ctx context.Context, filePath string) (*ImportResult, error)
	ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
