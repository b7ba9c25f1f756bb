package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bsolutions/shes/internal/db"
	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/registry"
	"github.com/bsolutions/shes/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	registry *registry.Registry
	uow      db.UnitOfWork
	repos    repository.TxRepos
	observer UseCaseObserver
}

func NewProjectService(
	projects repository.ProjectRepo,
	reg *registry.Registry,
	uow db.UnitOfWork,
	repos repository.TxRepos,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects: projects,
		registry: reg,
		uow:      uow,
		repos:    repos,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Create inserts the project and its root item in one transaction.
func (s *projectService) Create(ctx context.Context, req CreateProjectRequest) (project *domain.Project, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project":   req.Name,
		"root_type": string(req.RootType),
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create_project",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("project name: %w", domain.NewInvalidName(req.Name))
	}
	rootName := req.RootName
	if rootName == "" {
		rootName = req.Name
	}
	root, err := s.registry.NewItem(req.RootType, rootName)
	if err != nil {
		return nil, err
	}

	project = &domain.Project{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   startedAt,
		UpdatedAt:   startedAt,
	}
	root.ProjectID = project.ID
	root.CreatedAt = startedAt
	root.UpdatedAt = startedAt
	fields["project_id"] = project.ID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.repos.Projects(tx).Create(ctx, project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		if _, err := s.repos.Items(tx).Add(ctx, root); err != nil {
			return fmt.Errorf("creating root item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

// Delete removes the project; its items are removed by the store's
// cascading foreign key.
func (s *projectService) Delete(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}
