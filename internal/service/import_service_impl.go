package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bsolutions/shes/internal/db"
	"github.com/bsolutions/shes/internal/importer"
	"github.com/bsolutions/shes/internal/registry"
	"github.com/bsolutions/shes/internal/repository"
	"github.com/bsolutions/shes/internal/tree"
)

type importService struct {
	registry *registry.Registry
	uow      db.UnitOfWork
	repos    repository.TxRepos
	observer UseCaseObserver
}

func NewImportService(
	reg *registry.Registry,
	uow db.UnitOfWork,
	repos repository.TxRepos,
	observers ...UseCaseObserver,
) ImportService {
	return &importService{
		registry: reg,
		uow:      uow,
		repos:    repos,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportProject(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project":    schema.Project.Name,
		"item_count": len(schema.Items),
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import_project",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateImportSchema(schema, s.registry); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	generated, err := importer.Convert(schema, startedAt)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	// Converted items must form a valid tree before anything is written.
	t, err := tree.NewMaterializer(s.registry).Build(generated.Items)
	if err != nil {
		return nil, fmt.Errorf("checking imported structure: %w", err)
	}
	fields["project_id"] = generated.Project.ID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.repos.Projects(tx).Create(ctx, generated.Project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		items := s.repos.Items(tx)
		for _, item := range generated.Items {
			if _, err := items.Add(ctx, item); err != nil {
				return fmt.Errorf("creating item %q: %w", item.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Project:   generated.Project,
		Root:      t.Root().Item(),
		ItemCount: len(generated.Items),
	}, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
