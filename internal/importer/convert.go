package importer

import (
	"fmt"
	"time"

	"github.com/bsolutions/shes/internal/domain"
	"github.com/google/uuid"
)

// GeneratedProject is a converted import ready for persistence. Items are
// listed parents first.
type GeneratedProject struct {
	Project *domain.Project
	Items   []*domain.ProjectItem
}

// Convert transforms a validated ImportSchema into domain objects ready for
// persistence. Call ValidateImportSchema first; Convert assumes the schema
// is valid. Items without an explicit order are appended after their
// already-seen siblings.
func Convert(schema *ImportSchema, now time.Time) (*GeneratedProject, error) {
	project := &domain.Project{
		ID:          uuid.New().String(),
		Name:        schema.Project.Name,
		Description: schema.Project.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	refMap := make(map[string]string, len(schema.Items)) // ref -> UUID
	nextOrder := make(map[string]int)                    // parent UUID -> next free order

	items := make([]*domain.ProjectItem, 0, len(schema.Items))
	for _, it := range schema.Items {
		realID := uuid.New().String()
		refMap[it.Ref] = realID

		var parentID *string
		parentKey := ""
		if it.ParentRef != nil && *it.ParentRef != "" {
			pid, ok := refMap[*it.ParentRef]
			if !ok {
				return nil, fmt.Errorf("parent_ref %q not found for item %q", *it.ParentRef, it.Ref)
			}
			parentID = &pid
			parentKey = pid
		}

		order := nextOrder[parentKey]
		if it.Order != nil {
			order = *it.Order
		}
		if order >= nextOrder[parentKey] {
			nextOrder[parentKey] = order + 1
		}

		var attrs map[string]string
		if len(it.Attributes) > 0 {
			attrs = make(map[string]string, len(it.Attributes))
			for k, v := range it.Attributes {
				attrs[k] = v
			}
		}

		items = append(items, &domain.ProjectItem{
			ID:         realID,
			ProjectID:  project.ID,
			ParentID:   parentID,
			Type:       domain.ItemType(it.Type),
			Name:       it.Name,
			OrderIndex: order,
			Attributes: attrs,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	return &GeneratedProject{Project: project, Items: items}, nil
}
