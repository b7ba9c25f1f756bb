package importer

import (
	"fmt"
	"strings"

	"github.com/bsolutions/shes/internal/domain"
)

// TypeRules is the registry view the validator needs.
type TypeRules interface {
	Has(t domain.ItemType) bool
	IsAssignable(child, parent domain.ItemType) bool
}

// ValidateImportSchema checks the import schema for errors before
// conversion. Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema, rules TypeRules) []error {
	var errs []error

	if strings.TrimSpace(schema.Project.Name) == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}
	errs = append(errs, validateItems(schema.Items, rules)...)

	return errs
}

func validateItems(items []ItemImport, rules TypeRules) []error {
	var errs []error

	if len(items) == 0 {
		return append(errs, fmt.Errorf("items: at least one item is required"))
	}

	typeByRef := make(map[string]domain.ItemType, len(items))
	roots := 0
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		itemType := domain.ItemType(it.Type)

		if it.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if _, dup := typeByRef[it.Ref]; dup {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, it.Ref))
		}

		if err := domain.ValidateName(it.Name); err != nil {
			errs = append(errs, fmt.Errorf("%s.name: %w", prefix, err))
		}

		knownType := true
		if it.Type == "" {
			errs = append(errs, fmt.Errorf("%s.type is required", prefix))
			knownType = false
		} else if !rules.Has(itemType) {
			errs = append(errs, fmt.Errorf("%s.type: %w", prefix, domain.NewUnknownType(itemType)))
			knownType = false
		}

		if it.Order != nil && *it.Order < 0 {
			errs = append(errs, fmt.Errorf("%s.order must not be negative", prefix))
		}

		if it.ParentRef == nil || *it.ParentRef == "" {
			roots++
			if roots > 1 {
				errs = append(errs, fmt.Errorf("%s.parent_ref: only one root item is allowed", prefix))
			}
		} else if parentType, ok := typeByRef[*it.ParentRef]; !ok {
			errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q not found (must appear earlier in items list)", prefix, *it.ParentRef))
		} else if knownType && parentType != "" && !rules.IsAssignable(itemType, parentType) {
			errs = append(errs, fmt.Errorf("%s.type: %w", prefix, domain.NewInvalidChildType(itemType, parentType)))
		}

		if it.Ref != "" {
			if _, dup := typeByRef[it.Ref]; !dup {
				if knownType {
					typeByRef[it.Ref] = itemType
				} else {
					typeByRef[it.Ref] = ""
				}
			}
		}
	}

	if roots == 0 {
		errs = append(errs, fmt.Errorf("items: one item without parent_ref is required as the root"))
	}

	return errs
}
